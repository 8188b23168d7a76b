package dto

// CreateBotRequest defines the payload for creating a bot.
type CreateBotRequest struct {
	BotName  string         `json:"botName"`
	Settings map[string]any `json:"settings,omitempty"`
}

// CopyBotRequest defines the payload for duplicating a bot. An empty BotName
// keeps the source name with a copy suffix.
type CopyBotRequest struct {
	BotName string `json:"botName,omitempty"`
}

// RenameBotRequest defines the payload for renaming a bot.
type RenameBotRequest struct {
	BotName string `json:"botName"`
}

// ShareBotRequest defines the payload for granting access to a bot.
type ShareBotRequest struct {
	Email string `json:"email"`
}

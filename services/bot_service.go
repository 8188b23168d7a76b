package services

import (
	"context"
	"errors"
	"time"

	"github.com/botforge/botforge/domain"
	apierrors "github.com/botforge/botforge/errors"
)

// BotService implements bot CRUD plus the share and copy operations, scoped
// to the requesting user's profile.
type BotService struct {
	bots     domain.BotRepository
	accounts domain.AccountRepository
}

// NewBotService creates a new BotService.
func NewBotService(bots domain.BotRepository, accounts domain.AccountRepository) *BotService {
	return &BotService{
		bots:     bots,
		accounts: accounts,
	}
}

// FindAllByUser lists the bots owned by the profile.
func (s *BotService) FindAllByUser(ctx context.Context, profileID string) ([]*domain.Bot, error) {
	return s.bots.FindAllByOwner(ctx, profileID)
}

// Create persists a new bot owned by the profile.
func (s *BotService) Create(ctx context.Context, profileID, name string, settings map[string]any) (*domain.Bot, error) {
	if name == "" {
		return nil, apierrors.NewBadRequest("Имя бота не может быть пустым")
	}

	bot := &domain.Bot{
		OwnerID:  profileID,
		Name:     name,
		Settings: settings,
	}
	return s.bots.Insert(ctx, bot)
}

// Remove deletes a bot owned by the profile. A bot owned by someone else is
// indistinguishable from a missing one.
func (s *BotService) Remove(ctx context.Context, profileID, botID string) (*domain.Bot, error) {
	bot, err := s.bots.Delete(ctx, botID, profileID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apierrors.NewNotFound("Бот не найден")
		}
		return nil, err
	}
	return bot, nil
}

// Copy duplicates a bot's definition under the requesting profile. The source
// must be owned by or shared with the requester; the copy always belongs to
// the requester and carries no share grants.
func (s *BotService) Copy(ctx context.Context, profileID, botID, name string) (*domain.Bot, error) {
	source, err := s.bots.FindByID(ctx, botID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apierrors.NewNotFound("Бот не найден")
		}
		return nil, err
	}
	if !source.AccessibleBy(profileID) {
		return nil, apierrors.NewNotFound("Бот не найден")
	}

	if name == "" {
		name = source.Name + " (копия)"
	}

	settings := make(map[string]any, len(source.Settings))
	for k, v := range source.Settings {
		settings[k] = v
	}

	clone := &domain.Bot{
		OwnerID:  profileID,
		Name:     name,
		Settings: settings,
	}
	return s.bots.Insert(ctx, clone)
}

// Update renames a bot owned by the profile.
func (s *BotService) Update(ctx context.Context, profileID, botID, name string) (*domain.Bot, error) {
	if name == "" {
		return nil, apierrors.NewBadRequest("Имя бота не может быть пустым")
	}

	bot, err := s.bots.Rename(ctx, botID, profileID, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apierrors.NewNotFound("Бот не найден")
		}
		return nil, err
	}
	return bot, nil
}

// FindOne fetches a bot readable by the profile: its owner or a user holding
// a share grant. Anything else reads as missing.
func (s *BotService) FindOne(ctx context.Context, profileID, botID string) (*domain.Bot, error) {
	bot, err := s.bots.FindByID(ctx, botID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apierrors.NewNotFound("Бот не найден")
		}
		return nil, err
	}
	if !bot.AccessibleBy(profileID) {
		return nil, apierrors.NewNotFound("Бот не найден")
	}
	return bot, nil
}

// Share grants access to a bot by invitee email. When the email already
// belongs to a registered account the grant is resolved to its profile
// immediately; otherwise it stays pending on the email. Sharing twice with
// the same email is a no-op.
func (s *BotService) Share(ctx context.Context, profileID, botID, email string) (string, error) {
	if email == "" {
		return "", apierrors.NewBadRequest("Не указан email приглашаемого пользователя")
	}

	grant := domain.ShareGrant{
		Email:     email,
		GrantedAt: time.Now().UTC(),
	}

	invitee, err := s.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		grant.ProfileID = invitee.ProfileID
	case errors.Is(err, domain.ErrNotFound):
		// Pending grant, resolved if the invitee registers later.
	default:
		return "", err
	}

	if _, err := s.bots.AddGrant(ctx, botID, profileID, grant); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", apierrors.NewNotFound("Бот не найден")
		}
		return "", err
	}

	return "Доступ к боту предоставлен", nil
}

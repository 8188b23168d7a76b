package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/botforge/botforge/domain"
)

// --- Mock Implementations ---

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAll(ctx context.Context) ([]*domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, id, profileID string, update domain.AccountUpdate) (*domain.Account, error) {
	args := m.Called(ctx, id, profileID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByEmailAndType(ctx context.Context, email string, accountType domain.AccountType) (*domain.Account, error) {
	args := m.Called(ctx, email, accountType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByProfileAndType(ctx context.Context, profileID string, accountType domain.AccountType) (*domain.Account, error) {
	args := m.Called(ctx, profileID, accountType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) TakeRefreshToken(ctx context.Context, refreshToken string) (*domain.Account, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SetTokens(ctx context.Context, profileID, accessToken, refreshToken string) (*domain.Account, error) {
	args := m.Called(ctx, profileID, accessToken, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ClearTokens(ctx context.Context, profileID string) error {
	args := m.Called(ctx, profileID)
	return args.Error(0)
}

func (m *MockAccountRepository) Delete(ctx context.Context, id, profileID string) (*domain.Account, error) {
	args := m.Called(ctx, id, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context) (*domain.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepository) AddAccount(ctx context.Context, profileID, accountID string) error {
	args := m.Called(ctx, profileID, accountID)
	return args.Error(0)
}

func (m *MockProfileRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockBotRepository struct {
	mock.Mock
}

func (m *MockBotRepository) Insert(ctx context.Context, bot *domain.Bot) (*domain.Bot, error) {
	args := m.Called(ctx, bot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bot), args.Error(1)
}

func (m *MockBotRepository) FindAllByOwner(ctx context.Context, ownerID string) ([]*domain.Bot, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Bot), args.Error(1)
}

func (m *MockBotRepository) FindByID(ctx context.Context, id string) (*domain.Bot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bot), args.Error(1)
}

func (m *MockBotRepository) Rename(ctx context.Context, id, ownerID, name string) (*domain.Bot, error) {
	args := m.Called(ctx, id, ownerID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bot), args.Error(1)
}

func (m *MockBotRepository) Delete(ctx context.Context, id, ownerID string) (*domain.Bot, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bot), args.Error(1)
}

func (m *MockBotRepository) AddGrant(ctx context.Context, id, ownerID string, grant domain.ShareGrant) (*domain.Bot, error) {
	args := m.Called(ctx, id, ownerID, grant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bot), args.Error(1)
}

func (m *MockBotRepository) ResolveGrants(ctx context.Context, email, profileID string) error {
	args := m.Called(ctx, email, profileID)
	return args.Error(0)
}

type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(hashedPassword, password string) error {
	args := m.Called(hashedPassword, password)
	return args.Error(0)
}

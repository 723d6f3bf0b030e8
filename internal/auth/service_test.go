package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/config"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	args := m.Called(ctx, phone)
	return args.Bool(0), args.Error(1)
}

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newService(users *MockUserRepository, wallets *MockWalletRepository) *Service {
	return NewService(users, wallets, fakeTxManager{}, config.JWTConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
	}, logger.NewNop())
}

func TestRegisterCreatesWalletPerCurrency(t *testing.T) {
	users := new(MockUserRepository)
	wallets := new(MockWalletRepository)
	svc := newService(users, wallets)

	users.On("ExistsByPhone", mock.Anything, "+963912345678").Return(false, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Phone == "+963912345678" && u.Role == domain.RoleUser && u.IsActive
	})).Return(nil)
	wallets.On("Create", mock.Anything, mock.MatchedBy(func(w *domain.Wallet) bool {
		return w.Balance.IsZero() && w.Status == domain.WalletStatusActive
	})).Return(nil).Times(len(domain.Currencies))

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Phone:     "0912345678",
		Password:  "correct-horse",
		FirstName: "Sami",
		LastName:  "Haddad",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	wallets.AssertExpectations(t)

	// The token must carry the role claim the middleware gates on.
	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "user", claims["role"])
	assert.Equal(t, resp.User.ID.String(), claims["user_id"])
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	users := new(MockUserRepository)
	wallets := new(MockWalletRepository)
	svc := newService(users, wallets)

	users.On("ExistsByPhone", mock.Anything, mock.Anything).Return(false, nil)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Phone:     "0912345678",
		Password:  "correct-horse",
		FirstName: "Sami",
		LastName:  "Haddad",
		Role:      "admin",
	})
	assert.ErrorIs(t, err, errors.ErrForbidden)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterDuplicatePhone(t *testing.T) {
	users := new(MockUserRepository)
	wallets := new(MockWalletRepository)
	svc := newService(users, wallets)

	users.On("ExistsByPhone", mock.Anything, "+963912345678").Return(true, nil)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Phone:     "+963912345678",
		Password:  "correct-horse",
		FirstName: "Sami",
		LastName:  "Haddad",
	})
	assert.ErrorIs(t, err, errors.ErrUserAlreadyExists)
}

func TestLoginWrongPassword(t *testing.T) {
	users := new(MockUserRepository)
	wallets := new(MockWalletRepository)
	svc := newService(users, wallets)

	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	require.NoError(t, err)
	users.On("FindByPhone", mock.Anything, "+963912345678").
		Return(&domain.User{ID: uuid.New(), PasswordHash: string(hash), IsActive: true}, nil)

	_, err = svc.Login(context.Background(), &LoginRequest{
		Phone:    "0912345678",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	users := new(MockUserRepository)
	wallets := new(MockWalletRepository)
	svc := newService(users, wallets)

	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	require.NoError(t, err)
	users.On("FindByPhone", mock.Anything, mock.Anything).
		Return(&domain.User{ID: uuid.New(), PasswordHash: string(hash), IsActive: false}, nil)

	_, err = svc.Login(context.Background(), &LoginRequest{
		Phone:    "0912345678",
		Password: "right",
	})
	assert.ErrorIs(t, err, errors.ErrUserInactive)
}

package profit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetPool(ctx context.Context, currency domain.Currency) (*domain.PlatformProfit, error) {
	args := m.Called(ctx, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlatformProfit), args.Error(1)
}

func (m *MockRepository) GetPools(ctx context.Context) ([]*domain.PlatformProfit, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PlatformProfit), args.Error(1)
}

func (m *MockRepository) Deduct(ctx context.Context, currency domain.Currency, amount decimal.Decimal) error {
	args := m.Called(ctx, currency, amount)
	return args.Error(0)
}

func (m *MockRepository) CreateWithdrawal(ctx context.Context, w *domain.ProfitWithdrawal) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockRepository) ListWithdrawals(ctx context.Context, limit, offset int) ([]*domain.ProfitWithdrawal, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ProfitWithdrawal), args.Error(1)
}

type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestWithdrawDeductsPoolAndRecords(t *testing.T) {
	repo := new(MockRepository)
	adminID := uuid.New()
	details := "Commercial Bank of Syria, acct 4411"

	repo.On("Deduct", mock.Anything, domain.USD, mock.MatchedBy(func(a decimal.Decimal) bool {
		return a.Equal(dec("250.50"))
	})).Return(nil)
	repo.On("CreateWithdrawal", mock.Anything, mock.MatchedBy(func(w *domain.ProfitWithdrawal) bool {
		return w.RequestedBy == adminID && w.Method == domain.WithdrawalMethodBank && w.Status == "completed"
	})).Return(nil)

	svc := NewService(repo, fakeTxManager{}, logger.NewNop())
	w, err := svc.Withdraw(context.Background(), adminID, &WithdrawRequest{
		Amount:      dec("250.50"),
		Currency:    domain.USD,
		Method:      domain.WithdrawalMethodBank,
		BankDetails: &details,
	})
	require.NoError(t, err)
	assert.True(t, w.Amount.Equal(dec("250.50")))
	repo.AssertExpectations(t)
}

func TestWithdrawRoundsAtCurrencyExponent(t *testing.T) {
	repo := new(MockRepository)

	repo.On("Deduct", mock.Anything, domain.SYP, mock.MatchedBy(func(a decimal.Decimal) bool {
		return a.Equal(dec("100001"))
	})).Return(nil)
	repo.On("CreateWithdrawal", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(repo, fakeTxManager{}, logger.NewNop())
	w, err := svc.Withdraw(context.Background(), uuid.New(), &WithdrawRequest{
		Amount:   dec("100000.7"),
		Currency: domain.SYP,
		Method:   domain.WithdrawalMethodCash,
	})
	require.NoError(t, err)
	assert.True(t, w.Amount.Equal(dec("100001")))
}

func TestWithdrawBankRequiresDetails(t *testing.T) {
	svc := NewService(new(MockRepository), fakeTxManager{}, logger.NewNop())

	_, err := svc.Withdraw(context.Background(), uuid.New(), &WithdrawRequest{
		Amount:   dec("100"),
		Currency: domain.USD,
		Method:   domain.WithdrawalMethodBank,
	})
	assert.ErrorIs(t, err, errors.ErrBankDetailsRequired)
}

func TestWithdrawSurfacesOverdraw(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Deduct", mock.Anything, domain.USD, mock.Anything).Return(errors.ErrInsufficientProfit)

	svc := NewService(repo, fakeTxManager{}, logger.NewNop())
	_, err := svc.Withdraw(context.Background(), uuid.New(), &WithdrawRequest{
		Amount:   dec("99999"),
		Currency: domain.USD,
		Method:   domain.WithdrawalMethodCash,
	})
	assert.ErrorIs(t, err, errors.ErrInsufficientProfit)
	repo.AssertNotCalled(t, "CreateWithdrawal", mock.Anything, mock.Anything)
}

func TestOverviewCombinesPoolsAndHistory(t *testing.T) {
	repo := new(MockRepository)
	pools := []*domain.PlatformProfit{
		{Currency: domain.USD, Balance: dec("1200.25")},
		{Currency: domain.SYP, Balance: dec("5400000")},
	}
	repo.On("GetPools", mock.Anything).Return(pools, nil)
	repo.On("ListWithdrawals", mock.Anything, 50, 0).Return([]*domain.ProfitWithdrawal{}, nil)

	svc := NewService(repo, fakeTxManager{}, logger.NewNop())
	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Len(t, overview.Pools, 2)
	assert.Empty(t, overview.Withdrawals)
}

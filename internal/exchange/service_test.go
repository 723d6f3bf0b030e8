package exchange

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

func (m *MockRepository) FindActive(ctx context.Context, rateType domain.RateType) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, rateType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockRepository) Deactivate(ctx context.Context, rateType domain.RateType) error {
	args := m.Called(ctx, rateType)
	return args.Error(0)
}

func (m *MockRepository) Create(ctx context.Context, rate *domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockRepository) History(ctx context.Context, rateType domain.RateType, limit int) ([]*domain.ExchangeRate, error) {
	args := m.Called(ctx, rateType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ExchangeRate), args.Error(1)
}

type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSetRateRetiresOldRateFirst(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, fakeTxManager{}, logger.NewNop())
	adminID := uuid.New()

	repo.On("Deactivate", mock.Anything, domain.RateTypeDeposit).Return(nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.ExchangeRate) bool {
		return r.Type == domain.RateTypeDeposit &&
			r.Rate.Equal(dec("14500")) &&
			r.IsActive &&
			r.UpdatedBy != nil && *r.UpdatedBy == adminID
	})).Return(nil)

	rate, err := svc.SetRate(context.Background(), adminID, &SetRateRequest{
		Type: domain.RateTypeDeposit,
		Rate: dec("14500"),
	})
	require.NoError(t, err)
	assert.True(t, rate.IsActive)
	repo.AssertExpectations(t)
}

func TestSetRateRejectsNonPositive(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, fakeTxManager{}, logger.NewNop())

	_, err := svc.SetRate(context.Background(), uuid.New(), &SetRateRequest{
		Type: domain.RateTypeWithdraw,
		Rate: decimal.Zero,
	})
	assert.ErrorIs(t, err, errors.ErrRateNotAvailable)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestActiveRateMissing(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, fakeTxManager{}, logger.NewNop())

	repo.On("FindActive", mock.Anything, domain.RateTypeWithdraw).
		Return(nil, errors.ErrRateNotAvailable)

	_, err := svc.ActiveRate(context.Background(), domain.RateTypeWithdraw)
	assert.ErrorIs(t, err, errors.ErrRateNotAvailable)
}

func TestConversionRounding(t *testing.T) {
	// SYP amounts are whole pounds, USD has cents.
	syp := ConvertUSDToSYP(dec("10.50"), dec("14500"))
	assert.True(t, syp.Equal(dec("152250")), "got %s", syp)

	usd := ConvertSYPToUSD(dec("100000"), dec("15000"))
	assert.True(t, usd.Equal(dec("6.67")), "got %s", usd)
}

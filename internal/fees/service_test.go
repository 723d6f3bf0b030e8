package fees

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

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByCurrency(ctx context.Context, currency domain.Currency) (*domain.FeeSettings, error) {
	args := m.Called(ctx, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeeSettings), args.Error(1)
}

func (m *MockRepository) Upsert(ctx context.Context, settings *domain.FeeSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// --- Tests ---

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		percent  string
		fixed    string
		currency domain.Currency
		want     string
	}{
		{"usd percent only", "100", "0.5", "0", domain.USD, "0.5"},
		{"usd percent plus fixed", "200", "1", "0.25", domain.USD, "2.25"},
		{"usd rounds to cents", "33.33", "1.5", "0", domain.USD, "0.5"},
		{"usd zero schedule", "5000", "0", "0", domain.USD, "0"},
		{"syp rounds to whole pounds", "10000", "0.75", "0", domain.SYP, "75"},
		{"syp half rounds up", "100", "0.5", "0", domain.SYP, "1"},
		{"syp fixed only", "25000", "0", "500", domain.SYP, "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(
				decimal.RequireFromString(tt.amount),
				decimal.RequireFromString(tt.percent),
				decimal.RequireFromString(tt.fixed),
				tt.currency,
			)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got),
				"want %s, got %s", tt.want, got)
		})
	}
}

func TestComputeMonotonicInAmount(t *testing.T) {
	percent := decimal.RequireFromString("1.5")
	fixed := decimal.RequireFromString("0.1")

	prev := decimal.Zero
	for _, amount := range []string{"0", "0.01", "1", "10", "99.99", "100", "1000", "100000"} {
		fee := Compute(decimal.RequireFromString(amount), percent, fixed, domain.USD)
		assert.True(t, fee.GreaterThanOrEqual(prev),
			"fee(%s)=%s dropped below fee of smaller amount %s", amount, fee, prev)
		prev = fee
	}
}

func TestQuoteTransferFee(t *testing.T) {
	// amount=100, transferFeePercent=0.5, transferFeeFixed=0 -> fee 0.50, debit 100.50
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, nil, logger.NewNop())
	ctx := context.Background()

	mockRepo.On("GetByCurrency", ctx, domain.USD).Return(&domain.FeeSettings{
		Currency:           domain.USD,
		TransferFeePercent: decimal.RequireFromString("0.5"),
		TransferFeeFixed:   decimal.Zero,
	}, nil)

	fee, total, err := service.Quote(ctx, domain.USD, domain.TransactionTypeTransfer, decimal.NewFromInt(100))

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.5").Equal(fee), "fee = %s", fee)
	assert.True(t, decimal.RequireFromString("100.5").Equal(total), "total = %s", total)
	mockRepo.AssertExpectations(t)
}

func TestQuoteUnsupportedCurrency(t *testing.T) {
	service := NewService(new(MockRepository), nil, logger.NewNop())

	_, _, err := service.Quote(context.Background(), domain.Currency("EUR"), domain.TransactionTypeTransfer, decimal.NewFromInt(10))

	assert.Error(t, err)
}

func TestQuoteRejectsUnknownType(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, nil, logger.NewNop())

	for _, txType := range []domain.TransactionType{"cashback", "", domain.TransactionTypeSettlement} {
		_, _, err := service.Quote(context.Background(), domain.USD, txType, decimal.NewFromInt(10))
		assert.ErrorIs(t, err, errors.ErrInvalidTransactionType, "type %q", txType)
	}
	mockRepo.AssertNotCalled(t, "GetByCurrency", mock.Anything, mock.Anything)
}

func TestUpdateSettingsPersistsAdmin(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, nil, logger.NewNop())
	ctx := context.Background()
	adminID := uuid.New()

	mockRepo.On("Upsert", ctx, mock.MatchedBy(func(s *domain.FeeSettings) bool {
		return s.Currency == domain.SYP && s.UpdatedBy != nil && *s.UpdatedBy == adminID
	})).Return(nil)

	settings, err := service.UpdateSettings(ctx, &UpdateRequest{
		Currency:           domain.SYP,
		TransferFeePercent: decimal.NewFromInt(1),
	}, adminID)

	require.NoError(t, err)
	assert.Equal(t, domain.SYP, settings.Currency)
	mockRepo.AssertExpectations(t)
}

package payment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/metrics"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) FindByUserAndCurrency(ctx context.Context, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error) {
	args := m.Called(ctx, userID, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

type MockAgentCashRepository struct {
	mock.Mock
}

func (m *MockAgentCashRepository) Add(ctx context.Context, agentID uuid.UUID, currency domain.Currency, amount decimal.Decimal) error {
	args := m.Called(ctx, agentID, currency, amount)
	return args.Error(0)
}

func (m *MockAgentCashRepository) Subtract(ctx context.Context, agentID uuid.UUID, currency domain.Currency, amount decimal.Decimal) error {
	args := m.Called(ctx, agentID, currency, amount)
	return args.Error(0)
}

type MockProfitRepository struct {
	mock.Mock
}

func (m *MockProfitRepository) Accrue(ctx context.Context, currency domain.Currency, amount decimal.Decimal) error {
	args := m.Called(ctx, currency, amount)
	return args.Error(0)
}

// fakeFeeProvider serves a flat 2% deposit fee, 1% withdrawal fee, 1% QR fee
// and a 50% agent commission cut.
type fakeFeeProvider struct{}

func (fakeFeeProvider) Settings(_ context.Context, currency domain.Currency) (*domain.FeeSettings, error) {
	return &domain.FeeSettings{
		Currency:               currency,
		DepositFeePercent:      decimal.NewFromInt(2),
		WithdrawalFeePercent:   decimal.NewFromInt(1),
		QRPaymentFeePercent:    decimal.NewFromInt(1),
		AgentCommissionPercent: decimal.NewFromInt(50),
	}, nil
}

func (f fakeFeeProvider) Quote(ctx context.Context, currency domain.Currency, txType domain.TransactionType, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	settings, _ := f.Settings(ctx, currency)
	var percent decimal.Decimal
	switch txType {
	case domain.TransactionTypeDeposit:
		percent = settings.DepositFeePercent
	case domain.TransactionTypeWithdrawal:
		percent = settings.WithdrawalFeePercent
	case domain.TransactionTypeQRPayment:
		percent = settings.QRPaymentFeePercent
	}
	fee := amount.Mul(percent).Div(decimal.NewFromInt(100)).Round(currency.Exponent())
	return fee, amount.Add(fee), nil
}

type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeNotifier struct{}

func (fakeNotifier) Notify(context.Context, uuid.UUID, string, map[string]interface{}) error {
	return nil
}

type fixture struct {
	svc       *Service
	users     *MockUserRepository
	wallets   *MockWalletRepository
	txs       *MockTransactionRepository
	agentCash *MockAgentCashRepository
	profits   *MockProfitRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:     new(MockUserRepository),
		wallets:   new(MockWalletRepository),
		txs:       new(MockTransactionRepository),
		agentCash: new(MockAgentCashRepository),
		profits:   new(MockProfitRepository),
	}
	f.svc = NewService(
		f.users,
		f.wallets,
		f.txs,
		f.agentCash,
		f.profits,
		fakeFeeProvider{},
		fakeTxManager{},
		fakeNotifier{},
		metrics.NewNop(),
		logger.NewNop(),
	)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func eq(want string) interface{} {
	return mock.MatchedBy(func(a decimal.Decimal) bool { return a.Equal(dec(want)) })
}

func TestDepositCreditsNetAndSplitsFee(t *testing.T) {
	f := newFixture(t)
	agentID := uuid.New()
	userID := uuid.New()
	userWalletID := uuid.New()
	agentWalletID := uuid.New()

	f.users.On("FindByPhone", mock.Anything, "+963912345678").
		Return(&domain.User{ID: userID, Phone: "+963912345678", Role: domain.RoleUser, IsActive: true}, nil)
	f.wallets.On("FindByUserAndCurrency", mock.Anything, userID, domain.USD).
		Return(&domain.Wallet{ID: userWalletID, Balance: dec("0")}, nil)
	f.wallets.On("FindByUserAndCurrency", mock.Anything, agentID, domain.USD).
		Return(&domain.Wallet{ID: agentWalletID}, nil)

	// 100 in: 2% fee = 2.00, user credited 98, commission 1.00 to the
	// agent wallet, 1.00 to the profit pool, cash position +100.
	f.wallets.On("Credit", mock.Anything, userWalletID, eq("98")).Return(nil)
	f.agentCash.On("Add", mock.Anything, agentID, domain.USD, eq("100")).Return(nil)
	f.wallets.On("Credit", mock.Anything, agentWalletID, eq("1")).Return(nil)
	f.profits.On("Accrue", mock.Anything, domain.USD, eq("1")).Return(nil)
	f.txs.On("Create", mock.Anything, mock.MatchedBy(func(tx *domain.Transaction) bool {
		return tx.Type == domain.TransactionTypeDeposit &&
			tx.Amount.Equal(dec("100")) &&
			tx.FeeAmount.Equal(dec("2")) &&
			tx.NetAmount.Equal(dec("98")) &&
			tx.Status == domain.TransactionStatusCompleted
	})).Return(nil)

	tx, err := f.svc.Deposit(context.Background(), agentID, &DepositRequest{
		UserPhone: "0912345678",
		Amount:    dec("100"),
		Currency:  domain.USD,
	})
	require.NoError(t, err)
	assert.True(t, tx.NetAmount.Equal(dec("98")))

	f.wallets.AssertExpectations(t)
	f.agentCash.AssertExpectations(t)
	f.profits.AssertExpectations(t)
	f.txs.AssertExpectations(t)
}

func TestWithdrawDebitsTotalAndDrainsAgentCash(t *testing.T) {
	f := newFixture(t)
	agentID := uuid.New()
	userID := uuid.New()
	userWalletID := uuid.New()
	agentWalletID := uuid.New()

	f.users.On("FindByPhone", mock.Anything, "+963912345678").
		Return(&domain.User{ID: userID, Phone: "+963912345678", Role: domain.RoleUser, IsActive: true}, nil)
	f.wallets.On("FindByUserAndCurrency", mock.Anything, userID, domain.USD).
		Return(&domain.Wallet{ID: userWalletID, Balance: dec("500")}, nil)
	f.wallets.On("FindByUserAndCurrency", mock.Anything, agentID, domain.USD).
		Return(&domain.Wallet{ID: agentWalletID}, nil)

	// 100 out: 1% fee = 1.00, user debited 101, agent pays 100 cash,
	// commission 0.50, platform 0.50.
	f.wallets.On("Debit", mock.Anything, userWalletID, eq("101")).Return(nil)
	f.agentCash.On("Subtract", mock.Anything, agentID, domain.USD, eq("100")).Return(nil)
	f.wallets.On("Credit", mock.Anything, agentWalletID, eq("0.5")).Return(nil)
	f.profits.On("Accrue", mock.Anything, domain.USD, eq("0.5")).Return(nil)
	f.txs.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Withdraw(context.Background(), agentID, &WithdrawalRequest{
		UserPhone: "0912345678",
		Amount:    dec("100"),
		Currency:  domain.USD,
	})
	require.NoError(t, err)
	f.wallets.AssertExpectations(t)
	f.agentCash.AssertExpectations(t)
}

func TestWithdrawRejectsInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	agentID := uuid.New()
	userID := uuid.New()

	f.users.On("FindByPhone", mock.Anything, mock.Anything).
		Return(&domain.User{ID: userID, IsActive: true}, nil)
	f.wallets.On("FindByUserAndCurrency", mock.Anything, userID, domain.USD).
		Return(&domain.Wallet{ID: uuid.New(), Balance: dec("100")}, nil)

	// Balance 100 covers the amount but not amount+fee.
	_, err := f.svc.Withdraw(context.Background(), agentID, &WithdrawalRequest{
		UserPhone: "0912345678",
		Amount:    dec("100"),
		Currency:  domain.USD,
	})
	assert.ErrorIs(t, err, errors.ErrInsufficientBalance)
	f.txs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPayQRRejectsNonMerchant(t *testing.T) {
	f := newFixture(t)
	payerID := uuid.New()
	otherID := uuid.New()

	f.users.On("FindByID", mock.Anything, otherID).
		Return(&domain.User{ID: otherID, Role: domain.RoleUser, IsActive: true}, nil)

	_, err := f.svc.PayQR(context.Background(), payerID, &QRPaymentRequest{
		MerchantID: otherID,
		Amount:     dec("50"),
		Currency:   domain.USD,
	})
	assert.ErrorIs(t, err, errors.ErrRecipientNotFound)
}

func TestPayQRCommitsAtomically(t *testing.T) {
	f := newFixture(t)
	payerID := uuid.New()
	merchantID := uuid.New()
	payerWalletID := uuid.New()
	merchantWalletID := uuid.New()

	f.users.On("FindByID", mock.Anything, merchantID).
		Return(&domain.User{ID: merchantID, Role: domain.RoleMerchant, IsActive: true, FirstName: "Corner", LastName: "Shop"}, nil)
	f.wallets.On("FindByUserAndCurrency", mock.Anything, payerID, domain.SYP).
		Return(&domain.Wallet{ID: payerWalletID, Balance: dec("200000")}, nil)
	f.wallets.On("FindByUserAndCurrency", mock.Anything, merchantID, domain.SYP).
		Return(&domain.Wallet{ID: merchantWalletID}, nil)

	// 100000 SYP at 1%: fee 1000, payer debited 101000, merchant gets the
	// full amount, the fee is all platform revenue.
	f.wallets.On("Debit", mock.Anything, payerWalletID, eq("101000")).Return(nil)
	f.wallets.On("Credit", mock.Anything, merchantWalletID, eq("100000")).Return(nil)
	f.profits.On("Accrue", mock.Anything, domain.SYP, eq("1000")).Return(nil)
	f.txs.On("Create", mock.Anything, mock.MatchedBy(func(tx *domain.Transaction) bool {
		return tx.Type == domain.TransactionTypeQRPayment && tx.FeeAmount.Equal(dec("1000"))
	})).Return(nil)

	_, err := f.svc.PayQR(context.Background(), payerID, &QRPaymentRequest{
		MerchantID: merchantID,
		Amount:     dec("100000"),
		Currency:   domain.SYP,
	})
	require.NoError(t, err)
	f.wallets.AssertExpectations(t)
	f.profits.AssertExpectations(t)
	f.txs.AssertExpectations(t)
}

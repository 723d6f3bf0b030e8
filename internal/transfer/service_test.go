package transfer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/metrics"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/config"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
)

// --- Mocks ---

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

func (m *MockWalletRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
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

type MockProfitRepository struct {
	mock.Mock
}

func (m *MockProfitRepository) Accrue(ctx context.Context, currency domain.Currency, amount decimal.Decimal) error {
	args := m.Called(ctx, currency, amount)
	return args.Error(0)
}

// fakeFeeQuoter charges a flat 0.5% with no fixed component.
type fakeFeeQuoter struct{}

func (fakeFeeQuoter) Quote(ctx context.Context, currency domain.Currency, txType domain.TransactionType, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	fee := amount.Mul(decimal.RequireFromString("0.5")).Div(decimal.NewFromInt(100)).Round(currency.Exponent())
	return fee, amount.Add(fee), nil
}

// fakeTxManager runs the callback without a real transaction.
type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
	data   []map[string]interface{}
}

func (n *fakeNotifier) Notify(ctx context.Context, userID uuid.UUID, eventType string, data map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
	n.data = append(n.data, data)
	return nil
}

// memStore is an in-memory RequestStore; TTLs are tracked but only enforced
// by the service's ExpiresAt check.
type memStore struct {
	mu       sync.Mutex
	requests map[string]*Request
}

func newMemStore() *memStore {
	return &memStore{requests: make(map[string]*Request)}
}

func (s *memStore) Save(ctx context.Context, req *Request, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s *memStore) Load(ctx context.Context, id string) (*Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, errors.ErrTransferRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (s *memStore) Update(ctx context.Context, req *Request) error {
	return s.Save(ctx, req, 0)
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.requests, id)
	return nil
}

// --- Helpers ---

func testConfig() config.TransferConfig {
	return config.TransferConfig{
		OTPExpiry:   300 * time.Second,
		OTPAttempts: 3,
		OTPDigits:   6,
	}
}

type fixture struct {
	service  *Service
	users    *MockUserRepository
	wallets  *MockWalletRepository
	txs      *MockTransactionRepository
	profits  *MockProfitRepository
	store    *memStore
	notifier *fakeNotifier
}

func newFixture() *fixture {
	f := &fixture{
		users:    new(MockUserRepository),
		wallets:  new(MockWalletRepository),
		txs:      new(MockTransactionRepository),
		profits:  new(MockProfitRepository),
		store:    newMemStore(),
		notifier: &fakeNotifier{},
	}
	f.service = NewService(
		f.users, f.wallets, f.txs, f.profits,
		fakeFeeQuoter{}, fakeTxManager{}, f.store, f.notifier,
		metrics.NewNop(), testConfig(), logger.NewNop(),
	)
	return f
}

func (f *fixture) initiate(t *testing.T, senderID uuid.UUID, balance string) (*InitiateResponse, *Request) {
	t.Helper()
	ctx := context.Background()
	recipientID := uuid.New()
	senderWallet := &domain.Wallet{ID: uuid.New(), UserID: senderID, Currency: domain.USD, Balance: decimal.RequireFromString(balance)}
	recipientWallet := &domain.Wallet{ID: uuid.New(), UserID: recipientID, Currency: domain.USD}

	f.users.On("FindByPhone", ctx, "+963991234567").Return(&domain.User{ID: recipientID, Phone: "+963991234567", IsActive: true}, nil)
	f.wallets.On("FindByUserAndCurrency", ctx, senderID, domain.USD).Return(senderWallet, nil)
	f.wallets.On("FindByUserAndCurrency", ctx, recipientID, domain.USD).Return(recipientWallet, nil)

	resp, err := f.service.Initiate(ctx, senderID, &InitiateRequest{
		RecipientPhone: "+963991234567",
		Amount:         decimal.NewFromInt(100),
		Currency:       domain.USD,
	})
	require.NoError(t, err)

	stored, err := f.store.Load(ctx, resp.TransferRequestID)
	require.NoError(t, err)
	return resp, stored
}

func codeFor(t *testing.T, req *Request) string {
	t.Helper()
	code, err := generateCode(req.OTPSecret, 6)
	require.NoError(t, err)
	return code
}

// wrongCodeFor returns a code guaranteed not to match the request's secret.
func wrongCodeFor(t *testing.T, req *Request) string {
	t.Helper()
	code := codeFor(t, req)
	flipped := byte('0')
	if code[0] == '0' {
		flipped = '1'
	}
	return string(flipped) + code[1:]
}

// --- Tests ---

func TestInitiateReturnsExpiryWindow(t *testing.T) {
	f := newFixture()
	senderID := uuid.New()

	resp, stored := f.initiate(t, senderID, "1000")

	assert.Equal(t, 300, resp.ExpiresIn)
	assert.Equal(t, 3, stored.RemainingAttempts)
	assert.True(t, decimal.RequireFromString("0.5").Equal(stored.Fee), "fee = %s", stored.Fee)
}

func TestInitiateInsufficientBalance(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	senderID := uuid.New()
	recipientID := uuid.New()

	// Balance covers the amount but not amount+fee.
	f.users.On("FindByPhone", ctx, "+963991234567").Return(&domain.User{ID: recipientID, IsActive: true}, nil)
	f.wallets.On("FindByUserAndCurrency", ctx, senderID, domain.USD).
		Return(&domain.Wallet{ID: uuid.New(), Balance: decimal.NewFromInt(100)}, nil)
	f.wallets.On("FindByUserAndCurrency", ctx, recipientID, domain.USD).
		Return(&domain.Wallet{ID: uuid.New()}, nil)

	_, err := f.service.Initiate(ctx, senderID, &InitiateRequest{
		RecipientPhone: "+963991234567",
		Amount:         decimal.NewFromInt(100),
		Currency:       domain.USD,
	})

	assert.ErrorIs(t, err, errors.ErrInsufficientBalance)
}

func TestInitiateRejectsSelfTransfer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	senderID := uuid.New()

	f.users.On("FindByPhone", ctx, "+963991234567").Return(&domain.User{ID: senderID, IsActive: true}, nil)

	_, err := f.service.Initiate(ctx, senderID, &InitiateRequest{
		RecipientPhone: "+963991234567",
		Amount:         decimal.NewFromInt(10),
		Currency:       domain.USD,
	})

	assert.ErrorIs(t, err, errors.ErrSelfTransfer)
}

func TestConfirmWrongCodeCountsDownAndExhausts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	senderID := uuid.New()
	resp, stored := f.initiate(t, senderID, "1000")

	confirm := &ConfirmRequest{TransferRequestID: resp.TransferRequestID, OTP: wrongCodeFor(t, stored)}

	_, remaining, err := f.service.Confirm(ctx, senderID, confirm)
	assert.ErrorIs(t, err, errors.ErrOTPMismatch)
	assert.Equal(t, 2, remaining)

	_, remaining, err = f.service.Confirm(ctx, senderID, confirm)
	assert.ErrorIs(t, err, errors.ErrOTPMismatch)
	assert.Equal(t, 1, remaining)

	_, _, err = f.service.Confirm(ctx, senderID, confirm)
	assert.ErrorIs(t, err, errors.ErrOTPAttemptsExhausted)

	// The request is gone; even the right code is now useless.
	_, _, err = f.service.Confirm(ctx, senderID, confirm)
	assert.ErrorIs(t, err, errors.ErrTransferRequestNotFound)
}

func TestConfirmAfterExpiryFailsRegardlessOfCode(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	senderID := uuid.New()
	resp, stored := f.initiate(t, senderID, "1000")

	// Force the window shut.
	stored.ExpiresAt = time.Now().Add(-time.Second)
	require.NoError(t, f.store.Update(ctx, stored))

	_, _, err := f.service.Confirm(ctx, senderID, &ConfirmRequest{
		TransferRequestID: resp.TransferRequestID,
		OTP:               codeFor(t, stored),
	})

	assert.ErrorIs(t, err, errors.ErrTransferRequestNotFound)
}

func TestConfirmCommitsAtomically(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	senderID := uuid.New()
	resp, stored := f.initiate(t, senderID, "1000")

	total := decimal.RequireFromString("100.5")
	f.wallets.On("Debit", mock.Anything, stored.SenderWalletID, mock.MatchedBy(total.Equal)).Return(nil)
	f.wallets.On("Credit", mock.Anything, stored.RecipientWalletID, mock.MatchedBy(decimal.NewFromInt(100).Equal)).Return(nil)
	f.txs.On("Create", mock.Anything, mock.MatchedBy(func(tx *domain.Transaction) bool {
		return tx.Type == domain.TransactionTypeTransfer &&
			tx.Status == domain.TransactionStatusCompleted &&
			tx.Amount.Equal(decimal.NewFromInt(100)) &&
			tx.FeeAmount.Equal(decimal.RequireFromString("0.5"))
	})).Return(nil)
	f.profits.On("Accrue", mock.Anything, domain.USD, mock.MatchedBy(decimal.RequireFromString("0.5").Equal)).Return(nil)

	result, _, err := f.service.Confirm(ctx, senderID, &ConfirmRequest{
		TransferRequestID: resp.TransferRequestID,
		OTP:               codeFor(t, stored),
	})

	require.NoError(t, err)
	require.NotNil(t, result.Transaction)
	f.wallets.AssertExpectations(t)
	f.txs.AssertExpectations(t)
	f.profits.AssertExpectations(t)

	// Consumed: a second confirm must not double-spend.
	_, _, err = f.service.Confirm(ctx, senderID, &ConfirmRequest{
		TransferRequestID: resp.TransferRequestID,
		OTP:               codeFor(t, stored),
	})
	assert.ErrorIs(t, err, errors.ErrTransferRequestNotFound)
}

func TestConfirmDebitFailureRollsBack(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	senderID := uuid.New()
	resp, stored := f.initiate(t, senderID, "1000")

	f.wallets.On("Debit", mock.Anything, stored.SenderWalletID, mock.Anything).
		Return(errors.ErrInsufficientBalance)

	_, _, err := f.service.Confirm(ctx, senderID, &ConfirmRequest{
		TransferRequestID: resp.TransferRequestID,
		OTP:               codeFor(t, stored),
	})

	assert.ErrorIs(t, err, errors.ErrInsufficientBalance)
	f.txs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConfirmRejectsOtherUsersRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	senderID := uuid.New()
	resp, stored := f.initiate(t, senderID, "1000")

	_, _, err := f.service.Confirm(ctx, uuid.New(), &ConfirmRequest{
		TransferRequestID: resp.TransferRequestID,
		OTP:               codeFor(t, stored),
	})

	assert.ErrorIs(t, err, errors.ErrTransferRequestNotFound)
}

func TestResendRotatesSecretKeepsAttempts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	senderID := uuid.New()
	resp, before := f.initiate(t, senderID, "1000")

	// Burn one attempt first.
	_, _, err := f.service.Confirm(ctx, senderID, &ConfirmRequest{TransferRequestID: resp.TransferRequestID, OTP: wrongCodeFor(t, before)})
	require.ErrorIs(t, err, errors.ErrOTPMismatch)

	_, err = f.service.Resend(ctx, senderID, &ResendRequest{TransferRequestID: resp.TransferRequestID})
	require.NoError(t, err)

	after, err := f.store.Load(ctx, resp.TransferRequestID)
	require.NoError(t, err)
	assert.NotEqual(t, before.OTPSecret, after.OTPSecret)
	assert.Equal(t, 2, after.RemainingAttempts)
}

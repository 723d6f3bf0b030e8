package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/cache"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
)

// Request is the ephemeral state of an initiated, unconfirmed transfer.
// It lives only in Redis; the TTL is the authoritative expiry, ExpiresAt is
// kept in the payload as a second check against replica clock drift.
type Request struct {
	ID                string          `json:"id"`
	SenderID          uuid.UUID       `json:"sender_id"`
	SenderWalletID    uuid.UUID       `json:"sender_wallet_id"`
	RecipientID       uuid.UUID       `json:"recipient_id"`
	RecipientWalletID uuid.UUID       `json:"recipient_wallet_id"`
	RecipientPhone    string          `json:"recipient_phone"`
	Amount            decimal.Decimal `json:"amount"`
	Fee               decimal.Decimal `json:"fee"`
	Currency          domain.Currency `json:"currency"`
	OTPSecret         string          `json:"otp_secret"`
	RemainingAttempts int             `json:"remaining_attempts"`
	ExpiresAt         time.Time       `json:"expires_at"`
}

// RequestStore persists pending transfer requests for the OTP window.
type RequestStore interface {
	Save(ctx context.Context, req *Request, ttl time.Duration) error
	// Load returns ErrTransferRequestNotFound for missing or expired requests.
	Load(ctx context.Context, id string) (*Request, error)
	// Update rewrites the request without extending its lifetime.
	Update(ctx context.Context, req *Request) error
	Delete(ctx context.Context, id string) error
}

const requestKeyPrefix = "transfer:request:"

// redisStore keeps requests in Redis under a TTL.
type redisStore struct {
	cache *cache.RedisCache
}

func NewRedisStore(c *cache.RedisCache) RequestStore {
	return &redisStore{cache: c}
}

func (s *redisStore) Save(ctx context.Context, req *Request, ttl time.Duration) error {
	return s.cache.Set(ctx, requestKeyPrefix+req.ID, req, ttl)
}

func (s *redisStore) Load(ctx context.Context, id string) (*Request, error) {
	req := &Request{}
	if err := s.cache.Get(ctx, requestKeyPrefix+id, req); err != nil {
		if cache.IsMiss(err) {
			return nil, errors.ErrTransferRequestNotFound
		}
		return nil, errors.Wrap(err, "failed to load transfer request")
	}
	return req, nil
}

func (s *redisStore) Update(ctx context.Context, req *Request) error {
	key := requestKeyPrefix + req.ID
	ttl, err := s.cache.TTL(ctx, key)
	if err != nil || ttl <= 0 {
		return errors.ErrTransferRequestNotFound
	}
	return s.cache.Set(ctx, key, req, ttl)
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, requestKeyPrefix+id)
}

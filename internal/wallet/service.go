// Package wallet exposes balance and transaction history queries.
package wallet

import (
	"context"

	"github.com/google/uuid"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
)

type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Wallet, error)
	FindByUserAndCurrency(ctx context.Context, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error)
}

type TransactionRepository interface {
	FindByWalletID(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*domain.Transaction, error)
	CountByWalletID(ctx context.Context, walletID uuid.UUID) (int, error)
}

type Service struct {
	wallets Repository
	txs     TransactionRepository
}

func NewService(wallets Repository, txs TransactionRepository) *Service {
	return &Service{wallets: wallets, txs: txs}
}

// Balances returns all of a user's wallets.
func (s *Service) Balances(ctx context.Context, userID uuid.UUID) ([]*domain.Wallet, error) {
	return s.wallets.FindByUserID(ctx, userID)
}

type HistoryPage struct {
	Transactions []*domain.Transaction `json:"transactions"`
	Total        int                   `json:"total"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

// History pages through one wallet's transactions. The wallet must belong
// to the requesting user.
func (s *Service) History(ctx context.Context, userID, walletID uuid.UUID, limit, offset int) (*HistoryPage, error) {
	wallet, err := s.wallets.FindByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if wallet.UserID != userID {
		return nil, errors.ErrWalletNotFound
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	txs, err := s.txs.FindByWalletID(ctx, walletID, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.txs.CountByWalletID(ctx, walletID)
	if err != nil {
		return nil, err
	}

	return &HistoryPage{
		Transactions: txs,
		Total:        total,
		Limit:        limit,
		Offset:       offset,
	}, nil
}

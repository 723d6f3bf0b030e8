package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
)

type FeeSettingsRepository struct {
	db *sqlx.DB
}

func NewFeeSettingsRepository(db *sqlx.DB) *FeeSettingsRepository {
	return &FeeSettingsRepository{db: db}
}

func (r *FeeSettingsRepository) GetByCurrency(ctx context.Context, currency domain.Currency) (*domain.FeeSettings, error) {
	settings := &domain.FeeSettings{}
	query := `SELECT * FROM fee_settings WHERE currency = $1`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), settings, query, currency)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrFeeSettingsNotFound
		}
		return nil, errors.Wrap(err, "failed to get fee settings")
	}
	return settings, nil
}

// Upsert replaces the fee schedule for the settings' currency.
func (r *FeeSettingsRepository) Upsert(ctx context.Context, settings *domain.FeeSettings) error {
	query := `
		INSERT INTO fee_settings (
			id, currency,
			deposit_fee_percent, deposit_fee_fixed,
			withdrawal_fee_percent, withdrawal_fee_fixed,
			transfer_fee_percent, transfer_fee_fixed,
			qr_payment_fee_percent, qr_payment_fee_fixed,
			service_fee_percent, service_fee_fixed,
			agent_commission_percent,
			settlement_platform_commission, settlement_agent_commission,
			updated_by, updated_at
		) VALUES (
			:id, :currency,
			:deposit_fee_percent, :deposit_fee_fixed,
			:withdrawal_fee_percent, :withdrawal_fee_fixed,
			:transfer_fee_percent, :transfer_fee_fixed,
			:qr_payment_fee_percent, :qr_payment_fee_fixed,
			:service_fee_percent, :service_fee_fixed,
			:agent_commission_percent,
			:settlement_platform_commission, :settlement_agent_commission,
			:updated_by, :updated_at
		)
		ON CONFLICT (currency) DO UPDATE SET
			deposit_fee_percent = EXCLUDED.deposit_fee_percent,
			deposit_fee_fixed = EXCLUDED.deposit_fee_fixed,
			withdrawal_fee_percent = EXCLUDED.withdrawal_fee_percent,
			withdrawal_fee_fixed = EXCLUDED.withdrawal_fee_fixed,
			transfer_fee_percent = EXCLUDED.transfer_fee_percent,
			transfer_fee_fixed = EXCLUDED.transfer_fee_fixed,
			qr_payment_fee_percent = EXCLUDED.qr_payment_fee_percent,
			qr_payment_fee_fixed = EXCLUDED.qr_payment_fee_fixed,
			service_fee_percent = EXCLUDED.service_fee_percent,
			service_fee_fixed = EXCLUDED.service_fee_fixed,
			agent_commission_percent = EXCLUDED.agent_commission_percent,
			settlement_platform_commission = EXCLUDED.settlement_platform_commission,
			settlement_agent_commission = EXCLUDED.settlement_agent_commission,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
	`
	_, err := sqlx.NamedExecContext(ctx, ext(ctx, r.db), query, settings)
	return errors.Wrap(err, "failed to upsert fee settings")
}

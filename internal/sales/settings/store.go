// Package settings stores mutable application settings such as the quote
// approval threshold. Values are read from PostgreSQL on every call.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/genuino/cotizaciones/internal/platform/db"
)

// KeyApprovalThreshold is the app_settings key for the approval threshold.
const KeyApprovalThreshold = "approval_threshold"

// DefaultApprovalThreshold applies when no threshold has been stored.
var DefaultApprovalThreshold = decimal.RequireFromString("10000.00")

// ErrCorruptValue reports a stored value that does not parse.
var ErrCorruptValue = errors.New("settings: stored value is not a number")

// Get returns the raw value for key and whether it exists.
func Get(ctx context.Context, q db.DBTX, key string) (string, bool, error) {
	var value string
	err := q.QueryRow(ctx, `SELECT setting_value FROM app_settings WHERE setting_key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("settings: read %s: %w", key, err)
	}
	return value, true, nil
}

// Put upserts key.
func Put(ctx context.Context, q db.DBTX, key, value string) error {
	_, err := q.Exec(ctx, `
		INSERT INTO app_settings (setting_key, setting_value) VALUES ($1, $2)
		ON CONFLICT (setting_key) DO UPDATE SET setting_value = EXCLUDED.setting_value`, key, value)
	if err != nil {
		return fmt.Errorf("settings: write %s: %w", key, err)
	}
	return nil
}

// ReadThreshold returns the stored approval threshold or the default when unset.
// It runs on q so quote creation can read it inside its own transaction.
func ReadThreshold(ctx context.Context, q db.DBTX) (decimal.Decimal, error) {
	raw, ok, err := Get(ctx, q, KeyApprovalThreshold)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return DefaultApprovalThreshold, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrCorruptValue, raw)
	}
	return value, nil
}

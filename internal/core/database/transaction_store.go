package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoellers/insightdeck/internal/models"
)

const transactionColumns = `
	transaction_id, COALESCE(event_index, ''), COALESCE(event_type, ''), time, session_start_time,
	COALESCE(merchant_id, ''), COALESCE(merchant_name, ''), COALESCE(merchant_category, ''),
	COALESCE(total_amount, 0), COALESCE(payment_amount, ''), COALESCE(currency, 'EUR'), COALESCE(pis_payment_reference, ''),
	COALESCE(user_id, ''), COALESCE(user_location, ''),
	COALESCE(browser, ''), COALESCE(device_type, ''), COALESCE(language, ''),
	COALESCE(is_guest_mode, FALSE), COALESCE(is_returning_user, FALSE), COALESCE(is_express, FALSE),
	COALESCE(event_failure_message, ''), COALESCE(checkout_session_abort_reason, '')`

// ListTransactions returns one page of the payment event feed for a
// merchant, newest first, plus the exact count matching the filter.
func (c *DatabaseClient) ListTransactions(ctx context.Context, merchantID, search string, limit, offset int) ([]models.Transaction, int, error) {
	where := ` WHERE merchant_id = $1`
	args := []any{merchantID}
	if search != "" {
		where += ` AND (transaction_id ILIKE $2 OR event_type ILIKE $2 OR event_failure_message ILIKE $2)`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM basic_paying_flow`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + transactionColumns + ` FROM basic_paying_flow` + where +
		` ORDER BY time DESC NULLS LAST`
	args = append(args, limit)
	q += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, offset)
	q += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *tx)
	}
	return out, total, rows.Err()
}

func (c *DatabaseClient) GetTransactionByID(ctx context.Context, merchantID, transactionID string) (*models.Transaction, error) {
	q := `SELECT ` + transactionColumns + ` FROM basic_paying_flow WHERE merchant_id = $1 AND transaction_id = $2 LIMIT 1`
	tx, err := scanTransaction(c.db.QueryRowContext(ctx, q, merchantID, transactionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func scanTransaction(row scanner) (*models.Transaction, error) {
	var tx models.Transaction
	if err := row.Scan(
		&tx.TransactionID, &tx.EventIndex, &tx.EventType, &tx.Time, &tx.SessionStartTime,
		&tx.MerchantID, &tx.MerchantName, &tx.MerchantCategory,
		&tx.TotalAmount, &tx.PaymentAmount, &tx.Currency, &tx.PISPaymentReference,
		&tx.UserID, &tx.UserLocation,
		&tx.Browser, &tx.DeviceType, &tx.Language,
		&tx.IsGuestMode, &tx.IsReturningUser, &tx.IsExpress,
		&tx.EventFailureMessage, &tx.CheckoutSessionAbortReason,
	); err != nil {
		return nil, err
	}
	return &tx, nil
}

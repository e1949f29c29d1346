package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// postgresLedger implements Ledger on a pooled PostgreSQL connection.
type postgresLedger struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresLedger creates a PostgreSQL-backed order ledger.
func NewPostgresLedger(pool *pgxpool.Pool, logger zerolog.Logger) Ledger {
	return &postgresLedger{
		pool:   pool,
		logger: logger.With().Str("component", "ledger").Logger(),
	}
}

// Append inserts one completed-order row. The price column is NUMERIC(10,2);
// the total is bound as its fixed two-decimal rendering so no binary floating
// point is involved anywhere on the write path.
func (l *postgresLedger) Append(ctx context.Context, ts time.Time, total decimal.Decimal) error {
	query := `
		INSERT INTO orders (time, price)
		VALUES ($1, $2)
	`

	_, err := l.pool.Exec(ctx, query, ts.UTC(), total.StringFixed(2))
	if err != nil {
		l.logger.Error().
			Err(err).
			Time("time", ts.UTC()).
			Str("total", total.StringFixed(2)).
			Msg("failed to append order")
		return fmt.Errorf("failed to append order: %w", err)
	}

	l.logger.Debug().
		Str("total", total.StringFixed(2)).
		Msg("order appended")

	return nil
}

// Package ledger persists completed orders. The ledger is append-only: no
// read, update, or delete path exists in this process.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger records completed orders durably. Append returns only once the
// storage backend has acknowledged the write.
type Ledger interface {
	// Append writes one completed-order row: the submission instant (UTC)
	// and its fixed-point total.
	Append(ctx context.Context, ts time.Time, total decimal.Decimal) error
}

package playername

import "context"

// Repository exposes the read side of the name ledger. Writes happen inside
// ranking ingestion transactions.
type Repository interface {
	CurrentName(ctx context.Context, playerID string) (string, bool, error)
	RefreshLatestNames(ctx context.Context) error
}

package repositories

import "context"

// TransactionManager runs a unit of work atomically. Repositories called with the
// context handed to fn take part in the same transaction; if fn returns an error
// every write made inside it is discarded.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

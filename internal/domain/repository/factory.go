package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Products() ProductRepository
	Keys() KeyRepository
	Orders() OrderRepository
	Tokens() TokenRepository
	Audit() AuditRepository
	Admins() AdminRepository
}

// Transactor runs fn with repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos Factory) error) error
}

// Store is the full persistence surface used by use cases.
type Store interface {
	Factory
	Transactor
}

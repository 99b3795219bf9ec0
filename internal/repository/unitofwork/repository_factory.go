package unitofwork

import "context"

// RepositoryFactory hands out units of work over the session store.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

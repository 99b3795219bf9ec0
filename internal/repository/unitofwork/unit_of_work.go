package unitofwork

import (
	"context"

	"training-os-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	DayNoteRepository() contract.DayNoteRepository
	WeeklyPlanRepository() contract.WeeklyPlanRepository
}

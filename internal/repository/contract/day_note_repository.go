package contract

import (
	"context"

	"training-os-be/internal/entity"
	"training-os-be/internal/repository/specification"
)

type DayNoteRepository interface {
	Upsert(ctx context.Context, note *entity.DayNote) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DayNote, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DayNote, error)
}

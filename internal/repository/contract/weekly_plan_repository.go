package contract

import (
	"context"

	"training-os-be/internal/entity"
	"training-os-be/internal/repository/specification"
)

type WeeklyPlanRepository interface {
	Upsert(ctx context.Context, plan *entity.WeeklyPlan) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WeeklyPlan, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WeeklyPlan, error)
}

package implementation

import (
	"context"
	"errors"

	"training-os-be/internal/entity"
	"training-os-be/internal/mapper"
	"training-os-be/internal/model"
	"training-os-be/internal/repository/contract"
	"training-os-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WeeklyPlanRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WeeklyPlanMapper
}

func NewWeeklyPlanRepository(db *gorm.DB) contract.WeeklyPlanRepository {
	return &WeeklyPlanRepositoryImpl{
		db:     db,
		mapper: mapper.NewWeeklyPlanMapper(),
	}
}

func (r *WeeklyPlanRepositoryImpl) Upsert(ctx context.Context, plan *entity.WeeklyPlan) error {
	m := r.mapper.ToModel(plan)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "year"}, {Name: "week_number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"description", "target_distance_km", "target_sessions", "tags", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	stored, err := r.FindOne(ctx, specification.ByYearWeek{Year: plan.Year, Week: plan.WeekNumber})
	if err != nil {
		return err
	}
	if stored != nil {
		*plan = *stored
	}
	return nil
}

func (r *WeeklyPlanRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WeeklyPlan, error) {
	var m model.WeeklyPlan
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *WeeklyPlanRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WeeklyPlan, error) {
	var models []*model.WeeklyPlan
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

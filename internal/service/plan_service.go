package service

import (
	"context"
	"strings"

	"training-os-be/internal/dto"
	"training-os-be/internal/entity"
	"training-os-be/internal/pkg/logger"
	"training-os-be/internal/repository/specification"
	"training-os-be/internal/repository/unitofwork"
	"training-os-be/pkg/isoweek"
)

type PlanService interface {
	Upsert(ctx context.Context, req *dto.UpsertWeeklyPlanRequest) (*dto.WeeklyPlanResponse, error)
	Get(ctx context.Context, year, week int) (*dto.WeeklyPlanResponse, error)
}

type planService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewPlanService(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) PlanService {
	return &planService{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

func (s *planService) Upsert(ctx context.Context, req *dto.UpsertWeeklyPlanRequest) (*dto.WeeklyPlanResponse, error) {
	if err := isoweek.Validate(req.Year, req.WeekNumber); err != nil {
		return nil, err
	}

	plan := &entity.WeeklyPlan{
		Year:             req.Year,
		WeekNumber:       req.WeekNumber,
		Description:      strings.TrimSpace(req.Description),
		TargetDistanceKm: req.TargetDistanceKm,
		TargetSessions:   req.TargetSessions,
		Tags:             strings.TrimSpace(req.Tags),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.WeeklyPlanRepository().Upsert(ctx, plan); err != nil {
		return nil, err
	}

	s.logger.Info("PLAN", "Weekly plan saved", map[string]interface{}{
		"year": plan.Year,
		"week": plan.WeekNumber,
	})
	return toWeeklyPlanResponse(plan), nil
}

func (s *planService) Get(ctx context.Context, year, week int) (*dto.WeeklyPlanResponse, error) {
	if err := isoweek.Validate(year, week); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	plan, err := uow.WeeklyPlanRepository().FindOne(ctx, specification.ByYearWeek{Year: year, Week: week})
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return toWeeklyPlanResponse(plan), nil
}

func toWeeklyPlanResponse(p *entity.WeeklyPlan) *dto.WeeklyPlanResponse {
	if p == nil {
		return nil
	}
	return &dto.WeeklyPlanResponse{
		Year:             p.Year,
		WeekNumber:       p.WeekNumber,
		Description:      p.Description,
		TargetDistanceKm: p.TargetDistanceKm,
		TargetSessions:   p.TargetSessions,
		Tags:             p.Tags,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

package service

import (
	"context"
	"strings"

	"training-os-be/internal/dto"
	"training-os-be/internal/entity"
	"training-os-be/internal/pkg/logger"
	"training-os-be/internal/repository/specification"
	"training-os-be/internal/repository/unitofwork"
)

type IDayNoteService interface {
	Upsert(ctx context.Context, req *dto.UpsertDayNoteRequest) (*dto.DayNoteResponse, error)
	List(ctx context.Context, req *dto.DateRangeRequest) ([]*dto.DayNoteResponse, error)
}

type dayNoteService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewDayNoteService(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) IDayNoteService {
	return &dayNoteService{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// Upsert replaces the note for the day; there is at most one note per date.
func (s *dayNoteService) Upsert(ctx context.Context, req *dto.UpsertDayNoteRequest) (*dto.DayNoteResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	note := &entity.DayNote{Date: date, Note: strings.TrimSpace(req.Note)}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DayNoteRepository().Upsert(ctx, note); err != nil {
		return nil, err
	}
	return toDayNoteResponse(note), nil
}

func (s *dayNoteService) List(ctx context.Context, req *dto.DateRangeRequest) ([]*dto.DayNoteResponse, error) {
	from, to, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.DayNoteRepository().FindAll(ctx,
		specification.ByDateRange{From: from, To: to},
		specification.OrderBy{Field: "date"},
	)
	if err != nil {
		return nil, err
	}
	return toDayNoteResponses(notes), nil
}

func toDayNoteResponse(n *entity.DayNote) *dto.DayNoteResponse {
	return &dto.DayNoteResponse{
		Date:      n.Date.Format(dto.DateLayout),
		Note:      n.Note,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toDayNoteResponses(notes []*entity.DayNote) []*dto.DayNoteResponse {
	res := make([]*dto.DayNoteResponse, 0, len(notes))
	for _, n := range notes {
		res = append(res, toDayNoteResponse(n))
	}
	return res
}

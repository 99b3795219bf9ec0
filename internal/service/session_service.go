package service

import (
	"context"
	"fmt"
	"time"

	"training-os-be/internal/dto"
	"training-os-be/internal/entity"
	"training-os-be/internal/mapper"
	"training-os-be/internal/pkg/logger"
	"training-os-be/internal/repository/scope"
	"training-os-be/internal/repository/specification"
	"training-os-be/internal/repository/unitofwork"
	"training-os-be/pkg/keylock"
	"training-os-be/pkg/notes"

	"github.com/google/uuid"
)

type ISessionService interface {
	Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.MergeResultResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error)
	List(ctx context.Context, req *dto.ListSessionsRequest) ([]*dto.SessionResponse, error)
	Update(ctx context.Context, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ResetEdits(ctx context.Context, id uuid.UUID, fields []string) (*dto.SessionResponse, error)
	MigrateLegacyFocus(ctx context.Context) (*dto.MigrateFocusResponse, error)
}

type sessionService struct {
	uowFactory unitofwork.RepositoryFactory
	reconciler IReconcileService
	locks      *keylock.Locker
	logger     logger.ILogger
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	reconciler IReconcileService,
	locks *keylock.Locker,
	logger logger.ILogger,
) ISessionService {
	return &sessionService{
		uowFactory: uowFactory,
		reconciler: reconciler,
		locks:      locks,
		logger:     logger,
	}
}

func parseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(dto.DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	from, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date is before start date", ErrInvalidRange)
	}
	return from, to, nil
}

// Create runs a manual entry through reconciliation so it gets the same
// duplicate-suspect check as imported sessions.
func (s *sessionService) Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.MergeResultResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	var start *time.Time
	if req.StartTime != nil {
		t := req.StartTime.UTC()
		start = &t
	}

	candidate := &entity.Candidate{
		Source:                 entity.SourceManual,
		Date:                   date,
		Type:                   entity.SessionType(req.Type),
		StartTime:              start,
		DurationMinutes:        req.DurationMinutes,
		MovingDurationMinutes:  req.MovingDurationMinutes,
		ElapsedDurationMinutes: req.ElapsedDurationMinutes,
		DistanceKm:             req.DistanceKm,
		ElevationGainM:         req.ElevationGainM,
		AveragePaceMinPerKm:    req.AveragePaceMinPerKm,
		AverageHeartRateBpm:    req.AverageHeartRateBpm,
		MaxHeartRateBpm:        req.MaxHeartRateBpm,
		PerceivedIntensity:     req.PerceivedIntensity,
		Notes:                  req.Notes,
		FocusAreas:             notes.NormalizeFocus(req.FocusAreas),
	}

	result, err := s.reconciler.Merge(ctx, candidate)
	if err != nil {
		return nil, err
	}

	session, err := s.find(ctx, result.SessionId)
	if err != nil {
		return nil, err
	}

	return &dto.MergeResultResponse{
		Action:           string(result.Action),
		DuplicateSuspect: result.DuplicateSuspect,
		DuplicateOfId:    result.DuplicateOfId,
		Session:          toSessionResponse(session),
	}, nil
}

func (s *sessionService) find(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionService) Show(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

func (s *sessionService) List(ctx context.Context, req *dto.ListSessionsRequest) ([]*dto.SessionResponse, error) {
	from, to, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	specs := []specification.Specification{
		specification.ByDateRange{From: from, To: to},
		specification.Scoped(scope.Chronological),
	}
	if req.Type != "" {
		specs = append(specs, specification.ByType{Type: req.Type})
	}
	if req.Source != "" {
		specs = append(specs, specification.BySource{Source: req.Source})
	}
	if req.DuplicatesOnly {
		specs = append(specs, specification.DuplicateSuspects{})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.SessionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	return toSessionResponses(sessions), nil
}

// lockSession serializes edits with merges of the same (source, external_id).
func (s *sessionService) lockSession(ctx context.Context, id uuid.UUID) (*entity.Session, func(), error) {
	session, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if session.ExternalId == nil {
		return session, func() {}, nil
	}

	key := string(session.Source) + ":" + *session.ExternalId
	unlock := s.locks.Lock(key)
	// Re-read under the lock; a merge may have landed in between.
	session, err = s.find(ctx, id)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return session, unlock, nil
}

// Update applies the fields present in req. On imported sessions every applied field is
// marked as user-edited so later syncs leave it alone.
func (s *sessionService) Update(ctx context.Context, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error) {
	session, unlock, err := s.lockSession(ctx, req.Id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	touched, err := applyUpdate(session, req)
	if err != nil {
		return nil, err
	}
	if session.MovingDurationMinutes != nil && session.ElapsedDurationMinutes != nil &&
		*session.ElapsedDurationMinutes < *session.MovingDurationMinutes {
		return nil, fmt.Errorf("%w: elapsed duration shorter than moving duration", ErrInvalidSession)
	}

	if session.Source != entity.SourceManual {
		for _, field := range touched {
			session.MarkEdited(field)
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("SESSION", "Session updated", map[string]interface{}{
		"session_id": session.Id.String(),
		"fields":     touched,
		"source":     session.Source,
	})
	return toSessionResponse(session), nil
}

func applyUpdate(s *entity.Session, req *dto.UpdateSessionRequest) ([]string, error) {
	var touched []string
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		s.Date = date
		touched = append(touched, entity.FieldDate)
	}
	if req.Type != nil {
		t := entity.SessionType(*req.Type)
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidSession, *req.Type)
		}
		s.Type = t
		touched = append(touched, entity.FieldType)
	}
	if req.StartTime != nil {
		t := req.StartTime.UTC()
		s.StartTime = &t
		touched = append(touched, entity.FieldStartTime)
	}
	if req.DurationMinutes != nil {
		s.DurationMinutes = *req.DurationMinutes
		touched = append(touched, entity.FieldDurationMinutes)
	}
	if req.MovingDurationMinutes != nil {
		s.MovingDurationMinutes = req.MovingDurationMinutes
		touched = append(touched, entity.FieldMovingDurationMinutes)
	}
	if req.ElapsedDurationMinutes != nil {
		s.ElapsedDurationMinutes = req.ElapsedDurationMinutes
		touched = append(touched, entity.FieldElapsedDurationMinutes)
	}
	if req.DistanceKm != nil {
		s.DistanceKm = req.DistanceKm
		touched = append(touched, entity.FieldDistanceKm)
	}
	if req.ElevationGainM != nil {
		s.ElevationGainM = req.ElevationGainM
		touched = append(touched, entity.FieldElevationGainM)
	}
	if req.AveragePaceMinPerKm != nil {
		s.AveragePaceMinPerKm = req.AveragePaceMinPerKm
		touched = append(touched, entity.FieldAveragePace)
	}
	if req.AverageHeartRateBpm != nil {
		s.AverageHeartRateBpm = req.AverageHeartRateBpm
		touched = append(touched, entity.FieldAverageHeartRate)
	}
	if req.MaxHeartRateBpm != nil {
		s.MaxHeartRateBpm = req.MaxHeartRateBpm
		touched = append(touched, entity.FieldMaxHeartRate)
	}
	if req.PerceivedIntensity != nil {
		if *req.PerceivedIntensity < 1 || *req.PerceivedIntensity > 10 {
			return nil, fmt.Errorf("%w: perceived intensity out of range", ErrInvalidSession)
		}
		s.PerceivedIntensity = req.PerceivedIntensity
		touched = append(touched, entity.FieldPerceivedIntensity)
	}
	if req.Notes != nil {
		s.Notes = *req.Notes
		touched = append(touched, entity.FieldNotes)
	}
	if req.FocusAreas != nil {
		s.FocusAreas = notes.NormalizeFocus(*req.FocusAreas)
		touched = append(touched, entity.FieldFocusAreas)
	}
	return touched, nil
}

// Delete removes the session for good. An imported session comes back on the next
// import or backfill of the same activity.
func (s *sessionService) Delete(ctx context.Context, id uuid.UUID) error {
	session, unlock, err := s.lockSession(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().Delete(ctx, session.Id); err != nil {
		return err
	}
	s.logger.Info("SESSION", "Session deleted", map[string]interface{}{"session_id": id.String()})
	return nil
}

// ResetEdits clears the named edit markers, or all of them when fields is empty.
func (s *sessionService) ResetEdits(ctx context.Context, id uuid.UUID, fields []string) (*dto.SessionResponse, error) {
	for _, f := range fields {
		if !isEditableField(f) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
	}

	session, unlock, err := s.lockSession(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session.ClearEdits(fields...)
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

func isEditableField(field string) bool {
	for _, f := range entity.EditableFields {
		if f == field {
			return true
		}
	}
	return false
}

// MigrateLegacyFocus moves "[focus: ...]" note prefixes into the focus_areas column.
func (s *sessionService) MigrateLegacyFocus(ctx context.Context) (*dto.MigrateFocusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.SessionRepository()
	sessions, err := repo.FindAll(ctx, specification.NotesPrefix{Prefix: "[focus:"})
	if err != nil {
		return nil, err
	}

	res := &dto.MigrateFocusResponse{Scanned: len(sessions)}
	for _, session := range sessions {
		tags, rest := notes.DecodeFocus(session.Notes)
		if tags == nil {
			continue
		}
		session.FocusAreas = notes.NormalizeFocus(append(session.FocusAreas, tags...))
		session.Notes = rest
		if err := repo.Update(ctx, session); err != nil {
			return nil, err
		}
		res.Migrated++
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	s.logger.Info("SESSION", "Legacy focus tags migrated", map[string]interface{}{
		"scanned":  res.Scanned,
		"migrated": res.Migrated,
	})
	return res, nil
}

func toSessionResponse(s *entity.Session) *dto.SessionResponse {
	focus := s.FocusAreas
	if focus == nil {
		focus = []string{}
	}
	edited := s.EditedFields
	if edited == nil {
		edited = []string{}
	}
	return &dto.SessionResponse{
		Id:                     s.Id,
		Date:                   mapper.TruncateDate(s.Date).Format(dto.DateLayout),
		Type:                   string(s.Type),
		StartTime:              s.StartTime,
		DurationMinutes:        s.DurationMinutes,
		MovingDurationMinutes:  s.MovingDurationMinutes,
		ElapsedDurationMinutes: s.ElapsedDurationMinutes,
		DistanceKm:             s.DistanceKm,
		ElevationGainM:         s.ElevationGainM,
		AveragePaceMinPerKm:    s.AveragePaceMinPerKm,
		AverageHeartRateBpm:    s.AverageHeartRateBpm,
		MaxHeartRateBpm:        s.MaxHeartRateBpm,
		PerceivedIntensity:     s.PerceivedIntensity,
		Notes:                  s.Notes,
		FocusAreas:             focus,
		Source:                 string(s.Source),
		ExternalId:             s.ExternalId,
		EditedFields:           edited,
		DuplicateSuspect:       s.DuplicateSuspect,
		DuplicateOfId:          s.DuplicateOfId,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}

func toSessionResponses(sessions []*entity.Session) []*dto.SessionResponse {
	res := make([]*dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		res = append(res, toSessionResponse(s))
	}
	return res
}

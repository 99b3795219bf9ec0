package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"training-os-be/internal/entity"
	"training-os-be/internal/mapper"
	"training-os-be/internal/pkg/logger"
	"training-os-be/internal/repository/contract"
	"training-os-be/internal/repository/specification"
	"training-os-be/internal/repository/unitofwork"
	"training-os-be/pkg/keylock"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// DuplicateWindow is how far apart two start times may be and still count as the same activity.
const DuplicateWindow = 30 * time.Minute

var ErrConcurrentMerge = errors.New("session with the same external id was created concurrently")

type IReconcileService interface {
	Merge(ctx context.Context, candidate *entity.Candidate) (*entity.MergeResult, error)
	// MergeBatch merges all candidates in one transaction. Invalid candidates are
	// recorded as failures and skipped; storage errors abort the whole batch.
	MergeBatch(ctx context.Context, candidates []*entity.Candidate) (*entity.MergeTally, []*entity.MergeResult, error)
}

type reconcileService struct {
	uowFactory unitofwork.RepositoryFactory
	locks      *keylock.Locker
	mapper     *mapper.SessionMapper
	logger     logger.ILogger
}

// NewReconcileService shares locks with every other writer of keyed sessions.
func NewReconcileService(uowFactory unitofwork.RepositoryFactory, locks *keylock.Locker, logger logger.ILogger) IReconcileService {
	return &reconcileService{
		uowFactory: uowFactory,
		locks:      locks,
		mapper:     mapper.NewSessionMapper(),
		logger:     logger,
	}
}

func (s *reconcileService) Merge(ctx context.Context, candidate *entity.Candidate) (*entity.MergeResult, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	_, results, err := s.mergeAll(ctx, []*entity.Candidate{candidate})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

func (s *reconcileService) MergeBatch(ctx context.Context, candidates []*entity.Candidate) (*entity.MergeTally, []*entity.MergeResult, error) {
	tally := &entity.MergeTally{}
	valid := make([]*entity.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			id := ""
			if c.ExternalId != nil {
				id = *c.ExternalId
			}
			tally.Failures = append(tally.Failures, entity.MergeFailure{ExternalId: id, Reason: err.Error()})
			s.logger.Warn("RECONCILE", "Skipping invalid candidate", map[string]interface{}{
				"external_id": id,
				"error":       err.Error(),
			})
			continue
		}
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return tally, nil, nil
	}

	batch, results, err := s.mergeAll(ctx, valid)
	if err != nil {
		return tally, nil, err
	}
	tally.Add(batch)
	return tally, results, nil
}

// mergeAll locks every key of the batch before opening the transaction and releases
// them after commit, so no goroutine waits on a key while holding a connection.
func (s *reconcileService) mergeAll(ctx context.Context, candidates []*entity.Candidate) (*entity.MergeTally, []*entity.MergeResult, error) {
	ctx, span := otel.Tracer("reconcile").Start(ctx, "reconcile.merge_batch")
	defer span.End()

	keys := make([]string, 0, len(candidates))
	for _, c := range candidates {
		keys = append(keys, c.Key())
	}
	unlock := s.locks.LockAll(keys)
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	defer uow.Rollback()

	repo := uow.SessionRepository()
	tally := &entity.MergeTally{}
	results := make([]*entity.MergeResult, 0, len(candidates))
	for _, c := range candidates {
		res, err := s.mergeOne(ctx, repo, c)
		if err != nil {
			span.RecordError(err)
			return nil, nil, err
		}
		tally.Record(res)
		results = append(results, res)
	}

	if err := uow.Commit(); err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	span.SetAttributes(
		attribute.Int("merge.inserted", tally.Inserted),
		attribute.Int("merge.updated", tally.Updated),
		attribute.Int("merge.skipped", tally.Skipped),
		attribute.Int("merge.duplicate_suspects", tally.DuplicateSuspects),
	)
	return tally, results, nil
}

func (s *reconcileService) mergeOne(ctx context.Context, repo contract.SessionRepository, c *entity.Candidate) (*entity.MergeResult, error) {
	if c.ExternalId != nil {
		existing, err := repo.FindOne(ctx, specification.BySourceExternalID{
			Source:     string(c.Source),
			ExternalID: *c.ExternalId,
		})
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if !applyCandidate(existing, c) {
				return &entity.MergeResult{Action: entity.MergeSkipped, SessionId: existing.Id}, nil
			}
			if err := repo.Update(ctx, existing); err != nil {
				return nil, err
			}
			return &entity.MergeResult{Action: entity.MergeUpdated, SessionId: existing.Id}, nil
		}
	}

	session := s.mapper.FromCandidate(c)
	match, err := s.findSuspect(ctx, repo, c)
	if err != nil {
		return nil, err
	}
	if match != nil {
		session.DuplicateSuspect = true
		session.DuplicateOfId = &match.Id
		s.logger.Info("RECONCILE", "Inserted session flagged as duplicate suspect", map[string]interface{}{
			"source":       c.Source,
			"date":         c.Date.Format(time.DateOnly),
			"type":         c.Type,
			"duplicate_of": match.Id.String(),
		})
	}

	if err := repo.Create(ctx, session); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%s: %w", c.Key(), ErrConcurrentMerge)
		}
		return nil, err
	}
	return &entity.MergeResult{
		Action:           entity.MergeInserted,
		SessionId:        session.Id,
		DuplicateSuspect: session.DuplicateSuspect,
		DuplicateOfId:    session.DuplicateOfId,
	}, nil
}

// findSuspect compares imported candidates with manual sessions and manual candidates
// with imported ones, on the same date and type.
func (s *reconcileService) findSuspect(ctx context.Context, repo contract.SessionRepository, c *entity.Candidate) (*entity.Session, error) {
	specs := []specification.Specification{
		specification.ByDate{Date: c.Date},
		specification.ByType{Type: string(c.Type)},
		specification.OrderBy{Field: "created_at"},
	}
	if c.Source == entity.SourceManual {
		specs = append(specs, specification.NotSource{Source: string(entity.SourceManual)})
	} else {
		specs = append(specs, specification.BySource{Source: string(entity.SourceManual)})
	}

	others, err := repo.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	for _, other := range others {
		if withinDuplicateWindow(c, other) {
			return other, nil
		}
	}
	return nil, nil
}

// withinDuplicateWindow treats a missing start time on either side as a same-day match.
func withinDuplicateWindow(c *entity.Candidate, s *entity.Session) bool {
	if c.StartTime == nil || s.StartTime == nil {
		return true
	}
	a, b := c.StartTime.UTC(), s.StartTime.UTC()
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	if diff <= DuplicateWindow {
		return true
	}

	aEnd := a.Add(time.Duration(spanMinutes(c.ElapsedDurationMinutes, c.MovingDurationMinutes, c.DurationMinutes)) * time.Minute)
	bEnd := b.Add(time.Duration(spanMinutes(s.ElapsedDurationMinutes, s.MovingDurationMinutes, s.DurationMinutes)) * time.Minute)
	return a.Before(bEnd) && b.Before(aEnd)
}

// spanMinutes is the wall-clock length of an activity: elapsed, then raw, then moving.
func spanMinutes(elapsed, moving *int, raw int) int {
	if elapsed != nil {
		return *elapsed
	}
	if raw > 0 {
		return raw
	}
	if moving != nil {
		return *moving
	}
	return 0
}

// applyCandidate copies candidate values onto s, leaving sticky fields and fields the
// candidate has no value for alone. It reports whether anything changed.
func applyCandidate(s *entity.Session, c *entity.Candidate) bool {
	changed := false
	sticky := s.IsEdited

	date := mapper.TruncateDate(c.Date)
	if !sticky(entity.FieldDate) && !s.Date.Equal(date) {
		s.Date = date
		changed = true
	}
	if !sticky(entity.FieldType) && s.Type != c.Type {
		s.Type = c.Type
		changed = true
	}
	if !sticky(entity.FieldStartTime) && c.StartTime != nil && !sameTime(s.StartTime, c.StartTime) {
		t := c.StartTime.UTC()
		s.StartTime = &t
		changed = true
	}
	if !sticky(entity.FieldDurationMinutes) && c.DurationMinutes > 0 && s.DurationMinutes != c.DurationMinutes {
		s.DurationMinutes = c.DurationMinutes
		changed = true
	}
	moving, elapsed := pairedDurations(s, c)
	changed = setInt(&s.MovingDurationMinutes, moving, sticky(entity.FieldMovingDurationMinutes)) || changed
	changed = setInt(&s.ElapsedDurationMinutes, elapsed, sticky(entity.FieldElapsedDurationMinutes)) || changed
	changed = setFloat(&s.DistanceKm, c.DistanceKm, sticky(entity.FieldDistanceKm)) || changed
	changed = setInt(&s.ElevationGainM, c.ElevationGainM, sticky(entity.FieldElevationGainM)) || changed
	changed = setFloat(&s.AveragePaceMinPerKm, c.AveragePaceMinPerKm, sticky(entity.FieldAveragePace)) || changed
	changed = setFloat(&s.AverageHeartRateBpm, c.AverageHeartRateBpm, sticky(entity.FieldAverageHeartRate)) || changed
	changed = setFloat(&s.MaxHeartRateBpm, c.MaxHeartRateBpm, sticky(entity.FieldMaxHeartRate)) || changed
	changed = setInt(&s.PerceivedIntensity, c.PerceivedIntensity, sticky(entity.FieldPerceivedIntensity)) || changed

	if !sticky(entity.FieldNotes) && c.Notes != "" && s.Notes != c.Notes {
		s.Notes = c.Notes
		changed = true
	}
	if !sticky(entity.FieldFocusAreas) && c.FocusAreas != nil && !sameStrings(s.FocusAreas, c.FocusAreas) {
		s.FocusAreas = append([]string(nil), c.FocusAreas...)
		changed = true
	}
	return changed
}

// pairedDurations returns the moving and elapsed values to apply. When the user pinned
// one of them, the other is clamped so elapsed never drops below moving.
func pairedDurations(s *entity.Session, c *entity.Candidate) (moving, elapsed *int) {
	moving, elapsed = c.MovingDurationMinutes, c.ElapsedDurationMinutes
	movingSticky := s.IsEdited(entity.FieldMovingDurationMinutes)
	elapsedSticky := s.IsEdited(entity.FieldElapsedDurationMinutes)
	if movingSticky && !elapsedSticky && elapsed != nil && s.MovingDurationMinutes != nil && *elapsed < *s.MovingDurationMinutes {
		elapsed = s.MovingDurationMinutes
	}
	if elapsedSticky && !movingSticky && moving != nil && s.ElapsedDurationMinutes != nil && *moving > *s.ElapsedDurationMinutes {
		moving = s.ElapsedDurationMinutes
	}
	return moving, elapsed
}

func setInt(dst **int, src *int, sticky bool) bool {
	if sticky || src == nil {
		return false
	}
	if *dst != nil && **dst == *src {
		return false
	}
	v := *src
	*dst = &v
	return true
}

func setFloat(dst **float64, src *float64, sticky bool) bool {
	if sticky || src == nil {
		return false
	}
	if *dst != nil && **dst == *src {
		return false
	}
	v := *src
	*dst = &v
	return true
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

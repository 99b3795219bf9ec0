package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"training-os-be/internal/config"
	"training-os-be/internal/dto"
	"training-os-be/internal/entity"
	"training-os-be/internal/pkg/logger"
	"training-os-be/pkg/events"
	"training-os-be/pkg/strava"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	SyncModeIncremental = "incremental"
	SyncModeBackfill    = "backfill"
)

var (
	ErrSyncFirstPage          = errors.New("first page could not be fetched")
	ErrRemoteActivityNotFound = errors.New("strava activity not found")
)

// ActivitySource is the remote activity API; *strava.Client implements it.
type ActivitySource interface {
	ListActivities(ctx context.Context, q strava.ListQuery) (*strava.Page, error)
	RecentActivities(ctx context.Context, limit int) (*strava.Page, error)
	Activity(ctx context.Context, id int64) (*strava.Activity, error)
	RateLimits() (strava.RateLimits, bool)
}

// SyncStateStore owns tokens and the cursor; *strava.SyncState implements it.
type SyncStateStore interface {
	Cursor() (*time.Time, error)
	AdvanceCursor(t time.Time) error
	ResetCursor(t time.Time) error
	MarkSynced() error
	Snapshot() (strava.State, error)
	ForceRefresh(ctx context.Context, stale string) (string, error)
}

type ISyncService interface {
	SyncIncremental(ctx context.Context) (*dto.SyncResultResponse, error)
	SyncBackfill(ctx context.Context, req *dto.BackfillRequest) (*dto.SyncResultResponse, error)
	RecentActivities(ctx context.Context, limit int) (*dto.RecentActivitiesResponse, error)
	Activity(ctx context.Context, id int64) (*dto.StravaActivityResponse, error)
	SyncActivity(ctx context.Context, id int64) (*dto.StravaActivitySyncResponse, error)
	RefreshToken(ctx context.Context) (*dto.TokenStatusResponse, error)
}

type syncService struct {
	source     ActivitySource
	state      SyncStateStore
	reconciler IReconcileService
	events     EventPublisher
	cfg        config.SyncConfig
	logger     logger.ILogger
}

func NewSyncService(
	source ActivitySource,
	state SyncStateStore,
	reconciler IReconcileService,
	events EventPublisher,
	cfg config.SyncConfig,
	logger logger.ILogger,
) ISyncService {
	if cfg.PerPage < 1 {
		cfg.PerPage = 50
	}
	if cfg.MaxIncrementalPages < 1 {
		cfg.MaxIncrementalPages = 1
	}
	if cfg.MaxBackfillPages < 1 {
		cfg.MaxBackfillPages = 1
	}
	return &syncService{
		source:     source,
		state:      state,
		reconciler: reconciler,
		events:     events,
		cfg:        cfg,
		logger:     logger,
	}
}

type syncRun struct {
	res    *dto.SyncResultResponse
	newest *time.Time
}

func newSyncRun(mode string) *syncRun {
	return &syncRun{res: &dto.SyncResultResponse{Mode: mode, Errors: []dto.SyncErrorResponse{}}}
}

// mergePage merges one page in a single transaction and tracks the newest start time seen.
func (s *syncService) mergePage(ctx context.Context, run *syncRun, page *strava.Page) error {
	run.res.PagesFetched++
	run.res.Fetched += len(page.Activities)
	run.res.AutoRefreshedToken = run.res.AutoRefreshedToken || page.AutoRefreshed
	if len(page.Activities) == 0 {
		return nil
	}

	candidates := make([]*entity.Candidate, 0, len(page.Activities))
	for i := range page.Activities {
		a := &page.Activities[i]
		candidates = append(candidates, a.Candidate())
		if !a.StartDate.IsZero() && (run.newest == nil || a.StartDate.After(*run.newest)) {
			t := a.StartDate.UTC()
			run.newest = &t
		}
	}

	tally, _, err := s.reconciler.MergeBatch(ctx, candidates)
	if err != nil {
		return err
	}
	run.res.Inserted += tally.Inserted
	run.res.Updated += tally.Updated
	run.res.Skipped += tally.Skipped
	run.res.DuplicateSuspects += tally.DuplicateSuspects
	for _, f := range tally.Failures {
		run.res.Errors = append(run.res.Errors, dto.SyncErrorResponse{
			Page:   page.Number,
			Reason: fmt.Sprintf("activity %s: %s", f.ExternalId, f.Reason),
		})
	}
	return nil
}

// SyncIncremental pulls everything after the cursor. Any failure fails the run and leaves
// the cursor where it was; pages merged before the failure are re-merged as skipped next time.
func (s *syncService) SyncIncremental(ctx context.Context) (*dto.SyncResultResponse, error) {
	ctx, span := otel.Tracer("sync").Start(ctx, "sync.incremental")
	defer span.End()

	cursor, err := s.state.Cursor()
	if err != nil {
		return nil, err
	}
	// Strava only pages oldest-first when "after" is set.
	if cursor == nil {
		epoch := time.Unix(0, 0).UTC()
		cursor = &epoch
	}

	run := newSyncRun(SyncModeIncremental)
	for pageNo := 1; pageNo <= s.cfg.MaxIncrementalPages; pageNo++ {
		page, err := s.source.ListActivities(ctx, strava.ListQuery{Page: pageNo, PerPage: s.cfg.PerPage, After: cursor})
		if err != nil {
			span.RecordError(err)
			s.logFailure(SyncModeIncremental, pageNo, err)
			return s.withLimits(run.res), err
		}
		if err := s.mergePage(ctx, run, page); err != nil {
			span.RecordError(err)
			return s.withLimits(run.res), err
		}
		if len(page.Activities) < page.PerPage {
			break
		}
		if pageNo == s.cfg.MaxIncrementalPages {
			s.logger.Warn("STRAVA", "Incremental sync stopped at page limit, run again for the rest", map[string]interface{}{
				"max_pages": s.cfg.MaxIncrementalPages,
			})
		}
	}

	if run.newest != nil {
		if err := s.state.AdvanceCursor(*run.newest); err != nil {
			return s.withLimits(run.res), err
		}
		run.res.CursorAdvanced = true
	} else if err := s.state.MarkSynced(); err != nil {
		return s.withLimits(run.res), err
	}

	span.SetAttributes(
		attribute.Int("sync.pages", run.res.PagesFetched),
		attribute.Int("sync.inserted", run.res.Inserted),
	)
	s.finish(ctx, run.res)
	return s.withLimits(run.res), nil
}

// SyncBackfill walks history from the newest page back, bounded by max pages. A failing
// first page fails the run; later page failures are recorded unless they are auth or
// rate-limit failures, which stop the run.
func (s *syncService) SyncBackfill(ctx context.Context, req *dto.BackfillRequest) (*dto.SyncResultResponse, error) {
	ctx, span := otel.Tracer("sync").Start(ctx, "sync.backfill")
	defer span.End()

	perPage := s.cfg.PerPage
	maxPages := s.cfg.MaxBackfillPages
	if req != nil {
		if req.PerPage > 0 {
			perPage = req.PerPage
		}
		if req.MaxPages > 0 && req.MaxPages < maxPages {
			maxPages = req.MaxPages
		}
	}
	perPage = strava.ClampPerPage(perPage)

	run := newSyncRun(SyncModeBackfill)
	for pageNo := 1; pageNo <= maxPages; pageNo++ {
		page, err := s.source.ListActivities(ctx, strava.ListQuery{Page: pageNo, PerPage: perPage})
		if err != nil {
			span.RecordError(err)
			s.logFailure(SyncModeBackfill, pageNo, err)
			if pageNo == 1 {
				return s.withLimits(run.res), fmt.Errorf("%w: %w", ErrSyncFirstPage, err)
			}
			if isFatalSyncError(err) {
				return s.withLimits(run.res), err
			}
			run.res.Errors = append(run.res.Errors, dto.SyncErrorResponse{Page: pageNo, Reason: err.Error()})
			continue
		}
		if err := s.mergePage(ctx, run, page); err != nil {
			span.RecordError(err)
			return s.withLimits(run.res), err
		}
		if len(page.Activities) < page.PerPage {
			break
		}
	}

	switch {
	case len(run.res.Errors) > 0:
		// A partial backfill must not move the cursor.
		if err := s.state.MarkSynced(); err != nil {
			return s.withLimits(run.res), err
		}
	case run.newest != nil:
		if err := s.state.ResetCursor(*run.newest); err != nil {
			return s.withLimits(run.res), err
		}
		run.res.CursorAdvanced = true
	default:
		if err := s.state.MarkSynced(); err != nil {
			return s.withLimits(run.res), err
		}
	}

	span.SetAttributes(
		attribute.Int("sync.pages", run.res.PagesFetched),
		attribute.Int("sync.errors", len(run.res.Errors)),
	)
	s.finish(ctx, run.res)
	return s.withLimits(run.res), nil
}

func isFatalSyncError(err error) bool {
	var authErr *strava.AuthError
	var rateErr *strava.RateLimitError
	return errors.As(err, &authErr) || errors.As(err, &rateErr)
}

func (s *syncService) logFailure(mode string, page int, err error) {
	s.logger.Error("STRAVA", "Sync page failed", map[string]interface{}{
		"mode":  mode,
		"page":  page,
		"error": err,
	})
}

func (s *syncService) finish(ctx context.Context, res *dto.SyncResultResponse) {
	s.logger.Info("STRAVA", "Sync run finished", map[string]interface{}{
		"mode":            res.Mode,
		"pages":           res.PagesFetched,
		"inserted":        res.Inserted,
		"updated":         res.Updated,
		"skipped":         res.Skipped,
		"errors":          len(res.Errors),
		"cursor_advanced": res.CursorAdvanced,
	})
	publishEvent(ctx, s.events, s.logger, events.TypeSyncCompleted, map[string]interface{}{
		"mode":               res.Mode,
		"inserted":           res.Inserted,
		"updated":            res.Updated,
		"skipped":            res.Skipped,
		"duplicate_suspects": res.DuplicateSuspects,
		"errors":             len(res.Errors),
	})
}

func (s *syncService) withLimits(res *dto.SyncResultResponse) *dto.SyncResultResponse {
	res.RateLimits = s.rateLimits()
	return res
}

func (s *syncService) rateLimits() *dto.RateLimitsResponse {
	limits, ok := s.source.RateLimits()
	if !ok {
		return nil
	}
	return &dto.RateLimitsResponse{
		GlobalLimit: limits.GlobalLimit,
		GlobalUsage: limits.GlobalUsage,
		ReadLimit:   limits.ReadLimit,
		ReadUsage:   limits.ReadUsage,
	}
}

// RecentActivities previews the newest remote activities without merging them.
func (s *syncService) RecentActivities(ctx context.Context, limit int) (*dto.RecentActivitiesResponse, error) {
	if limit < 1 {
		limit = 2
	}
	if limit > strava.MaxRecentResults {
		limit = strava.MaxRecentResults
	}
	page, err := s.source.RecentActivities(ctx, limit)
	if err != nil {
		return nil, err
	}

	activities := make([]*dto.StravaActivityResponse, 0, len(page.Activities))
	for i := range page.Activities {
		activities = append(activities, toStravaActivityResponse(&page.Activities[i]))
	}
	return &dto.RecentActivitiesResponse{
		AttemptedLimit:     limit,
		FetchedCount:       len(activities),
		AutoRefreshedToken: page.AutoRefreshed,
		Activities:         activities,
		RateLimits:         s.rateLimits(),
	}, nil
}

func (s *syncService) fetchActivity(ctx context.Context, id int64) (*strava.Activity, error) {
	activity, err := s.source.Activity(ctx, id)
	var apiErr *strava.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %d", ErrRemoteActivityNotFound, id)
	}
	return activity, err
}

// Activity previews one remote activity without merging it.
func (s *syncService) Activity(ctx context.Context, id int64) (*dto.StravaActivityResponse, error) {
	activity, err := s.fetchActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	return toStravaActivityResponse(activity), nil
}

// SyncActivity fetches one remote activity and merges it. The cursor is not touched.
func (s *syncService) SyncActivity(ctx context.Context, id int64) (*dto.StravaActivitySyncResponse, error) {
	activity, err := s.fetchActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	result, err := s.reconciler.Merge(ctx, activity.Candidate())
	if err != nil {
		return nil, err
	}
	s.logger.Info("STRAVA", "Single activity merged", map[string]interface{}{
		"activity_id": id,
		"action":      result.Action,
	})
	return &dto.StravaActivitySyncResponse{
		Activity:         toStravaActivityResponse(activity),
		Action:           string(result.Action),
		SessionId:        result.SessionId,
		DuplicateSuspect: result.DuplicateSuspect,
	}, nil
}

func toStravaActivityResponse(a *strava.Activity) *dto.StravaActivityResponse {
	res := &dto.StravaActivityResponse{
		Id:                 a.ID,
		Name:               a.Name,
		SportType:          a.Sport(),
		MappedType:         string(strava.MapSportType(a.Sport())),
		MovingTimeSeconds:  a.MovingTime,
		ElapsedTimeSeconds: a.ElapsedTime,
		ElevationGainM:     a.TotalElevationGain,
	}
	if !a.StartDate.IsZero() {
		res.StartDate = a.StartDate.UTC().Format(time.RFC3339)
	}
	if a.Distance != nil {
		km := roundTo(*a.Distance/1000, 2)
		res.DistanceKm = &km
	}
	return res
}

// RefreshToken forces a token refresh regardless of expiry.
func (s *syncService) RefreshToken(ctx context.Context) (*dto.TokenStatusResponse, error) {
	current, err := s.state.Snapshot()
	if err != nil {
		return nil, err
	}
	if _, err := s.state.ForceRefresh(ctx, current.AccessToken); err != nil {
		return nil, err
	}
	next, err := s.state.Snapshot()
	if err != nil {
		return nil, err
	}

	s.logger.Info("STRAVA", "Access token refreshed", nil)
	res := &dto.TokenStatusResponse{
		Refreshed:      next.AccessToken != current.AccessToken,
		LastActivityAt: next.LastActivityAt,
		LastSyncedAt:   next.LastSyncedAt,
	}
	if next.ExpiresAt > 0 {
		t := time.Unix(next.ExpiresAt, 0).UTC()
		res.ExpiresAt = &t
	}
	return res, nil
}

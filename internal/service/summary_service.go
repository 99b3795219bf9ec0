package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"training-os-be/internal/dto"
	"training-os-be/internal/entity"
	"training-os-be/internal/pkg/logger"
	"training-os-be/internal/repository/scope"
	"training-os-be/internal/repository/specification"
	"training-os-be/internal/repository/unitofwork"
	"training-os-be/pkg/isoweek"

	"golang.org/x/sync/errgroup"
)

// MaxTrendWeeks bounds a weekly trend request to about five years.
const MaxTrendWeeks = 260

// Salient session thresholds.
const (
	SalientDistanceKm      = 15.0
	SalientDurationMinutes = 90
	SalientIntensity       = 8
)

type ISummaryService interface {
	WeeklySummary(ctx context.Context, year, week int) (*dto.WeeklySummaryResponse, error)
	WeeklySummaryForDate(ctx context.Context, date string) (*dto.WeeklySummaryResponse, error)
	WeeklyTrend(ctx context.Context, req *dto.WeeklyTrendRequest) ([]*dto.WeeklyTrendPoint, error)
}

type summaryService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewSummaryService(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) ISummaryService {
	return &summaryService{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

type weekData struct {
	sessions []*entity.Session
	notes    []*entity.DayNote
	plan     *entity.WeeklyPlan
}

// load reads sessions, notes and the plan of one week concurrently. Nothing is cached;
// every summary reflects the store as of the call.
func (s *summaryService) load(ctx context.Context, year, week int, start, end time.Time) (*weekData, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	data := &weekData{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions, err := uow.SessionRepository().FindAll(gctx,
			specification.ByDateRange{From: start, To: end},
			specification.Scoped(scope.Chronological),
		)
		data.sessions = sessions
		return err
	})
	g.Go(func() error {
		notes, err := uow.DayNoteRepository().FindAll(gctx,
			specification.ByDateRange{From: start, To: end},
			specification.Scoped(scope.OrderByDateAsc),
		)
		data.notes = notes
		return err
	})
	g.Go(func() error {
		plan, err := uow.WeeklyPlanRepository().FindOne(gctx, specification.ByYearWeek{Year: year, Week: week})
		data.plan = plan
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *summaryService) WeeklySummary(ctx context.Context, year, week int) (*dto.WeeklySummaryResponse, error) {
	start, end, err := isoweek.Bounds(year, week)
	if err != nil {
		return nil, err
	}

	data, err := s.load(ctx, year, week, start, end)
	if err != nil {
		return nil, err
	}

	res := buildSummary(data.sessions)
	res.Year = year
	res.WeekNumber = week
	res.StartDate = start.Format(dto.DateLayout)
	res.EndDate = end.Format(dto.DateLayout)
	res.Plan = toWeeklyPlanResponse(data.plan)
	res.DayNotes = toDayNoteResponses(data.notes)
	res.PlanVsActual = planVsActual(data.plan, res.TotalDistanceKm, res.TotalSessions)
	return res, nil
}

func (s *summaryService) WeeklySummaryForDate(ctx context.Context, date string) (*dto.WeeklySummaryResponse, error) {
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	w := isoweek.Of(d)
	return s.WeeklySummary(ctx, w.Year, w.Week)
}

// WeeklyTrend returns one point per ISO week touched by the range, including empty weeks,
// with the week's plan targets when a plan exists.
func (s *summaryService) WeeklyTrend(ctx context.Context, req *dto.WeeklyTrendRequest) ([]*dto.WeeklyTrendPoint, error) {
	from, to, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if to.Sub(from) > MaxTrendWeeks*7*24*time.Hour {
		return nil, fmt.Errorf("%w: trend spans more than %d weeks", ErrInvalidRange, MaxTrendWeeks)
	}

	weeks := isoweek.Range(from, to)
	first, _, err := isoweek.Bounds(weeks[0].Year, weeks[0].Week)
	if err != nil {
		return nil, err
	}
	last := weeks[len(weeks)-1]
	_, end, err := isoweek.Bounds(last.Year, last.Week)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.ByDateRange{From: first, To: end},
		specification.Scoped(scope.Chronological),
	)
	if err != nil {
		return nil, err
	}

	plans, err := uow.WeeklyPlanRepository().FindAll(ctx, specification.ByYearWeekRange{
		FromYear: weeks[0].Year, FromWeek: weeks[0].Week,
		ToYear: last.Year, ToWeek: last.Week,
	})
	if err != nil {
		return nil, err
	}
	planByWeek := make(map[isoweek.Week]*entity.WeeklyPlan, len(plans))
	for _, p := range plans {
		planByWeek[isoweek.Week{Year: p.Year, Week: p.WeekNumber}] = p
	}

	byWeek := make(map[isoweek.Week][]*entity.Session, len(weeks))
	for _, session := range sessions {
		w := isoweek.Of(session.Date)
		byWeek[w] = append(byWeek[w], session)
	}

	points := make([]*dto.WeeklyTrendPoint, 0, len(weeks))
	for _, w := range weeks {
		summary := buildSummary(byWeek[w])
		point := &dto.WeeklyTrendPoint{
			Year:                 w.Year,
			WeekNumber:           w.Week,
			TotalSessions:        summary.TotalSessions,
			TotalDurationMinutes: summary.TotalDurationMinutes,
			TotalDistanceKm:      summary.TotalDistanceKm,
			TotalElevationGainM:  summary.TotalElevationGainM,
		}
		if plan, ok := planByWeek[w]; ok {
			point.TargetDistanceKm = plan.TargetDistanceKm
			point.TargetSessions = plan.TargetSessions
		}
		points = append(points, point)
	}
	return points, nil
}

// buildSummary computes totals over the given sessions. Headline distance counts run and
// trail only; headline elevation counts run, trail and hike.
func buildSummary(sessions []*entity.Session) *dto.WeeklySummaryResponse {
	var (
		minutes   int
		distance  float64
		elevation int
		suspects  int
	)
	buckets := make(map[entity.SessionType]*typeTotals)
	salient := make([]*dto.SalientSession, 0)

	for _, s := range sessions {
		d := s.EffectiveDurationMinutes()
		minutes += d

		b, ok := buckets[s.Type]
		if !ok {
			b = &typeTotals{}
			buckets[s.Type] = b
		}
		b.sessions++
		b.minutes += d

		if s.DistanceKm != nil {
			b.distance += *s.DistanceKm
			if s.Type.CountsDistance() {
				distance += *s.DistanceKm
			}
		}
		if s.ElevationGainM != nil && s.Type.CountsElevation() {
			b.elevation += *s.ElevationGainM
			elevation += *s.ElevationGainM
		}
		if s.DuplicateSuspect {
			suspects++
		}
		if reasons := salientReasons(s); len(reasons) > 0 {
			salient = append(salient, &dto.SalientSession{
				SessionId: s.Id.String(),
				Date:      s.Date.Format(dto.DateLayout),
				Type:      string(s.Type),
				Reasons:   reasons,
			})
		}
	}

	return &dto.WeeklySummaryResponse{
		Sessions:             toSessionResponses(sessions),
		DayNotes:             []*dto.DayNoteResponse{},
		TotalSessions:        len(sessions),
		TotalDurationMinutes: minutes,
		TotalDistanceKm:      round1(distance),
		TotalElevationGainM:  elevation,
		ByType:               toBuckets(buckets),
		SalientSessions:      salient,
		DuplicateSuspects:    suspects,
	}
}

type typeTotals struct {
	sessions  int
	minutes   int
	distance  float64
	elevation int
}

// toBuckets orders buckets by the canonical type order.
func toBuckets(buckets map[entity.SessionType]*typeTotals) []*dto.TypeBucket {
	res := make([]*dto.TypeBucket, 0, len(buckets))
	for _, t := range entity.SessionTypes {
		b, ok := buckets[t]
		if !ok {
			continue
		}
		res = append(res, &dto.TypeBucket{
			Type:                string(t),
			Sessions:            b.sessions,
			DurationMinutes:     b.minutes,
			DistanceKm:          round1(b.distance),
			ElevationGainM:      b.elevation,
			CountsElevationGain: t.CountsElevation(),
		})
	}
	return res
}

func salientReasons(s *entity.Session) []string {
	var reasons []string
	if strings.TrimSpace(s.Notes) != "" {
		reasons = append(reasons, "has_note")
	}
	if s.DistanceKm != nil && *s.DistanceKm >= SalientDistanceKm {
		reasons = append(reasons, "long_distance")
	}
	if s.EffectiveDurationMinutes() >= SalientDurationMinutes {
		reasons = append(reasons, "long_duration")
	}
	if s.PerceivedIntensity != nil && *s.PerceivedIntensity >= SalientIntensity {
		reasons = append(reasons, "high_intensity")
	}
	return reasons
}

func planVsActual(plan *entity.WeeklyPlan, distance float64, sessions int) *dto.PlanVsActual {
	res := &dto.PlanVsActual{
		ActualDistanceKm: distance,
		ActualSessions:   sessions,
	}
	if plan == nil {
		return res
	}
	if plan.TargetDistanceKm != nil {
		target := *plan.TargetDistanceKm
		delta := roundTo(distance-target, 3)
		res.TargetDistanceKm = &target
		res.DistanceDeltaKm = &delta
		if target > 0 {
			pct := round1(distance / target * 100)
			res.DistanceCompletion = &pct
		}
	}
	if plan.TargetSessions != nil {
		target := *plan.TargetSessions
		delta := sessions - target
		res.TargetSessions = &target
		res.SessionsDelta = &delta
	}
	return res
}

func round1(v float64) float64 {
	return roundTo(v, 1)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

package service

import (
	"context"
	"testing"

	"training-os-be/internal/dto"
	"training-os-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) manual(t *testing.T, c entity.Candidate) {
	t.Helper()
	c.Source = entity.SourceManual
	_, err := e.reconcile.Merge(context.Background(), &c)
	require.NoError(t, err)
}

func seedCrossYearWeek(t *testing.T, env *testEnv) {
	env.manual(t, entity.Candidate{
		Date: day("2024-12-30"), Type: entity.SessionTypeRun,
		DurationMinutes: 50, MovingDurationMinutes: intp(40), ElapsedDurationMinutes: intp(45),
		DistanceKm: floatp(8.04), ElevationGainM: intp(100), Notes: "tempo",
	})
	env.manual(t, entity.Candidate{
		Date: day("2025-01-01"), Type: entity.SessionTypeHike,
		DurationMinutes: 120, DistanceKm: floatp(10), ElevationGainM: intp(500),
	})
	env.manual(t, entity.Candidate{
		Date: day("2025-01-04"), Type: entity.SessionTypeBike,
		DurationMinutes: 0, ElapsedDurationMinutes: intp(60), DistanceKm: floatp(12), ElevationGainM: intp(300),
	})
	env.manual(t, entity.Candidate{
		Date: day("2025-01-06"), Type: entity.SessionTypeRun,
		DurationMinutes: 30, DistanceKm: floatp(5),
	})
}

func TestWeeklySummaryAcrossYearBoundary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedCrossYearWeek(t, env)

	plans := NewPlanService(env.uow, env.log)
	_, err := plans.Upsert(ctx, &dto.UpsertWeeklyPlanRequest{
		Year: 2025, WeekNumber: 1, TargetDistanceKm: floatp(10), TargetSessions: intp(4),
	})
	require.NoError(t, err)

	notes := NewDayNoteService(env.uow, env.log)
	_, err = notes.Upsert(ctx, &dto.UpsertDayNoteRequest{Date: "2025-01-02", Note: "rest day, slept badly"})
	require.NoError(t, err)
	_, err = notes.Upsert(ctx, &dto.UpsertDayNoteRequest{Date: "2025-01-07", Note: "next week"})
	require.NoError(t, err)

	summaries := NewSummaryService(env.uow, env.log)
	res, err := summaries.WeeklySummary(ctx, 2025, 1)
	require.NoError(t, err)

	assert.Equal(t, "2024-12-30", res.StartDate)
	assert.Equal(t, "2025-01-05", res.EndDate)
	assert.Equal(t, 3, res.TotalSessions)
	assert.Equal(t, 40+120+60, res.TotalDurationMinutes, "moving, then elapsed, then raw duration")
	assert.Equal(t, 8.0, res.TotalDistanceKm, "only run and trail count toward distance")
	assert.Equal(t, 600, res.TotalElevationGainM, "bike elevation is excluded")

	require.Len(t, res.ByType, 3)
	assert.Equal(t, "run", res.ByType[0].Type)
	assert.Equal(t, "hike", res.ByType[1].Type)
	assert.Equal(t, "bike", res.ByType[2].Type)
	assert.Equal(t, 12.0, res.ByType[2].DistanceKm)
	assert.False(t, res.ByType[2].CountsElevationGain)

	require.Len(t, res.DayNotes, 1)
	assert.Equal(t, "2025-01-02", res.DayNotes[0].Date)

	require.NotNil(t, res.Plan)
	pva := res.PlanVsActual
	require.NotNil(t, pva.DistanceDeltaKm)
	assert.InDelta(t, -2.0, *pva.DistanceDeltaKm, 1e-9)
	require.NotNil(t, pva.DistanceCompletion)
	assert.Equal(t, 80.0, *pva.DistanceCompletion)
	require.NotNil(t, pva.SessionsDelta)
	assert.Equal(t, -1, *pva.SessionsDelta)

	require.Len(t, res.SalientSessions, 2)
	assert.Equal(t, []string{"has_note"}, res.SalientSessions[0].Reasons)
	assert.Equal(t, []string{"long_duration"}, res.SalientSessions[1].Reasons)
}

func TestWeeklySummaryForDateUsesIsoWeek(t *testing.T) {
	env := newTestEnv(t)
	seedCrossYearWeek(t, env)

	res, err := NewSummaryService(env.uow, env.log).WeeklySummaryForDate(context.Background(), "2024-12-31")
	require.NoError(t, err)
	assert.Equal(t, 2025, res.Year)
	assert.Equal(t, 1, res.WeekNumber)
	assert.Equal(t, 3, res.TotalSessions)
	assert.Nil(t, res.Plan)
	assert.Nil(t, res.PlanVsActual.TargetDistanceKm)
}

func TestWeeklySummaryEmptyWeek(t *testing.T) {
	env := newTestEnv(t)

	res, err := NewSummaryService(env.uow, env.log).WeeklySummary(context.Background(), 2024, 20)
	require.NoError(t, err)
	assert.Zero(t, res.TotalSessions)
	assert.Empty(t, res.Sessions)
	assert.Empty(t, res.SalientSessions)
}

func TestWeeklySummaryRejectsBadWeek(t *testing.T) {
	env := newTestEnv(t)

	_, err := NewSummaryService(env.uow, env.log).WeeklySummary(context.Background(), 2021, 53)
	assert.Error(t, err)
}

func TestWeeklyTrendIncludesEmptyWeeks(t *testing.T) {
	env := newTestEnv(t)
	seedCrossYearWeek(t, env)
	_, err := NewPlanService(env.uow, env.log).Upsert(context.Background(), &dto.UpsertWeeklyPlanRequest{
		Year: 2025, WeekNumber: 1, TargetDistanceKm: floatp(20),
	})
	require.NoError(t, err)

	points, err := NewSummaryService(env.uow, env.log).WeeklyTrend(context.Background(), &dto.WeeklyTrendRequest{
		StartDate: "2024-12-16",
		EndDate:   "2025-01-12",
	})
	require.NoError(t, err)
	require.Len(t, points, 4)
	assert.Equal(t, 2024, points[0].Year)
	assert.Equal(t, 51, points[0].WeekNumber)
	assert.Zero(t, points[0].TotalSessions)
	assert.Equal(t, 3, points[2].TotalSessions)
	assert.Equal(t, 1, points[3].TotalSessions)
	assert.Equal(t, 5.0, points[3].TotalDistanceKm)
	require.NotNil(t, points[2].TargetDistanceKm)
	assert.Equal(t, 20.0, *points[2].TargetDistanceKm)
	assert.Nil(t, points[1].TargetDistanceKm)
}

func TestWeeklyTrendRejectsOversizedRange(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSummaryService(env.uow, env.log)

	_, err := svc.WeeklyTrend(context.Background(), &dto.WeeklyTrendRequest{
		StartDate: "0001-01-01",
		EndDate:   "9999-12-31",
	})
	assert.ErrorIs(t, err, ErrInvalidRange)

	points, err := svc.WeeklyTrend(context.Background(), &dto.WeeklyTrendRequest{
		StartDate: "2020-01-06",
		EndDate:   "2024-12-29",
	})
	require.NoError(t, err)
	assert.Len(t, points, MaxTrendWeeks)
}

func TestSalientReasonOrder(t *testing.T) {
	s := &entity.Session{
		Type:               entity.SessionTypeRun,
		DurationMinutes:    120,
		DistanceKm:         floatp(21.1),
		PerceivedIntensity: intp(9),
		Notes:              "race",
	}
	assert.Equal(t, []string{"has_note", "long_distance", "long_duration", "high_intensity"}, salientReasons(s))
}

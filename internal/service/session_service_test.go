package service

import (
	"context"
	"testing"

	"training-os-be/internal/dto"
	"training-os-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateManualSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.sessions.Create(ctx, &dto.CreateSessionRequest{
		Date:            "2024-05-01",
		Type:            "strength",
		DurationMinutes: 45,
		Notes:           "legs",
		FocusAreas:      []string{"Core", "legs", "core"},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.MergeInserted), res.Action)
	require.NotNil(t, res.Session)
	assert.Equal(t, "manual", res.Session.Source)
	assert.Nil(t, res.Session.ExternalId)
	assert.Equal(t, "2024-05-01", res.Session.Date)

	shown, err := env.sessions.Show(ctx, res.Session.Id)
	require.NoError(t, err)
	assert.Equal(t, 45, shown.DurationMinutes)
	assert.Equal(t, "legs", shown.Notes)
}

func TestCreateRejectsBadDate(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.sessions.Create(context.Background(), &dto.CreateSessionRequest{
		Date: "2024-13-01",
		Type: "run",
	})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestUpdateManualSessionDoesNotMarkEdits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.sessions.Create(ctx, &dto.CreateSessionRequest{Date: "2024-05-01", Type: "run", DurationMinutes: 30})
	require.NoError(t, err)

	updated, err := env.sessions.Update(ctx, &dto.UpdateSessionRequest{Id: res.Session.Id, DurationMinutes: intp(35)})
	require.NoError(t, err)
	assert.Equal(t, 35, updated.DurationMinutes)
	assert.Empty(t, updated.EditedFields)
}

func TestUpdateImportedSessionMarksEdits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	merged, err := env.reconcile.Merge(ctx, fileCandidate("H1", "2024-05-01", 10.0, 50))
	require.NoError(t, err)

	updated, err := env.sessions.Update(ctx, &dto.UpdateSessionRequest{
		Id:                 merged.SessionId,
		PerceivedIntensity: intp(7),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{entity.FieldPerceivedIntensity}, updated.EditedFields)
	assert.Equal(t, 7, *updated.PerceivedIntensity)
}

func TestUpdateRejectsElapsedShorterThanMoving(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	merged, err := env.reconcile.Merge(ctx, fileCandidate("H1", "2024-05-01", 10.0, 50))
	require.NoError(t, err)

	_, err = env.sessions.Update(ctx, &dto.UpdateSessionRequest{
		Id:                    merged.SessionId,
		MovingDurationMinutes: intp(60),
	})
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestUpdateUnknownSession(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.sessions.Update(context.Background(), &dto.UpdateSessionRequest{Id: uuid.New(), DurationMinutes: intp(1)})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResetEditsLetsSourceWinAgain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	merged, err := env.reconcile.Merge(ctx, fileCandidate("H1", "2024-05-01", 10.0, 50))
	require.NoError(t, err)
	_, err = env.sessions.Update(ctx, &dto.UpdateSessionRequest{Id: merged.SessionId, DistanceKm: floatp(9.0)})
	require.NoError(t, err)

	_, err = env.sessions.ResetEdits(ctx, merged.SessionId, []string{"bogus"})
	assert.ErrorIs(t, err, ErrUnknownField)

	reset, err := env.sessions.ResetEdits(ctx, merged.SessionId, []string{entity.FieldDistanceKm})
	require.NoError(t, err)
	assert.Empty(t, reset.EditedFields)

	again, err := env.reconcile.Merge(ctx, fileCandidate("H1", "2024-05-01", 10.0, 50))
	require.NoError(t, err)
	assert.Equal(t, entity.MergeUpdated, again.Action)

	shown, err := env.sessions.Show(ctx, merged.SessionId)
	require.NoError(t, err)
	assert.Equal(t, 10.0, *shown.DistanceKm)
}

func TestDeleteIsPermanent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	merged, err := env.reconcile.Merge(ctx, fileCandidate("H1", "2024-05-01", 10.0, 50))
	require.NoError(t, err)
	require.NoError(t, env.sessions.Delete(ctx, merged.SessionId))

	_, err = env.sessions.Show(ctx, merged.SessionId)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	again, err := env.reconcile.Merge(ctx, fileCandidate("H1", "2024-05-01", 10.0, 50))
	require.NoError(t, err)
	assert.Equal(t, entity.MergeInserted, again.Action)
}

func TestListFiltersByRangeAndType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.reconcile.Merge(ctx, fileCandidate("A", "2024-05-01", 10, 50))
	require.NoError(t, err)
	_, err = env.reconcile.Merge(ctx, fileCandidate("B", "2024-05-03", 5, 25))
	require.NoError(t, err)
	_, err = env.sessions.Create(ctx, &dto.CreateSessionRequest{Date: "2024-05-02", Type: "bike", DurationMinutes: 60})
	require.NoError(t, err)
	_, err = env.reconcile.Merge(ctx, fileCandidate("C", "2024-06-01", 8, 40))
	require.NoError(t, err)

	all, err := env.sessions.List(ctx, &dto.ListSessionsRequest{StartDate: "2024-05-01", EndDate: "2024-05-31"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-05-01", all[0].Date)
	assert.Equal(t, "2024-05-02", all[1].Date)
	assert.Equal(t, "2024-05-03", all[2].Date)

	runs, err := env.sessions.List(ctx, &dto.ListSessionsRequest{StartDate: "2024-05-01", EndDate: "2024-05-31", Type: "run"})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	_, err = env.sessions.List(ctx, &dto.ListSessionsRequest{StartDate: "2024-05-31", EndDate: "2024-05-01"})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestMigrateLegacyFocus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.reconcile.Merge(ctx, &entity.Candidate{
		Source:          entity.SourceManual,
		Date:            day("2024-05-01"),
		Type:            entity.SessionTypeMobility,
		DurationMinutes: 20,
		Notes:           "[focus: hips, ankles] easy flow",
	})
	require.NoError(t, err)
	_, err = env.reconcile.Merge(ctx, &entity.Candidate{
		Source:          entity.SourceManual,
		Date:            day("2024-05-02"),
		Type:            entity.SessionTypeMobility,
		DurationMinutes: 20,
		Notes:           "no tags here",
	})
	require.NoError(t, err)

	res, err := env.sessions.MigrateLegacyFocus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Migrated)

	list, err := env.sessions.List(ctx, &dto.ListSessionsRequest{StartDate: "2024-05-01", EndDate: "2024-05-01"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "easy flow", list[0].Notes)
	assert.Equal(t, []string{"hips", "ankles"}, list[0].FocusAreas)

	again, err := env.sessions.MigrateLegacyFocus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Migrated)
}

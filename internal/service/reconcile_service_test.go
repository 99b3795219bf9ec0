package service

import (
	"context"
	"sync"
	"testing"

	"training-os-be/internal/dto"
	"training-os-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSameFileTwiceKeepsOneSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.reconcile.Merge(ctx, fileCandidate("H1", "2024-05-01", 10.0, 50))
	require.NoError(t, err)
	assert.Equal(t, entity.MergeInserted, first.Action)

	second, err := env.reconcile.Merge(ctx, fileCandidate("H1", "2024-05-01", 10.0, 50))
	require.NoError(t, err)
	assert.Equal(t, entity.MergeSkipped, second.Action)
	assert.Equal(t, first.SessionId, second.SessionId)

	sessions := env.allSessions(t)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].DistanceKm)
	assert.Equal(t, 10.0, *sessions[0].DistanceKm)
	assert.Equal(t, 50, sessions[0].DurationMinutes)
	assert.Equal(t, entity.SessionTypeRun, sessions[0].Type)
	assert.Equal(t, "2024-05-01", sessions[0].Date.Format("2006-01-02"))
}

func TestMergeChangedCandidateUpdates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.reconcile.Merge(ctx, fileCandidate("H1", "2024-05-01", 10.0, 50))
	require.NoError(t, err)

	res, err := env.reconcile.Merge(ctx, fileCandidate("H1", "2024-05-01", 10.4, 52))
	require.NoError(t, err)
	assert.Equal(t, entity.MergeUpdated, res.Action)

	sessions := env.allSessions(t)
	require.Len(t, sessions, 1)
	assert.Equal(t, 10.4, *sessions[0].DistanceKm)
	assert.Equal(t, 52, sessions[0].DurationMinutes)
}

func TestMergeLeavesUserEditedFieldsAlone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.reconcile.Merge(ctx, fileCandidate("H1", "2024-05-01", 10.0, 50))
	require.NoError(t, err)

	notes := "felt strong"
	_, err = env.sessions.Update(ctx, &dto.UpdateSessionRequest{Id: res.SessionId, Notes: &notes, DistanceKm: floatp(10.2)})
	require.NoError(t, err)

	again, err := env.reconcile.Merge(ctx, fileCandidate("H1", "2024-05-01", 10.0, 55))
	require.NoError(t, err)
	assert.Equal(t, entity.MergeUpdated, again.Action)

	sessions := env.allSessions(t)
	require.Len(t, sessions, 1)
	s := sessions[0]
	assert.Equal(t, "felt strong", s.Notes)
	assert.Equal(t, 10.2, *s.DistanceKm)
	assert.Equal(t, 55, s.DurationMinutes, "fields without an edit marker still follow the source")
	assert.ElementsMatch(t, []string{entity.FieldNotes, entity.FieldDistanceKm}, s.EditedFields)
}

func TestMergeKeepsElapsedAtLeastMovingAroundEdits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c := fileCandidate("H1", "2024-05-01", 10.0, 55)
	c.MovingDurationMinutes = intp(50)
	res, err := env.reconcile.Merge(ctx, c)
	require.NoError(t, err)

	_, err = env.sessions.Update(ctx, &dto.UpdateSessionRequest{Id: res.SessionId, ElapsedDurationMinutes: intp(52)})
	require.NoError(t, err)

	c = fileCandidate("H1", "2024-05-01", 10.0, 55)
	c.MovingDurationMinutes = intp(54)
	_, err = env.reconcile.Merge(ctx, c)
	require.NoError(t, err)

	sessions := env.allSessions(t)
	require.Len(t, sessions, 1)
	s := sessions[0]
	require.NotNil(t, s.MovingDurationMinutes)
	require.NotNil(t, s.ElapsedDurationMinutes)
	assert.Equal(t, 52, *s.ElapsedDurationMinutes)
	assert.Equal(t, 52, *s.MovingDurationMinutes)
	assert.GreaterOrEqual(t, *s.ElapsedDurationMinutes, *s.MovingDurationMinutes)

	_, err = env.sessions.ResetEdits(ctx, res.SessionId, nil)
	require.NoError(t, err)
	_, err = env.reconcile.Merge(ctx, c)
	require.NoError(t, err)
	s = env.allSessions(t)[0]
	assert.Equal(t, 54, *s.MovingDurationMinutes)
	assert.Equal(t, 55, *s.ElapsedDurationMinutes)
}

func TestMergeFlagsImportMatchingManualSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manual, err := env.reconcile.Merge(ctx, &entity.Candidate{
		Source:          entity.SourceManual,
		Date:            day("2024-05-01"),
		Type:            entity.SessionTypeRun,
		StartTime:       at("2024-05-01T07:10:00Z"),
		DurationMinutes: 50,
	})
	require.NoError(t, err)
	assert.False(t, manual.DuplicateSuspect)

	imported, err := env.reconcile.Merge(ctx, fileCandidate("H1", "2024-05-01", 10.0, 50))
	require.NoError(t, err)
	assert.Equal(t, entity.MergeInserted, imported.Action)
	assert.True(t, imported.DuplicateSuspect)
	require.NotNil(t, imported.DuplicateOfId)
	assert.Equal(t, manual.SessionId, *imported.DuplicateOfId)

	assert.Len(t, env.allSessions(t), 2, "suspects are never merged")

	flagged, err := env.sessions.List(ctx, &dto.ListSessionsRequest{
		StartDate: "2024-05-01", EndDate: "2024-05-01", DuplicatesOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, imported.SessionId, flagged[0].Id)
}

func TestMergeDoesNotFlagDistantOrDifferentSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.reconcile.Merge(ctx, &entity.Candidate{
		Source:          entity.SourceManual,
		Date:            day("2024-05-01"),
		Type:            entity.SessionTypeRun,
		StartTime:       at("2024-05-01T18:00:00Z"),
		DurationMinutes: 30,
	})
	require.NoError(t, err)
	_, err = env.reconcile.Merge(ctx, &entity.Candidate{
		Source:          entity.SourceManual,
		Date:            day("2024-05-01"),
		Type:            entity.SessionTypeBike,
		DurationMinutes: 60,
	})
	require.NoError(t, err)

	res, err := env.reconcile.Merge(ctx, fileCandidate("H1", "2024-05-01", 10.0, 50))
	require.NoError(t, err)
	assert.False(t, res.DuplicateSuspect)
}

func TestMergeTwoManualSessionsAreNotSuspects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := env.reconcile.Merge(ctx, &entity.Candidate{
			Source:          entity.SourceManual,
			Date:            day("2024-05-01"),
			Type:            entity.SessionTypeStrength,
			DurationMinutes: 40,
		})
		require.NoError(t, err)
		assert.False(t, res.DuplicateSuspect)
	}
	assert.Len(t, env.allSessions(t), 2)
}

func TestConcurrentMergesOfSameKeyInsertOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]*entity.MergeResult, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = env.reconcile.Merge(ctx, fileCandidate("H1", "2024-05-01", 10.0, 50))
		}(i)
	}
	wg.Wait()

	inserted := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i].Action == entity.MergeInserted {
			inserted++
		}
	}
	assert.Equal(t, 1, inserted)
	assert.Len(t, env.allSessions(t), 1)
}

func TestMergeBatchRecordsInvalidCandidates(t *testing.T) {
	env := newTestEnv(t)

	bad := fileCandidate("H2", "2024-05-02", 5, 30)
	bad.MovingDurationMinutes = intp(40)

	tally, results, err := env.reconcile.MergeBatch(context.Background(), []*entity.Candidate{
		fileCandidate("H1", "2024-05-01", 10, 50),
		bad,
	})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, tally.Inserted)
	require.Len(t, tally.Failures, 1)
	assert.Equal(t, "H2", tally.Failures[0].ExternalId)
}

func TestMergeRejectsInvalidCandidate(t *testing.T) {
	env := newTestEnv(t)

	c := fileCandidate("H1", "2024-05-01", 10, 50)
	c.Type = "kayak"
	_, err := env.reconcile.Merge(context.Background(), c)
	assert.ErrorIs(t, err, entity.ErrInvalidCandidate)
}

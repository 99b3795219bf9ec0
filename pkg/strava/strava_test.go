package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"training-os-be/internal/entity"
	"training-os-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStrava struct {
	server       *httptest.Server
	refreshCalls atomic.Int32
	listCalls    atomic.Int32
	rateLimited  atomic.Int32 // number of upcoming list calls answered with 429
	rejectToken  atomic.Value // access token answered with 401
	lastQuery    atomic.Value
	tokenSeq     atomic.Int32
	refreshDelay time.Duration
	activities   []Activity
}

func newFakeStrava(t *testing.T) *fakeStrava {
	t.Helper()
	f := &fakeStrava{}
	f.rejectToken.Store("")
	f.lastQuery.Store("")

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		time.Sleep(f.refreshDelay)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "client-id", r.Form.Get("client_id"))
		n := f.tokenSeq.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"token_type":"Bearer","access_token":"access-%d","refresh_token":"refresh-%d","expires_at":%d,"expires_in":21600}`,
			n, n, time.Now().Add(6*time.Hour).Unix())
	})
	mux.HandleFunc("/api/athlete/activities", func(w http.ResponseWriter, r *http.Request) {
		f.listCalls.Add(1)
		f.lastQuery.Store(r.URL.RawQuery)
		if r.Header.Get("Authorization") == "Bearer "+f.rejectToken.Load().(string) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"Authorization Error"}`)
			return
		}
		w.Header().Set("X-Ratelimit-Limit", "200,2000")
		w.Header().Set("X-Ratelimit-Usage", "10,100")
		if f.rateLimited.Load() > 0 {
			f.rateLimited.Add(-1)
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"message":"Rate Limit Exceeded"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(f.activities))
	})
	mux.HandleFunc("/api/activities/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/activities/")
		for _, a := range f.activities {
			if strconv.FormatInt(a.ID, 10) == id {
				w.Header().Set("Content-Type", "application/json")
				assert.NoError(t, json.NewEncoder(w).Encode(a))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Record Not Found"}`)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func newState(t *testing.T, f *fakeStrava, st State) (*SyncState, *FileTokenStore) {
	t.Helper()
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "tokens.json"))
	require.NoError(t, store.Save(st))
	return NewSyncState(store, "client-id", "client-secret", f.server.URL+"/oauth/token"), store
}

func newClient(f *fakeStrava, tokens TokenSource, attempts int) *Client {
	return NewClient(f.server.URL+"/api", 5*time.Second, tokens,
		RetryConfig{MaxAttempts: attempts, Initial: time.Millisecond, MaxInterval: 5 * time.Millisecond},
		logger.NewNopLogger())
}

func TestFileTokenStoreRoundTrip(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "nested", "tokens.json"))

	st, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, State{}, st)

	cursor := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	want := State{AccessToken: "a", RefreshToken: "r", ExpiresAt: 1714550400, LastActivityAt: &cursor}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.Equal(t, want.ExpiresAt, got.ExpiresAt)
	require.NotNil(t, got.LastActivityAt)
	assert.True(t, cursor.Equal(*got.LastActivityAt))

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileTokenStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileTokenStore(path).Load()
	assert.Error(t, err)
}

func TestTokenRefreshesOnceUnderConcurrency(t *testing.T) {
	f := newFakeStrava(t)
	f.refreshDelay = 20 * time.Millisecond
	state, store := newState(t, f, State{
		AccessToken:  "old",
		RefreshToken: "refresh-0",
		ExpiresAt:    time.Now().Add(30 * time.Second).Unix(),
	})

	var wg sync.WaitGroup
	tokens := make([]string, 8)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, _, err := state.Token(context.Background())
			assert.NoError(t, err)
			tokens[i] = tok
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), f.refreshCalls.Load())
	for _, tok := range tokens {
		assert.Equal(t, "access-1", tok)
	}

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "access-1", persisted.AccessToken)
	assert.Equal(t, "refresh-1", persisted.RefreshToken)
	assert.Greater(t, persisted.ExpiresAt, time.Now().Unix())
}

func TestTokenValidIsNotRefreshed(t *testing.T) {
	f := newFakeStrava(t)
	state, _ := newState(t, f, State{AccessToken: "fresh", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour).Unix()})

	tok, refreshed, err := state.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)
	assert.False(t, refreshed)
	assert.Equal(t, int32(0), f.refreshCalls.Load())
}

func TestTokenWithoutCredentialsIsAuthError(t *testing.T) {
	f := newFakeStrava(t)
	state, _ := newState(t, f, State{})

	_, _, err := state.Token(context.Background())
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestFailedRefreshKeepsPreviousToken(t *testing.T) {
	f := newFakeStrava(t)
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "tokens.json"))
	prior := State{AccessToken: "old", RefreshToken: "r", ExpiresAt: time.Now().Add(-time.Minute).Unix()}
	require.NoError(t, store.Save(prior))
	state := NewSyncState(store, "client-id", "client-secret", f.server.URL+"/missing")

	_, _, err := state.Token(context.Background())
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "old", persisted.AccessToken)
}

func TestForceRefreshSkipsWhenTokenAlreadyReplaced(t *testing.T) {
	f := newFakeStrava(t)
	state, _ := newState(t, f, State{AccessToken: "current", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour).Unix()})

	tok, err := state.ForceRefresh(context.Background(), "stale")
	require.NoError(t, err)
	assert.Equal(t, "current", tok)
	assert.Equal(t, int32(0), f.refreshCalls.Load())

	tok, err = state.ForceRefresh(context.Background(), "current")
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok)
	assert.Equal(t, int32(1), f.refreshCalls.Load())
}

func TestCursorOnlyMovesForward(t *testing.T) {
	f := newFakeStrava(t)
	state, store := newState(t, f, State{AccessToken: "a", RefreshToken: "r"})

	c, err := state.Cursor()
	require.NoError(t, err)
	assert.Nil(t, c)

	later := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	earlier := later.Add(-24 * time.Hour)
	require.NoError(t, state.AdvanceCursor(later))
	require.NoError(t, state.AdvanceCursor(earlier))

	c, err = state.Cursor()
	require.NoError(t, err)
	assert.True(t, later.Equal(*c))

	require.NoError(t, state.ResetCursor(earlier))
	persisted, err := store.Load()
	require.NoError(t, err)
	assert.True(t, earlier.Equal(*persisted.LastActivityAt))
	assert.NotNil(t, persisted.LastSyncedAt)
	assert.Equal(t, "a", persisted.AccessToken)
}

func TestListActivitiesRetriesRateLimit(t *testing.T) {
	f := newFakeStrava(t)
	f.activities = []Activity{{ID: 1, SportType: "Run"}}
	f.rateLimited.Store(2)
	state, _ := newState(t, f, State{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour).Unix()})
	client := newClient(f, state, 3)

	page, err := client.ListActivities(context.Background(), ListQuery{Page: 1, PerPage: 500})
	require.NoError(t, err)
	assert.Len(t, page.Activities, 1)
	assert.Equal(t, 200, page.PerPage)
	assert.Equal(t, int32(3), f.listCalls.Load())
	assert.Contains(t, f.lastQuery.Load().(string), "per_page=200")

	limits, ok := client.RateLimits()
	require.True(t, ok)
	assert.Equal(t, "10,100", limits.GlobalUsage)
}

func TestListActivitiesRateLimitExhausted(t *testing.T) {
	f := newFakeStrava(t)
	f.rateLimited.Store(10)
	state, _ := newState(t, f, State{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour).Unix()})
	client := newClient(f, state, 3)

	_, err := client.ListActivities(context.Background(), ListQuery{Page: 1, PerPage: 10})
	var rlErr *RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, 3, rlErr.Attempts)
	assert.Equal(t, int32(3), f.listCalls.Load())
}

func TestListActivitiesRefreshesOnUnauthorized(t *testing.T) {
	f := newFakeStrava(t)
	f.rejectToken.Store("revoked")
	f.activities = []Activity{}
	state, _ := newState(t, f, State{AccessToken: "revoked", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour).Unix()})
	client := newClient(f, state, 1)

	after := time.Unix(1714550400, 0)
	page, err := client.ListActivities(context.Background(), ListQuery{Page: 2, PerPage: 30, After: &after})
	require.NoError(t, err)
	assert.True(t, page.AutoRefreshed)
	assert.Equal(t, int32(1), f.refreshCalls.Load())
	assert.Equal(t, int32(2), f.listCalls.Load())
	assert.Contains(t, f.lastQuery.Load().(string), "after=1714550400")
}

func TestActivityCandidate(t *testing.T) {
	moving, elapsed := 3000, 3100
	distance, gain := 10000.0, 85.6
	a := Activity{
		ID:                 987654321,
		Name:               "Morning Run",
		SportType:          "TrailRun",
		StartDate:          time.Date(2024, 4, 30, 22, 30, 0, 0, time.UTC),
		StartDateLocal:     time.Date(2024, 5, 1, 0, 30, 0, 0, time.UTC),
		MovingTime:         &moving,
		ElapsedTime:        &elapsed,
		Distance:           &distance,
		TotalElevationGain: &gain,
	}

	c := a.Candidate()
	assert.Equal(t, entity.SourceRemoteSync, c.Source)
	assert.Equal(t, "987654321", *c.ExternalId)
	assert.Equal(t, entity.SessionTypeTrail, c.Type)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), c.Date)
	assert.Equal(t, 51, c.DurationMinutes)
	assert.Equal(t, 50, *c.MovingDurationMinutes)
	assert.Equal(t, 52, *c.ElapsedDurationMinutes)
	assert.Equal(t, 10.0, *c.DistanceKm)
	assert.Equal(t, 5.0, *c.AveragePaceMinPerKm)
	assert.Equal(t, 86, *c.ElevationGainM)
	assert.Equal(t, "Morning Run", c.Notes)
	assert.NoError(t, c.Validate())
}

func TestMapSportType(t *testing.T) {
	assert.Equal(t, entity.SessionTypeRun, MapSportType("Run"))
	assert.Equal(t, entity.SessionTypeHike, MapSportType("Walk"))
	assert.Equal(t, entity.SessionTypeBike, MapSportType("GravelRide"))
	assert.Equal(t, entity.SessionTypeStrength, MapSportType("WeightTraining"))
	assert.Equal(t, entity.SessionTypeMobility, MapSportType("Yoga"))
	assert.Equal(t, entity.SessionTypeOther, MapSportType("Kitesurf"))
}

func TestTokenInsideRefreshMarginIsRefreshed(t *testing.T) {
	f := newFakeStrava(t)
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "tokens.json"))
	expiry := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(State{AccessToken: "old", RefreshToken: "r", ExpiresAt: expiry.Unix()}))

	clock := expiry.Add(-30 * time.Second)
	state := NewSyncState(store, "client-id", "client-secret", f.server.URL+"/oauth/token",
		WithClock(func() time.Time { return clock }))

	tok, refreshed, err := state.Token(context.Background())
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, "access-1", tok)

	require.NoError(t, state.MarkSynced())
	snap, err := state.Snapshot()
	require.NoError(t, err)
	require.NotNil(t, snap.LastSyncedAt)
	assert.True(t, snap.LastSyncedAt.Equal(clock))
}

func TestActivityByID(t *testing.T) {
	f := newFakeStrava(t)
	distance := 5000.0
	f.activities = []Activity{{ID: 11, Name: "Lunch Ride", SportType: "Ride", Distance: &distance}}
	state, _ := newState(t, f, State{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour).Unix()})
	client := newClient(f, state, 1)

	a, err := client.Activity(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, "Lunch Ride", a.Name)
	assert.Equal(t, 5000.0, *a.Distance)

	_, err = client.Activity(context.Background(), 12)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

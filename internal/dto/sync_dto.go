package dto

import (
	"time"

	"github.com/google/uuid"
)

type BackfillRequest struct {
	PerPage  int `json:"per_page" query:"per_page" validate:"omitempty,min=1,max=200"`
	MaxPages int `json:"max_pages" query:"max_pages" validate:"omitempty,min=1"`
}

type RateLimitsResponse struct {
	GlobalLimit string `json:"global_limit"`
	GlobalUsage string `json:"global_usage"`
	ReadLimit   string `json:"read_limit"`
	ReadUsage   string `json:"read_usage"`
}

type SyncErrorResponse struct {
	Page   int    `json:"page"`
	Reason string `json:"reason"`
}

type SyncResultResponse struct {
	Mode               string              `json:"mode"`
	Inserted           int                 `json:"inserted"`
	Updated            int                 `json:"updated"`
	Skipped            int                 `json:"skipped"`
	DuplicateSuspects  int                 `json:"duplicate_suspects"`
	Fetched            int                 `json:"fetched"`
	PagesFetched       int                 `json:"pages_fetched"`
	AutoRefreshedToken bool                `json:"auto_refreshed_token"`
	CursorAdvanced     bool                `json:"cursor_advanced"`
	Errors             []SyncErrorResponse `json:"errors"`
	RateLimits         *RateLimitsResponse `json:"rate_limits"`
}

type RecentActivitiesRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=30"`
}

type StravaActivityResponse struct {
	Id                 int64    `json:"id"`
	Name               string   `json:"name"`
	SportType          string   `json:"sport_type"`
	MappedType         string   `json:"mapped_type"`
	StartDate          string   `json:"start_date"`
	MovingTimeSeconds  *int     `json:"moving_time_seconds"`
	ElapsedTimeSeconds *int     `json:"elapsed_time_seconds"`
	DistanceKm         *float64 `json:"distance_km"`
	ElevationGainM     *float64 `json:"elevation_gain_m"`
}

type StravaActivitySyncResponse struct {
	Activity         *StravaActivityResponse `json:"activity"`
	Action           string                  `json:"action"`
	SessionId        uuid.UUID               `json:"session_id"`
	DuplicateSuspect bool                    `json:"duplicate_suspect"`
}

type RecentActivitiesResponse struct {
	AttemptedLimit     int                       `json:"attempted_limit"`
	FetchedCount       int                       `json:"fetched_count"`
	AutoRefreshedToken bool                      `json:"auto_refreshed_token"`
	Activities         []*StravaActivityResponse `json:"activities"`
	RateLimits         *RateLimitsResponse       `json:"rate_limits"`
}

type TokenStatusResponse struct {
	Refreshed      bool       `json:"refreshed"`
	ExpiresAt      *time.Time `json:"expires_at"`
	LastActivityAt *time.Time `json:"last_activity_at"`
	LastSyncedAt   *time.Time `json:"last_synced_at"`
}

package dto

import (
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

type CreateSessionRequest struct {
	Date                   string     `json:"date" validate:"required,datetime=2006-01-02"`
	Type                   string     `json:"type" validate:"required,oneof=run trail hike bike swim skate strength mobility other"`
	StartTime              *time.Time `json:"start_time"`
	DurationMinutes        int        `json:"duration_minutes" validate:"gte=0"`
	MovingDurationMinutes  *int       `json:"moving_duration_minutes" validate:"omitempty,gte=0"`
	ElapsedDurationMinutes *int       `json:"elapsed_duration_minutes" validate:"omitempty,gte=0"`
	DistanceKm             *float64   `json:"distance_km" validate:"omitempty,gte=0"`
	ElevationGainM         *int       `json:"elevation_gain_m" validate:"omitempty,gte=0"`
	AveragePaceMinPerKm    *float64   `json:"average_pace_min_per_km" validate:"omitempty,gt=0"`
	AverageHeartRateBpm    *float64   `json:"average_heart_rate_bpm" validate:"omitempty,gt=0"`
	MaxHeartRateBpm        *float64   `json:"max_heart_rate_bpm" validate:"omitempty,gt=0"`
	PerceivedIntensity     *int       `json:"perceived_intensity" validate:"omitempty,min=1,max=10"`
	Notes                  string     `json:"notes"`
	FocusAreas             []string   `json:"focus_areas"`
}

// UpdateSessionRequest only touches the fields that are present in the body.
type UpdateSessionRequest struct {
	Id                     uuid.UUID  `json:"-"`
	Date                   *string    `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Type                   *string    `json:"type" validate:"omitempty,oneof=run trail hike bike swim skate strength mobility other"`
	StartTime              *time.Time `json:"start_time"`
	DurationMinutes        *int       `json:"duration_minutes" validate:"omitempty,gte=0"`
	MovingDurationMinutes  *int       `json:"moving_duration_minutes" validate:"omitempty,gte=0"`
	ElapsedDurationMinutes *int       `json:"elapsed_duration_minutes" validate:"omitempty,gte=0"`
	DistanceKm             *float64   `json:"distance_km" validate:"omitempty,gte=0"`
	ElevationGainM         *int       `json:"elevation_gain_m" validate:"omitempty,gte=0"`
	AveragePaceMinPerKm    *float64   `json:"average_pace_min_per_km" validate:"omitempty,gt=0"`
	AverageHeartRateBpm    *float64   `json:"average_heart_rate_bpm" validate:"omitempty,gt=0"`
	MaxHeartRateBpm        *float64   `json:"max_heart_rate_bpm" validate:"omitempty,gt=0"`
	PerceivedIntensity     *int       `json:"perceived_intensity" validate:"omitempty,min=1,max=10"`
	Notes                  *string    `json:"notes"`
	FocusAreas             *[]string  `json:"focus_areas"`
}

type ResetEditsRequest struct {
	Fields []string `json:"fields"`
}

type ListSessionsRequest struct {
	StartDate string `query:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `query:"end_date" validate:"required,datetime=2006-01-02"`
	Type      string `query:"type" validate:"omitempty,oneof=run trail hike bike swim skate strength mobility other"`
	Source    string `query:"source" validate:"omitempty,oneof=manual file-import remote-sync"`
	// DuplicatesOnly limits the list to sessions flagged as possible duplicates.
	DuplicatesOnly bool `query:"duplicates_only"`
}

type SessionResponse struct {
	Id                     uuid.UUID  `json:"id"`
	Date                   string     `json:"date"`
	Type                   string     `json:"type"`
	StartTime              *time.Time `json:"start_time"`
	DurationMinutes        int        `json:"duration_minutes"`
	MovingDurationMinutes  *int       `json:"moving_duration_minutes"`
	ElapsedDurationMinutes *int       `json:"elapsed_duration_minutes"`
	DistanceKm             *float64   `json:"distance_km"`
	ElevationGainM         *int       `json:"elevation_gain_m"`
	AveragePaceMinPerKm    *float64   `json:"average_pace_min_per_km"`
	AverageHeartRateBpm    *float64   `json:"average_heart_rate_bpm"`
	MaxHeartRateBpm        *float64   `json:"max_heart_rate_bpm"`
	PerceivedIntensity     *int       `json:"perceived_intensity"`
	Notes                  string     `json:"notes"`
	FocusAreas             []string   `json:"focus_areas"`
	Source                 string     `json:"source"`
	ExternalId             *string    `json:"external_id"`
	EditedFields           []string   `json:"edited_fields"`
	DuplicateSuspect       bool       `json:"duplicate_suspect"`
	DuplicateOfId          *uuid.UUID `json:"duplicate_of_id"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              *time.Time `json:"updated_at"`
}

type MergeResultResponse struct {
	Action           string           `json:"action"`
	DuplicateSuspect bool             `json:"duplicate_suspect"`
	DuplicateOfId    *uuid.UUID       `json:"duplicate_of_id"`
	Session          *SessionResponse `json:"session"`
}

type MigrateFocusResponse struct {
	Scanned  int `json:"scanned"`
	Migrated int `json:"migrated"`
}

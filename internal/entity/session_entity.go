package entity

import (
	"time"

	"github.com/google/uuid"
)

type SessionType string

const (
	SessionTypeRun      SessionType = "run"
	SessionTypeTrail    SessionType = "trail"
	SessionTypeHike     SessionType = "hike"
	SessionTypeBike     SessionType = "bike"
	SessionTypeSwim     SessionType = "swim"
	SessionTypeSkate    SessionType = "skate"
	SessionTypeStrength SessionType = "strength"
	SessionTypeMobility SessionType = "mobility"
	SessionTypeOther    SessionType = "other"
)

var SessionTypes = []SessionType{
	SessionTypeRun, SessionTypeTrail, SessionTypeHike, SessionTypeBike, SessionTypeSwim,
	SessionTypeSkate, SessionTypeStrength, SessionTypeMobility, SessionTypeOther,
}

func (t SessionType) Valid() bool {
	for _, known := range SessionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// CountsDistance reports whether the type contributes to headline distance totals.
func (t SessionType) CountsDistance() bool {
	return t == SessionTypeRun || t == SessionTypeTrail
}

// CountsElevation reports whether elevation gain is meaningful for the type.
func (t SessionType) CountsElevation() bool {
	return t == SessionTypeRun || t == SessionTypeTrail || t == SessionTypeHike
}

type SessionSource string

const (
	SourceManual     SessionSource = "manual"
	SourceFileImport SessionSource = "file-import"
	SourceRemoteSync SessionSource = "remote-sync"
)

func (s SessionSource) Valid() bool {
	return s == SourceManual || s == SourceFileImport || s == SourceRemoteSync
}

// Field names used as sticky edit markers.
const (
	FieldDate                   = "date"
	FieldType                   = "type"
	FieldStartTime              = "start_time"
	FieldDurationMinutes        = "duration_minutes"
	FieldMovingDurationMinutes  = "moving_duration_minutes"
	FieldElapsedDurationMinutes = "elapsed_duration_minutes"
	FieldDistanceKm             = "distance_km"
	FieldElevationGainM         = "elevation_gain_m"
	FieldAveragePace            = "average_pace_min_per_km"
	FieldAverageHeartRate       = "average_heart_rate_bpm"
	FieldMaxHeartRate           = "max_heart_rate_bpm"
	FieldPerceivedIntensity     = "perceived_intensity"
	FieldNotes                  = "notes"
	FieldFocusAreas             = "focus_areas"
)

var EditableFields = []string{
	FieldDate, FieldType, FieldStartTime, FieldDurationMinutes, FieldMovingDurationMinutes,
	FieldElapsedDurationMinutes, FieldDistanceKm, FieldElevationGainM, FieldAveragePace,
	FieldAverageHeartRate, FieldMaxHeartRate, FieldPerceivedIntensity, FieldNotes, FieldFocusAreas,
}

type Session struct {
	Id                     uuid.UUID
	Date                   time.Time // UTC midnight
	Type                   SessionType
	StartTime              *time.Time
	DurationMinutes        int
	MovingDurationMinutes  *int
	ElapsedDurationMinutes *int
	DistanceKm             *float64
	ElevationGainM         *int
	AveragePaceMinPerKm    *float64
	AverageHeartRateBpm    *float64
	MaxHeartRateBpm        *float64
	PerceivedIntensity     *int
	Notes                  string
	FocusAreas             []string
	Source                 SessionSource
	ExternalId             *string
	EditedFields           []string
	DuplicateSuspect       bool
	DuplicateOfId          *uuid.UUID
	CreatedAt              time.Time
	UpdatedAt              *time.Time
}

// EffectiveDurationMinutes prefers moving time, then elapsed time, then the raw duration.
func (s *Session) EffectiveDurationMinutes() int {
	if s.MovingDurationMinutes != nil {
		return *s.MovingDurationMinutes
	}
	if s.ElapsedDurationMinutes != nil {
		return *s.ElapsedDurationMinutes
	}
	return s.DurationMinutes
}

func (s *Session) IsEdited(field string) bool {
	for _, f := range s.EditedFields {
		if f == field {
			return true
		}
	}
	return false
}

func (s *Session) MarkEdited(field string) {
	if !s.IsEdited(field) {
		s.EditedFields = append(s.EditedFields, field)
	}
}

// ClearEdits removes the given markers, or all of them when none are named.
func (s *Session) ClearEdits(fields ...string) {
	if len(fields) == 0 {
		s.EditedFields = nil
		return
	}
	drop := make(map[string]bool, len(fields))
	for _, f := range fields {
		drop[f] = true
	}
	kept := s.EditedFields[:0]
	for _, f := range s.EditedFields {
		if !drop[f] {
			kept = append(kept, f)
		}
	}
	s.EditedFields = kept
}

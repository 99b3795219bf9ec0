package mapper

import (
	"time"

	"training-os-be/internal/entity"
	"training-os-be/internal/model"

	"gorm.io/datatypes"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	var startTime *time.Time
	if s.StartTime != nil {
		t := s.StartTime.UTC()
		startTime = &t
	}

	return &entity.Session{
		Id:                     s.Id,
		Date:                   DateOf(s.Date),
		Type:                   entity.SessionType(s.Type),
		StartTime:              startTime,
		DurationMinutes:        s.DurationMinutes,
		MovingDurationMinutes:  s.MovingDurationMinutes,
		ElapsedDurationMinutes: s.ElapsedDurationMinutes,
		DistanceKm:             s.DistanceKm,
		ElevationGainM:         s.ElevationGainM,
		AveragePaceMinPerKm:    s.AveragePaceMinPerKm,
		AverageHeartRateBpm:    s.AverageHeartRateBpm,
		MaxHeartRateBpm:        s.MaxHeartRateBpm,
		PerceivedIntensity:     s.PerceivedIntensity,
		Notes:                  s.Notes,
		FocusAreas:             copyStrings(s.FocusAreas),
		Source:                 entity.SessionSource(s.Source),
		ExternalId:             s.ExternalId,
		EditedFields:           copyStrings(s.EditedFields),
		DuplicateSuspect:       s.DuplicateSuspect,
		DuplicateOfId:          s.DuplicateOfId,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              updatedAt,
	}
}

func (m *SessionMapper) ToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.Session{
		Id:                     s.Id,
		Date:                   ToDate(s.Date),
		Type:                   string(s.Type),
		StartTime:              s.StartTime,
		DurationMinutes:        s.DurationMinutes,
		MovingDurationMinutes:  s.MovingDurationMinutes,
		ElapsedDurationMinutes: s.ElapsedDurationMinutes,
		DistanceKm:             s.DistanceKm,
		ElevationGainM:         s.ElevationGainM,
		AveragePaceMinPerKm:    s.AveragePaceMinPerKm,
		AverageHeartRateBpm:    s.AverageHeartRateBpm,
		MaxHeartRateBpm:        s.MaxHeartRateBpm,
		PerceivedIntensity:     s.PerceivedIntensity,
		Notes:                  s.Notes,
		FocusAreas:             datatypes.JSONSlice[string](copyStrings(s.FocusAreas)),
		Source:                 string(s.Source),
		ExternalId:             s.ExternalId,
		EditedFields:           datatypes.JSONSlice[string](copyStrings(s.EditedFields)),
		DuplicateSuspect:       s.DuplicateSuspect,
		DuplicateOfId:          s.DuplicateOfId,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              updatedAt,
	}
}

func (m *SessionMapper) ToEntities(sessions []*model.Session) []*entity.Session {
	entities := make([]*entity.Session, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ToEntity(s)
	}
	return entities
}

// FromCandidate builds a new, not yet persisted session.
func (m *SessionMapper) FromCandidate(c *entity.Candidate) *entity.Session {
	return &entity.Session{
		Date:                   TruncateDate(c.Date),
		Type:                   c.Type,
		StartTime:              c.StartTime,
		DurationMinutes:        c.DurationMinutes,
		MovingDurationMinutes:  c.MovingDurationMinutes,
		ElapsedDurationMinutes: c.ElapsedDurationMinutes,
		DistanceKm:             c.DistanceKm,
		ElevationGainM:         c.ElevationGainM,
		AveragePaceMinPerKm:    c.AveragePaceMinPerKm,
		AverageHeartRateBpm:    c.AverageHeartRateBpm,
		MaxHeartRateBpm:        c.MaxHeartRateBpm,
		PerceivedIntensity:     c.PerceivedIntensity,
		Notes:                  c.Notes,
		FocusAreas:             copyStrings(c.FocusAreas),
		Source:                 c.Source,
		ExternalId:             c.ExternalId,
	}
}

// TruncateDate drops the clock part and pins the value to UTC midnight.
func TruncateDate(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func ToDate(t time.Time) datatypes.Date {
	return datatypes.Date(TruncateDate(t))
}

func DateOf(d datatypes.Date) time.Time {
	return TruncateDate(time.Time(d))
}

func copyStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

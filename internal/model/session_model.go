package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Session struct {
	Id                     uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Date                   datatypes.Date `gorm:"not null;index"`
	Type                   string         `gorm:"type:varchar(20);not null;index"`
	StartTime              *time.Time     `gorm:"index"`
	DurationMinutes        int            `gorm:"not null"`
	MovingDurationMinutes  *int
	ElapsedDurationMinutes *int
	DistanceKm             *float64
	ElevationGainM         *int
	AveragePaceMinPerKm    *float64
	AverageHeartRateBpm    *float64
	MaxHeartRateBpm        *float64
	PerceivedIntensity     *int
	Notes                  string `gorm:"type:text;not null;default:''"`
	FocusAreas             datatypes.JSONSlice[string]
	Source                 string  `gorm:"type:varchar(20);not null;uniqueIndex:idx_sessions_source_external"`
	ExternalId             *string `gorm:"type:varchar(128);uniqueIndex:idx_sessions_source_external"`
	EditedFields           datatypes.JSONSlice[string]
	DuplicateSuspect       bool       `gorm:"not null;default:false"`
	DuplicateOfId          *uuid.UUID `gorm:"type:uuid"`
	CreatedAt              time.Time  `gorm:"autoCreateTime"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.Id == uuid.Nil {
		s.Id = uuid.New()
	}
	return nil
}

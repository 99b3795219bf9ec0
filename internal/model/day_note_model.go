package model

import (
	"time"

	"gorm.io/datatypes"
)

type DayNote struct {
	Date      datatypes.Date `gorm:"primaryKey"`
	Note      string         `gorm:"type:text;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (DayNote) TableName() string {
	return "day_notes"
}

package model

import "time"

type WeeklyPlan struct {
	Year             int    `gorm:"primaryKey;autoIncrement:false"`
	WeekNumber       int    `gorm:"primaryKey;autoIncrement:false"`
	Description      string `gorm:"type:text;not null;default:''"`
	TargetDistanceKm *float64
	TargetSessions   *int
	Tags             string    `gorm:"type:varchar(255);not null;default:''"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (WeeklyPlan) TableName() string {
	return "weekly_plans"
}

package entity

import "time"

type DayNote struct {
	Date      time.Time
	Note      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type WeeklyPlan struct {
	Year             int
	WeekNumber       int
	Description      string
	TargetDistanceKm *float64
	TargetSessions   *int
	Tags             string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

package dto

import "time"

type UpsertDayNoteRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Note string `json:"note" validate:"required"`
}

type DateRangeRequest struct {
	StartDate string `query:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `query:"end_date" validate:"required,datetime=2006-01-02"`
}

type DayNoteResponse struct {
	Date      string     `json:"date"`
	Note      string     `json:"note"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type UpsertWeeklyPlanRequest struct {
	Year             int      `json:"year" validate:"required,min=1,max=9999"`
	WeekNumber       int      `json:"week_number" validate:"required,min=1,max=53"`
	Description      string   `json:"description"`
	TargetDistanceKm *float64 `json:"target_distance_km" validate:"omitempty,gte=0"`
	TargetSessions   *int     `json:"target_sessions" validate:"omitempty,gte=0"`
	Tags             string   `json:"tags"`
}

type WeeklyPlanResponse struct {
	Year             int        `json:"year"`
	WeekNumber       int        `json:"week_number"`
	Description      string     `json:"description"`
	TargetDistanceKm *float64   `json:"target_distance_km"`
	TargetSessions   *int       `json:"target_sessions"`
	Tags             string     `json:"tags"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

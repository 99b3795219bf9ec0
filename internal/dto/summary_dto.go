package dto

type TypeBucket struct {
	Type                string  `json:"type"`
	Sessions            int     `json:"sessions"`
	DurationMinutes     int     `json:"duration_minutes"`
	DistanceKm          float64 `json:"distance_km"`
	ElevationGainM      int     `json:"elevation_gain_m"`
	CountsElevationGain bool    `json:"counts_elevation_gain"`
}

type PlanVsActual struct {
	TargetDistanceKm   *float64 `json:"target_distance_km"`
	ActualDistanceKm   float64  `json:"actual_distance_km"`
	DistanceDeltaKm    *float64 `json:"distance_delta_km"`
	TargetSessions     *int     `json:"target_sessions"`
	ActualSessions     int      `json:"actual_sessions"`
	SessionsDelta      *int     `json:"sessions_delta"`
	DistanceCompletion *float64 `json:"distance_completion_pct"`
}

type SalientSession struct {
	SessionId string   `json:"session_id"`
	Date      string   `json:"date"`
	Type      string   `json:"type"`
	Reasons   []string `json:"reasons"`
}

type WeeklySummaryResponse struct {
	Year                 int                 `json:"year"`
	WeekNumber           int                 `json:"week_number"`
	StartDate            string              `json:"start_date"`
	EndDate              string              `json:"end_date"`
	Plan                 *WeeklyPlanResponse `json:"plan"`
	Sessions             []*SessionResponse  `json:"sessions"`
	DayNotes             []*DayNoteResponse  `json:"day_notes"`
	TotalSessions        int                 `json:"total_sessions"`
	TotalDurationMinutes int                 `json:"total_duration_minutes"`
	TotalDistanceKm      float64             `json:"total_distance_km"`
	TotalElevationGainM  int                 `json:"total_elevation_gain_m"`
	ByType               []*TypeBucket       `json:"by_type"`
	PlanVsActual         *PlanVsActual       `json:"plan_vs_actual"`
	SalientSessions      []*SalientSession   `json:"salient_sessions"`
	DuplicateSuspects    int                 `json:"duplicate_suspects"`
}

type WeeklyTrendRequest struct {
	StartDate string `query:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `query:"end_date" validate:"required,datetime=2006-01-02"`
}

type WeeklyTrendPoint struct {
	Year                 int      `json:"year"`
	WeekNumber           int      `json:"week_number"`
	TotalSessions        int      `json:"total_sessions"`
	TotalDurationMinutes int      `json:"total_duration_minutes"`
	TotalDistanceKm      float64  `json:"total_distance_km"`
	TotalElevationGainM  int      `json:"total_elevation_gain_m"`
	TargetDistanceKm     *float64 `json:"target_distance_km"`
	TargetSessions       *int     `json:"target_sessions"`
}

package strava

import (
	"net/http"
	"time"
)

// Activity is the subset of a Strava summary activity the importer reads.
type Activity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          string    `json:"sport_type"`
	StartDate          time.Time `json:"start_date"`
	StartDateLocal     time.Time `json:"start_date_local"`
	MovingTime         *int      `json:"moving_time"`
	ElapsedTime        *int      `json:"elapsed_time"`
	Distance           *float64  `json:"distance"`
	TotalElevationGain *float64  `json:"total_elevation_gain"`
	AverageHeartrate   *float64  `json:"average_heartrate"`
	MaxHeartrate       *float64  `json:"max_heartrate"`
}

// Sport prefers the newer sport_type field.
func (a *Activity) Sport() string {
	if a.SportType != "" {
		return a.SportType
	}
	return a.Type
}

type RateLimits struct {
	GlobalLimit string `json:"global_limit,omitempty"`
	GlobalUsage string `json:"global_usage,omitempty"`
	ReadLimit   string `json:"read_limit,omitempty"`
	ReadUsage   string `json:"read_usage,omitempty"`
}

func rateLimitsFromHeader(h http.Header) RateLimits {
	return RateLimits{
		GlobalLimit: h.Get("X-Ratelimit-Limit"),
		GlobalUsage: h.Get("X-Ratelimit-Usage"),
		ReadLimit:   h.Get("X-Readratelimit-Limit"),
		ReadUsage:   h.Get("X-Readratelimit-Usage"),
	}
}

func (r RateLimits) empty() bool {
	return r == RateLimits{}
}

type ListQuery struct {
	Page    int
	PerPage int
	After   *time.Time
}

type Page struct {
	Number        int
	PerPage       int
	Activities    []Activity
	AutoRefreshed bool
	RateLimits    RateLimits
}

const (
	MaxPerPage       = 200
	MaxRecentResults = 30
)

// ClampPerPage bounds a page size to what the API accepts.
func ClampPerPage(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxPerPage {
		return MaxPerPage
	}
	return n
}

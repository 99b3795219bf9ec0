package strava

import (
	"math"
	"strconv"
	"time"

	"training-os-be/internal/entity"
)

var sportTypes = map[string]entity.SessionType{
	"Run":              entity.SessionTypeRun,
	"VirtualRun":       entity.SessionTypeRun,
	"TrailRun":         entity.SessionTypeTrail,
	"Hike":             entity.SessionTypeHike,
	"Walk":             entity.SessionTypeHike,
	"Ride":             entity.SessionTypeBike,
	"VirtualRide":      entity.SessionTypeBike,
	"MountainBikeRide": entity.SessionTypeBike,
	"GravelRide":       entity.SessionTypeBike,
	"EBikeRide":        entity.SessionTypeBike,
	"Swim":             entity.SessionTypeSwim,
	"InlineSkate":      entity.SessionTypeSkate,
	"IceSkate":         entity.SessionTypeSkate,
	"RollerSki":        entity.SessionTypeSkate,
	"WeightTraining":   entity.SessionTypeStrength,
	"Crossfit":         entity.SessionTypeStrength,
	"Workout":          entity.SessionTypeStrength,
	"Yoga":             entity.SessionTypeMobility,
	"Pilates":          entity.SessionTypeMobility,
}

func MapSportType(sport string) entity.SessionType {
	if t, ok := sportTypes[sport]; ok {
		return t
	}
	return entity.SessionTypeOther
}

// Candidate converts the activity into a remote-sync candidate keyed by the Strava id.
// The session date follows the athlete's local start date.
func (a *Activity) Candidate() *entity.Candidate {
	externalID := strconv.FormatInt(a.ID, 10)

	local := a.StartDateLocal
	if local.IsZero() {
		local = a.StartDate
	}
	start := a.StartDate.UTC()

	c := &entity.Candidate{
		Source:     entity.SourceRemoteSync,
		ExternalId: &externalID,
		Date:       time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
		Type:       MapSportType(a.Sport()),
		Notes:      a.Name,
	}
	if !a.StartDate.IsZero() {
		c.StartTime = &start
	}

	if a.ElapsedTime != nil {
		c.DurationMinutes = *a.ElapsedTime / 60
		elapsed := int(math.Round(float64(*a.ElapsedTime) / 60))
		c.ElapsedDurationMinutes = &elapsed
	}
	if a.MovingTime != nil {
		moving := int(math.Round(float64(*a.MovingTime) / 60))
		if c.ElapsedDurationMinutes != nil && moving > *c.ElapsedDurationMinutes {
			moving = *c.ElapsedDurationMinutes
		}
		c.MovingDurationMinutes = &moving
		if a.ElapsedTime == nil {
			c.DurationMinutes = *a.MovingTime / 60
		}
	}
	if a.Distance != nil {
		km := math.Round(*a.Distance/10) / 100
		c.DistanceKm = &km
		if km > 0 && a.MovingTime != nil && *a.MovingTime > 0 {
			pace := math.Round(float64(*a.MovingTime)/60/km*100) / 100
			c.AveragePaceMinPerKm = &pace
		}
	}
	if a.TotalElevationGain != nil {
		gain := int(math.Round(*a.TotalElevationGain))
		c.ElevationGainM = &gain
	}
	c.AverageHeartRateBpm = a.AverageHeartrate
	c.MaxHeartRateBpm = a.MaxHeartrate

	return c
}

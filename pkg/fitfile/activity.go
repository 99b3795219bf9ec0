package fitfile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"training-os-be/internal/entity"
)

// Activity is the session summary pulled out of a file, before normalisation.
// Nil fields were absent from the file.
type Activity struct {
	Path           string
	ContentHash    string
	Parser         string
	Sport          string
	SubSport       string
	Type           entity.SessionType // set by formats that carry their own type, e.g. GPX
	StartTime      time.Time
	ElapsedSeconds float64
	TimerSeconds   *float64
	DistanceMeters *float64
	AscentMeters   *float64
	AvgHeartRate   *float64
	MaxHeartRate   *float64
}

// ContentHash is the hex sha256 of the raw file bytes.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Candidate normalises the activity into a file-import candidate keyed by its content hash.
func (a *Activity) Candidate() (*entity.Candidate, error) {
	if a.StartTime.IsZero() || a.ElapsedSeconds <= 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(a.Path), ErrMissingEssentialData)
	}

	start := a.StartTime.UTC()
	externalID := a.ContentHash
	elapsed := int(math.Round(a.ElapsedSeconds / 60))

	sessionType := a.Type
	if sessionType == "" {
		sessionType = MapSportToType(a.Sport, a.SubSport)
	}

	c := &entity.Candidate{
		Source:                 entity.SourceFileImport,
		ExternalId:             &externalID,
		Date:                   time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		Type:                   sessionType,
		StartTime:              &start,
		DurationMinutes:        int(a.ElapsedSeconds / 60),
		ElapsedDurationMinutes: &elapsed,
		Notes:                  fmt.Sprintf("Imported from %s (%s)", filepath.Base(a.Path), a.Parser),
	}

	if a.TimerSeconds != nil && *a.TimerSeconds > 0 {
		moving := int(math.Round(*a.TimerSeconds / 60))
		if moving > elapsed {
			moving = elapsed
		}
		c.MovingDurationMinutes = &moving
	}
	if a.DistanceMeters != nil {
		km := math.Round(*a.DistanceMeters/10) / 100
		c.DistanceKm = &km
		if km > 0 {
			minutes := a.ElapsedSeconds / 60
			if a.TimerSeconds != nil && *a.TimerSeconds > 0 {
				minutes = *a.TimerSeconds / 60
			}
			pace := math.Round(minutes/km*100) / 100
			c.AveragePaceMinPerKm = &pace
		}
	}
	if a.AscentMeters != nil {
		gain := int(*a.AscentMeters)
		c.ElevationGainM = &gain
	}
	c.AverageHeartRateBpm = a.AvgHeartRate
	c.MaxHeartRateBpm = a.MaxHeartRate

	return c, nil
}

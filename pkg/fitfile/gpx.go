package fitfile

import (
	"strings"

	"training-os-be/internal/entity"

	"github.com/tkrajina/gpxgo/gpx"
)

const parserGPX = "gpx"

// gpxTrackTypes maps common GPX <type> values written by Strava, Garmin and Komoot exports.
var gpxTrackTypes = map[string]entity.SessionType{
	"running":        entity.SessionTypeRun,
	"run":            entity.SessionTypeRun,
	"9":              entity.SessionTypeRun,
	"trail_run":      entity.SessionTypeTrail,
	"trailrun":       entity.SessionTypeTrail,
	"trail":          entity.SessionTypeTrail,
	"hiking":         entity.SessionTypeHike,
	"hike":           entity.SessionTypeHike,
	"walking":        entity.SessionTypeHike,
	"walk":           entity.SessionTypeHike,
	"cycling":        entity.SessionTypeBike,
	"biking":         entity.SessionTypeBike,
	"ride":           entity.SessionTypeBike,
	"1":              entity.SessionTypeBike,
	"swimming":       entity.SessionTypeSwim,
	"swim":           entity.SessionTypeSwim,
	"inline_skating": entity.SessionTypeSkate,
	"skating":        entity.SessionTypeSkate,
}

func gpxType(g *gpx.GPX) entity.SessionType {
	for _, track := range g.Tracks {
		if t, ok := gpxTrackTypes[strings.ToLower(strings.TrimSpace(track.Type))]; ok {
			return t
		}
	}
	return entity.SessionTypeRun
}

// DecodeGPX reads a GPX track. GPX has no fallback decoder; a parse failure is final.
func DecodeGPX(path string, data []byte) (*Activity, error) {
	g, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, &DecodeError{Path: path, Primary: err}
	}
	if len(g.Tracks) == 0 {
		return nil, &DecodeError{Path: path, Primary: ErrNoSession}
	}

	a := &Activity{
		Path:        path,
		ContentHash: ContentHash(data),
		Parser:      parserGPX,
		Type:        gpxType(g),
	}

	bounds := g.TimeBounds()
	if !bounds.StartTime.IsZero() {
		a.StartTime = bounds.StartTime
		a.ElapsedSeconds = bounds.EndTime.Sub(bounds.StartTime).Seconds()
	} else if g.Time != nil {
		a.StartTime = *g.Time
		a.ElapsedSeconds = g.Duration()
	}

	moving := g.MovingData()
	if moving.MovingTime > 0 {
		v := moving.MovingTime
		a.TimerSeconds = &v
	}
	distance := g.Length2D()
	a.DistanceMeters = &distance

	if hasElevation(g) {
		up := g.UphillDownhill().Uphill
		a.AscentMeters = &up
	}
	return a, nil
}

func hasElevation(g *gpx.GPX) bool {
	for _, track := range g.Tracks {
		for _, segment := range track.Segments {
			for _, point := range segment.Points {
				if point.Elevation.NotNull() {
					return true
				}
			}
		}
	}
	return false
}

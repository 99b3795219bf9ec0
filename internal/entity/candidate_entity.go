package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidCandidate = errors.New("invalid candidate")

// Candidate is an activity produced by a decoder, the sync client or manual entry
// that has not been merged into the session store yet.
type Candidate struct {
	Source                 SessionSource
	ExternalId             *string
	Date                   time.Time
	Type                   SessionType
	StartTime              *time.Time
	DurationMinutes        int
	MovingDurationMinutes  *int
	ElapsedDurationMinutes *int
	DistanceKm             *float64
	ElevationGainM         *int
	AveragePaceMinPerKm    *float64
	AverageHeartRateBpm    *float64
	MaxHeartRateBpm        *float64
	PerceivedIntensity     *int
	Notes                  string
	FocusAreas             []string
}

// Key returns the dedup anchor, or "" for candidates without an external id.
func (c *Candidate) Key() string {
	if c.ExternalId == nil {
		return ""
	}
	return string(c.Source) + ":" + *c.ExternalId
}

func (c *Candidate) Validate() error {
	switch {
	case !c.Source.Valid():
		return fmt.Errorf("%w: unknown source %q", ErrInvalidCandidate, c.Source)
	case !c.Type.Valid():
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCandidate, c.Type)
	case c.Date.IsZero():
		return fmt.Errorf("%w: missing date", ErrInvalidCandidate)
	case c.ExternalId != nil && *c.ExternalId == "":
		return fmt.Errorf("%w: empty external id", ErrInvalidCandidate)
	case c.DurationMinutes < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalidCandidate)
	case c.MovingDurationMinutes != nil && c.ElapsedDurationMinutes != nil &&
		*c.ElapsedDurationMinutes < *c.MovingDurationMinutes:
		return fmt.Errorf("%w: elapsed duration shorter than moving duration", ErrInvalidCandidate)
	case c.PerceivedIntensity != nil && (*c.PerceivedIntensity < 1 || *c.PerceivedIntensity > 10):
		return fmt.Errorf("%w: perceived intensity out of range", ErrInvalidCandidate)
	}
	return nil
}

type MergeAction string

const (
	MergeInserted MergeAction = "inserted"
	MergeUpdated  MergeAction = "updated"
	MergeSkipped  MergeAction = "skipped"
)

type MergeResult struct {
	Action           MergeAction
	SessionId        uuid.UUID
	DuplicateSuspect bool
	DuplicateOfId    *uuid.UUID
}

type MergeFailure struct {
	ExternalId string
	Reason     string
}

type MergeTally struct {
	Inserted          int
	Updated           int
	Skipped           int
	DuplicateSuspects int
	Failures          []MergeFailure
}

func (t *MergeTally) Record(r *MergeResult) {
	switch r.Action {
	case MergeInserted:
		t.Inserted++
	case MergeUpdated:
		t.Updated++
	case MergeSkipped:
		t.Skipped++
	}
	if r.DuplicateSuspect {
		t.DuplicateSuspects++
	}
}

func (t *MergeTally) Add(other *MergeTally) {
	if other == nil {
		return
	}
	t.Inserted += other.Inserted
	t.Updated += other.Updated
	t.Skipped += other.Skipped
	t.DuplicateSuspects += other.DuplicateSuspects
	t.Failures = append(t.Failures, other.Failures...)
}

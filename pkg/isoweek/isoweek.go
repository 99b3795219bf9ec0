// Package isoweek resolves ISO-8601 week numbers to calendar windows.
// Weeks start on Monday and week 1 is the week containing the year's first Thursday.
package isoweek

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidWeek = errors.New("invalid iso week")

type Week struct {
	Year int
	Week int
}

func (w Week) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Week)
}

// Next returns the following week, rolling into the next ISO year when needed.
func (w Week) Next() Week {
	start, _, _ := Bounds(w.Year, w.Week)
	return Of(start.AddDate(0, 0, 7))
}

// WeeksInYear returns 52 or 53.
func WeeksInYear(year int) int {
	// Dec 28 always falls in the last ISO week of its year.
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

func Validate(year, week int) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidWeek, year)
	}
	if week < 1 || week > WeeksInYear(year) {
		return fmt.Errorf("%w: year %d has no week %d", ErrInvalidWeek, year, week)
	}
	return nil
}

// Bounds returns Monday and Sunday (UTC midnight, both inclusive) of the given week.
func Bounds(year, week int) (time.Time, time.Time, error) {
	if err := Validate(year, week); err != nil {
		return time.Time{}, time.Time{}, err
	}
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7 // days since Monday
	week1Monday := jan4.AddDate(0, 0, -offset)
	start := week1Monday.AddDate(0, 0, (week-1)*7)
	return start, start.AddDate(0, 0, 6), nil
}

// Of returns the ISO week containing the calendar date of t.
func Of(t time.Time) Week {
	y, w := t.ISOWeek()
	return Week{Year: y, Week: w}
}

// Range lists every ISO week touched by the dates from..to, inclusive.
func Range(from, to time.Time) []Week {
	if to.Before(from) {
		return nil
	}
	var weeks []Week
	cur := Of(from)
	last := Of(to)
	for {
		weeks = append(weeks, cur)
		if cur == last {
			return weeks
		}
		cur = cur.Next()
	}
}

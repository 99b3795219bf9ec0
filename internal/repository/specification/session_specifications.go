package specification

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func day(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// ByDateRange matches rows whose date lies in [From, To], both inclusive.
type ByDateRange struct {
	From time.Time
	To   time.Time
}

func (s ByDateRange) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("date >= ? AND date <= ?", day(s.From), day(s.To))
}

type ByDate struct {
	Date time.Time
}

func (s ByDate) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("date = ?", day(s.Date))
}

type BySourceExternalID struct {
	Source     string
	ExternalID string
}

func (s BySourceExternalID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source = ? AND external_id = ?", s.Source, s.ExternalID)
}

type ByType struct {
	Type string
}

func (s ByType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("type = ?", s.Type)
}

type BySource struct {
	Source string
}

func (s BySource) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source = ?", s.Source)
}

type NotSource struct {
	Source string
}

func (s NotSource) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source <> ?", s.Source)
}

type DuplicateSuspects struct{}

func (s DuplicateSuspects) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("duplicate_suspect = ?", true)
}

type ByYearWeek struct {
	Year int
	Week int
}

func (s ByYearWeek) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("year = ? AND week_number = ?", s.Year, s.Week)
}

// ByYearWeekRange matches plans between two (year, week) pairs, inclusive.
type ByYearWeekRange struct {
	FromYear, FromWeek int
	ToYear, ToWeek     int
}

func (s ByYearWeekRange) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("(year * 100 + week_number) BETWEEN ? AND ?",
		s.FromYear*100+s.FromWeek, s.ToYear*100+s.ToWeek)
}

// NotesPrefix matches notes starting with Prefix, case-insensitively for ASCII.
type NotesPrefix struct {
	Prefix string
}

func (s NotesPrefix) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(notes) LIKE ?", strings.ToLower(s.Prefix)+"%")
}

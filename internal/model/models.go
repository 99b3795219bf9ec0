package model

// AllModels is the migration set, in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&Session{},
		&DayNote{},
		&WeeklyPlan{},
	}
}

package scope

import "gorm.io/gorm"

// Chronological orders sessions by day, then start time with untimed entries first.
func Chronological(db *gorm.DB) *gorm.DB {
	return db.Order("date ASC").Order("start_time IS NOT NULL").Order("start_time ASC").Order("created_at ASC")
}

func OrderByDateAsc(db *gorm.DB) *gorm.DB {
	return db.Order("date ASC")
}

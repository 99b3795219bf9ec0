package specification

import "gorm.io/gorm"

// Specification narrows or orders a repository query; repositories apply them in order.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

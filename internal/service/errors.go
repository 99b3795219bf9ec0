package service

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPlanNotFound    = errors.New("weekly plan not found")
	ErrInvalidDate     = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidRange    = errors.New("invalid date range")
	ErrInvalidSession  = errors.New("invalid session")
	ErrUnknownField    = errors.New("unknown session field")
)

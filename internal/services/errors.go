package services

import "errors"

// Service errors
var (
	ErrNoReportsFound = errors.New("no reports found")
)

package model

import "errors"

var (
	// ErrInvalidProfile is returned when a profile cannot be decoded or validated.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrAssessmentNotFound is returned when a stored assessment does not exist.
	ErrAssessmentNotFound = errors.New("assessment not found")
)

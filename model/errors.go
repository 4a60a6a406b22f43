package model

import "errors"

var (
	ErrMissingName         = errors.New("asteroid name is required")
	ErrNonPositiveDiameter = errors.New("asteroid diameter must be positive")
	ErrNonPositiveVelocity = errors.New("asteroid velocity must be positive")
	ErrTorinoOutOfRange    = errors.New("torino scale must be between 0 and 10")
)

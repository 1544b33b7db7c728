package model

import "errors"

// Sentinel errors for configuration and input handling.
var (
	// ErrNoURL is returned when neither an argument nor the prompt produced a URL.
	ErrNoURL = errors.New("no URL given")
	// ErrConfigNotFound is returned when an explicitly requested config file is missing.
	ErrConfigNotFound = errors.New("config file not found")
)

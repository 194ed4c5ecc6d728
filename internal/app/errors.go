package app

import "errors"

var (
	ErrNotRunning      = errors.New("manager service is not running")
	ErrNoEnabledServer = errors.New("no enabled servers configured")
)

package service

import (
	"errors"

	"punogaria/internal/irrigation"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrModeConflict     = errors.New("operation not allowed in the current mode")
	ErrRunInProgress    = errors.New("a simulation run is already in progress for this session")
	ErrInvalidThreshold = irrigation.ErrInvalidThreshold
	ErrInvalidMode      = errors.New("invalid mode: must be automatic or manual")
	ErrInvalidRunParams = errors.New("invalid run params: iterations and interval must be positive")
	ErrInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	ErrInvalidEventType = errors.New("unknown event type")
)

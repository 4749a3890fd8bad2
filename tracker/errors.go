package tracker

import "errors"

var (
	ErrCardNotFound     = errors.New("card not found")
	ErrPendingNotFound  = errors.New("no pending reset for benefit")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrEndDateRequired  = errors.New("enabling a flag requires an end date")
)

package domain

import "errors"

// ErrInvalidArgument is returned when a Trial is constructed from invalid arguments.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrTrialNotFound is returned when a trial key cannot be found in the store.
var ErrTrialNotFound = errors.New("trial not found")

// ErrItemNotFound is returned when an item number cannot be resolved by a loader.
var ErrItemNotFound = errors.New("item not found")

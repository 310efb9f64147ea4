package service

import "errors"

var (
	// ErrPersistence wraps store failures that abort a commit.
	ErrPersistence = errors.New("checkin: persistence failure")
	// ErrInvalidArgument is returned for malformed admin or commit input.
	ErrInvalidArgument = errors.New("checkin: invalid argument")
)

package model

import "errors"

var (
	ErrMeetingNotFound     = errors.New("meeting not found")
	ErrEndpointNotFound    = errors.New("relationship endpoint not found")
	ErrInvalidRelationType = errors.New("relationship type must contain only letters, digits and underscores")
	ErrInvalidLabel        = errors.New("unknown node label")
)

package domain

import "errors"

// Pipeline failure kinds. Each stage wraps one of these so the transport
// layer can map errors to response codes with errors.Is.
var (
	ErrTrackNotFound  = errors.New("track not found")
	ErrRetrieval      = errors.New("source retrieval failed")
	ErrDecode         = errors.New("audio decode failed")
	ErrDecodeMismatch = errors.New("decoded buffer malformed")
	ErrPersist        = errors.New("feedback persist failed")
	ErrEmptyTrackID   = errors.New("empty track id")
)

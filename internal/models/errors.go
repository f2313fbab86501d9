package models

import "errors"

// Ошибки домена; на HTTP-статусы их переводит pkg/httperrors.
var (
	ErrUnknownCategory    = errors.New("unknown category")
	ErrFileTooLarge       = errors.New("file too large")
	ErrInvalidChunkIndex  = errors.New("invalid chunk index")
	ErrSessionMismatch    = errors.New("session mismatch")
	ErrSessionNotFound    = errors.New("session not found")
	ErrMissingField       = errors.New("missing required field")
	ErrMIMENotAllowed     = errors.New("mime type not allowed")
	ErrChecksumMismatch   = errors.New("chunk checksum mismatch")
	ErrCorruptSession     = errors.New("corrupt session")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

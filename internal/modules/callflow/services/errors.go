package services

import "errors"

var (
	// ErrCreationFailed is joined with the storage error that caused it.
	ErrCreationFailed       = errors.New("creation failed")
	ErrNoTemplateConfigured = errors.New("no missed-call whatsapp template configured for location")
	ErrNoWhatsAppNumber     = errors.New("location has no whatsapp-enabled phone number")
	ErrLocationNotFound     = errors.New("location not found")
	ErrTemplateNotFound     = errors.New("template not found")
	ErrPhoneNumberNotFound  = errors.New("phone number not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrCallAlreadyRecorded  = errors.New("call already recorded")
)

// Package types holds the data structures shared across the application.
// Keeping them in one place prevents import cycles — handlers, storage,
// and the registration service can all import types without depending
// on each other.
package types

// Participant is the record a raffle participant submits to register.
//
// The record does not carry the owning account: the account identifier is
// the registry key, supplied by the caller context rather than the body.
//
// The validate:"..." tags are checked by go-playground/validator, and the
// field order below is the order in which registration rules are applied.
// Only the first failing rule is reported. utf16min counts UTF-16 code
// units, so a character outside the Basic Multilingual Plane counts as two.
type Participant struct {
	FirstName    string `json:"firstName"    validate:"utf16min=3"`
	LastName     string `json:"lastName"     validate:"utf16min=3"`
	NationalID   uint32 `json:"nationalId"   validate:"gt=0"`
	Email        string `json:"email"        validate:"utf16min=7"`
	TicketNumber uint32 `json:"ticketNumber" validate:"gt=0"`
}

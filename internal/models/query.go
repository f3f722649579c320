package models

import "fmt"

// MinQueryLength is the shortest query the recommenders accept at the boundary.
const MinQueryLength = 2

// EventQuery is the request for event recommendations.
type EventQuery struct {
	Query string `json:"query" validate:"required,min=2"`
}

// LocationQuery is the request for location recommendations.
type LocationQuery struct {
	Location string `json:"location" validate:"required,min=2"`
}

// ValidateText returns an error when text is shorter than MinQueryLength characters.
// Used by the CLI; the HTTP boundary validates the structs above with validator tags.
func ValidateText(name, text string) error {
	if len([]rune(text)) < MinQueryLength {
		return fmt.Errorf("%s must be at least %d characters", name, MinQueryLength)
	}
	return nil
}

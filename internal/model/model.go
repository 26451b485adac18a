package model

import (
	"errors"
	"fmt"
	"time"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Event struct {
	ID           string
	Title        string
	Description  string
	Venue        string
	Location     string
	EventDate    time.Time
	Tags         []string
	Participants int
	OwnerIDs     []string
	CreatedAt    time.Time
}

// Validate checks the field constraints that hold for the lifetime of an
// event. The creation-only rule (date in the future) lives with the create
// handler, since updates may legally move an event into the past.
func (e *Event) Validate() error {
	if err := checkLen("Title", e.Title); err != nil {
		return err
	}
	if err := checkLen("Description", e.Description); err != nil {
		return err
	}
	if err := checkLen("Venue", e.Venue); err != nil {
		return err
	}
	if err := checkLen("Location", e.Location); err != nil {
		return err
	}
	if e.Participants < 1 {
		return errors.New("Participants must be at least 1.")
	}
	return nil
}

func checkLen(field, v string) error {
	if len(v) < 5 || len(v) > 255 {
		return fmt.Errorf("%s must be non-empty and between 5 and 255 characters long.", field)
	}
	return nil
}

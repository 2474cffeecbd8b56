package usecase

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a per-flight failure
type ErrorKind string

const (
	TransportFailure    ErrorKind = "transport"
	ParseFailure        ErrorKind = "parse"
	PersistenceFailure  ErrorKind = "persistence"
	NotificationFailure ErrorKind = "notification"
	UnexpectedFailure   ErrorKind = "unexpected"
	WholeTickFailure    ErrorKind = "tick"
)

var (
	// ErrTickInProgress is returned when a tick is requested while another one runs
	ErrTickInProgress = errors.New("reconciliation tick already in progress")
	// ErrInvalidEmail is returned for subscriber emails that fail validation
	ErrInvalidEmail = errors.New("email is not valid")
	// ErrInvalidFlight is returned for subscription requests missing flight data
	ErrInvalidFlight = errors.New("flight details are not valid")
)

// FlightError is the single failure value propagated from the per-flight
// stages up to the reconciliation loop, where it is logged once.
type FlightError struct {
	Kind         ErrorKind
	Stage        string
	FlightNumber string
	Err          error
}

func (e *FlightError) Error() string {
	return fmt.Sprintf("%s failure at %s for flight %s: %v", e.Kind, e.Stage, e.FlightNumber, e.Err)
}

func (e *FlightError) Unwrap() error {
	return e.Err
}

func newFlightError(kind ErrorKind, stage, flightNumber string, err error) *FlightError {
	return &FlightError{Kind: kind, Stage: stage, FlightNumber: flightNumber, Err: err}
}

// IsKind reports whether err carries a FlightError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var fe *FlightError
	return errors.As(err, &fe) && fe.Kind == kind
}

package entity

// Airline maps a two-letter IATA carrier code to a display name used in
// notification texts.
type Airline struct {
	ID   uint
	Code string
	Name string
}

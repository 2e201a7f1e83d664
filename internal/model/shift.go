package model

// Shift represents a single logged work interval.
//
// All fields are kept in their textual form so files written by earlier
// versions of the app round-trip unchanged.
type Shift struct {
	ID        string `json:"id,omitempty"`
	Day       string `json:"day"`       // weekday name, derived from Date
	Date      string `json:"date"`      // "2006-01-02"
	StartTime string `json:"startTime"` // "15:04"
	EndTime   string `json:"endTime"`   // "15:04"
	Duration  string `json:"duration"`  // hours with two decimals, e.g. "8.50"
}

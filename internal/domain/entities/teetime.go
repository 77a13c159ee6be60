package entities

import "time"

// PlayerCountUpToFour is the display sentinel used when the provider
// reports four or more open spots on a slot.
const PlayerCountUpToFour = "up to 4"

// Coordinates is a lat/lon pair.
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// SearchFilter drives a tee-time search. Players and Holes are the
// provider's own enum values ("any" meaning no restriction); TimeMin and
// TimeMax are whole hours, TimeMin <= TimeMax.
type SearchFilter struct {
	City    string      `json:"city"`
	Date    time.Time   `json:"date"`
	Players string      `json:"players"`
	Holes   string      `json:"holes"`
	TimeMin int         `json:"time_min"`
	TimeMax int         `json:"time_max"`
	Geo     Coordinates `json:"geo"`
}

// DisplaySlot is the flattened display model of one bookable tee time.
// It is recomputed on every poll and carries no identity of its own
// beyond DetailURL. Price is a markup fragment delivered pre-formatted
// by the provider and passed through as trusted content.
type DisplaySlot struct {
	FacilityName string `json:"facility_name"`
	Address      string `json:"address"`
	Distance     string `json:"distance"`
	Thumbnail    string `json:"thumbnail"`
	Time         string `json:"time"`
	Price        string `json:"price"`
	PlayerCount  string `json:"player_count"`
	HoleCount    *int   `json:"hole_count,omitempty"`
	DetailURL    string `json:"detail_url"`
}

// FacilityTeeTimes is one per-facility display group of normalized slots,
// in the order the provider returned them.
type FacilityTeeTimes struct {
	FacilityName string        `json:"facility_name"`
	Address      string        `json:"address"`
	Distance     string        `json:"distance"`
	Thumbnail    string        `json:"thumbnail"`
	Slots        []DisplaySlot `json:"slots"`
}

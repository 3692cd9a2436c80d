package statuspage

import "time"

// Metainfo describes the page in every list and detail response. The Client
// checks it and then drops it.
type Metainfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	TimeZone  string    `json:"time_zone"`
	UpdatedAt time.Time `json:"updated_at"`
}

package domain

import "time"

// Table names in the backing store. They double as change-notification keys.
const (
	TableLocations = "locations"
	TableItems     = "infrastructure_items"
)

type Status string

const (
	StatusGood Status = "good"
	StatusBad  Status = "bad"
	StatusNA   Status = "na"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusGood, StatusBad, StatusNA}

func (s Status) Valid() bool {
	switch s {
	case StatusGood, StatusBad, StatusNA:
		return true
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusGood:
		return "Buen Estado"
	case StatusBad:
		return "Mal Estado"
	case StatusNA:
		return "No Aplica"
	default:
		return string(s)
	}
}

type LocationType string

const (
	LocationClassroom LocationType = "classroom"
	LocationCommon    LocationType = "common"
	LocationFacility  LocationType = "facility"
)

func (t LocationType) Valid() bool {
	switch t {
	case LocationClassroom, LocationCommon, LocationFacility:
		return true
	}
	return false
}

func (t LocationType) Label() string {
	switch t {
	case LocationClassroom:
		return "Aula"
	case LocationCommon:
		return "Área Común"
	case LocationFacility:
		return "Instalación"
	default:
		return string(t)
	}
}

type Location struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Pavilion PavilionID   `json:"pavilion"`
	Floor    int          `json:"floor"`
	Type     LocationType `json:"type"`
}

type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Status      Status    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	Images      []string  `json:"images"`
	LocationID  *string   `json:"locationId"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// NewLocation is the insert payload for a location; the store assigns the ID.
type NewLocation struct {
	Name     string       `json:"name"`
	Pavilion PavilionID   `json:"pavilion"`
	Floor    int          `json:"floor"`
	Type     LocationType `json:"type"`
}

// NewItem is the insert payload for an item. LastUpdated is stamped at write time.
type NewItem struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Status     Status   `json:"status"`
	Notes      string   `json:"notes,omitempty"`
	Images     []string `json:"images"`
	LocationID *string  `json:"locationId"`
}

// ItemUpdate is a partial update: only non-nil fields are written. A LocationID
// pointing at an empty string clears the item's location.
type ItemUpdate struct {
	Name       *string   `json:"name,omitempty"`
	Category   *string   `json:"category,omitempty"`
	Status     *Status   `json:"status,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	Images     *[]string `json:"images,omitempty"`
	LocationID *string   `json:"locationId,omitempty"`
}

func (u ItemUpdate) Empty() bool {
	return u.Name == nil && u.Category == nil && u.Status == nil &&
		u.Notes == nil && u.Images == nil && u.LocationID == nil
}

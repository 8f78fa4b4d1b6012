package domain

import "sort"

type PavilionID string

const (
	PavilionA PavilionID = "A"
	PavilionB PavilionID = "B"
	PavilionC PavilionID = "C"
	PavilionD PavilionID = "D"
)

// PavilionCount is the number of pavilion buckets. It never changes at runtime.
const PavilionCount = 4

// PavilionIDs lists the pavilions in bucket order.
var PavilionIDs = [PavilionCount]PavilionID{PavilionA, PavilionB, PavilionC, PavilionD}

// Index returns the bucket index for id, or false for an unrecognized code.
func (id PavilionID) Index() (int, bool) {
	switch id {
	case PavilionA:
		return 0, true
	case PavilionB:
		return 1, true
	case PavilionC:
		return 2, true
	case PavilionD:
		return 3, true
	}
	return 0, false
}

func (id PavilionID) Valid() bool {
	_, ok := id.Index()
	return ok
}

// Pavilion is the derived per-wing view: the wing's locations and every item
// whose location lives in it.
type Pavilion struct {
	ID        PavilionID `json:"id"`
	Locations []Location `json:"locations"`
	Items     []Item     `json:"items"`
}

// Pavilions holds exactly one bucket per pavilion, indexed in PavilionIDs order.
type Pavilions [PavilionCount]Pavilion

// NewPavilions returns four empty buckets.
func NewPavilions() Pavilions {
	var p Pavilions
	for i, id := range PavilionIDs {
		p[i] = Pavilion{ID: id, Locations: []Location{}, Items: []Item{}}
	}
	return p
}

// Get returns the bucket for id. Unknown ids yield an empty bucket and false.
func (p Pavilions) Get(id PavilionID) (Pavilion, bool) {
	i, ok := id.Index()
	if !ok {
		return Pavilion{}, false
	}
	return p[i], true
}

// BuildPavilions partitions locations by pavilion and attaches each item to the
// bucket of the location it references. Locations with an unknown pavilion code
// and items whose location cannot be resolved are dropped.
func BuildPavilions(locations []*Location, items []*Item) Pavilions {
	p := NewPavilions()
	owner := make(map[string]int, len(locations))
	for _, loc := range locations {
		i, ok := loc.Pavilion.Index()
		if !ok {
			continue
		}
		p[i].Locations = append(p[i].Locations, *loc)
		owner[loc.ID] = i
	}
	for _, item := range items {
		if item.LocationID == nil {
			continue
		}
		i, ok := owner[*item.LocationID]
		if !ok {
			continue
		}
		p[i].Items = append(p[i].Items, *item)
	}
	return p
}

// Floors returns the distinct floors of the pavilion's locations, ascending.
func (p Pavilion) Floors() []int {
	seen := make(map[int]bool)
	floors := []int{}
	for _, loc := range p.Locations {
		if !seen[loc.Floor] {
			seen[loc.Floor] = true
			floors = append(floors, loc.Floor)
		}
	}
	sort.Ints(floors)
	return floors
}

// LocationsOnFloor filters locations by floor; floor 0 keeps all of them.
func (p Pavilion) LocationsOnFloor(floor int) []Location {
	out := []Location{}
	for _, loc := range p.Locations {
		if floor == 0 || loc.Floor == floor {
			out = append(out, loc)
		}
	}
	return out
}

// ItemsAt returns the items placed in locationID; an empty id returns all items.
func (p Pavilion) ItemsAt(locationID string) []Item {
	if locationID == "" {
		return append([]Item{}, p.Items...)
	}
	out := []Item{}
	for _, item := range p.Items {
		if item.LocationID != nil && *item.LocationID == locationID {
			out = append(out, item)
		}
	}
	return out
}

// CategoryGroup is a category together with the items filed under it.
type CategoryGroup struct {
	Category Category `json:"category"`
	Items    []Item   `json:"items"`
}

// GroupByCategory groups items by category in the order of categories. Items
// with an unknown category and categories with no items are omitted.
func GroupByCategory(items []Item, categories []Category) []CategoryGroup {
	byID := make(map[string][]Item)
	for _, item := range items {
		byID[item.Category] = append(byID[item.Category], item)
	}
	groups := []CategoryGroup{}
	for _, c := range categories {
		if list, ok := byID[c.ID]; ok {
			groups = append(groups, CategoryGroup{Category: c, Items: list})
		}
	}
	return groups
}

// ItemsByCategory groups the pavilion's items by category.
func (p Pavilion) ItemsByCategory(categories []Category) []CategoryGroup {
	return GroupByCategory(p.Items, categories)
}

// CountStatus returns how many of the pavilion's items have status s.
func (p Pavilion) CountStatus(s Status) int {
	n := 0
	for _, item := range p.Items {
		if item.Status == s {
			n++
		}
	}
	return n
}

package parking

import (
	"fmt"
	"sort"
	"time"
)

// Clock returns the current time. Stores take one so callers can drive time.
type Clock func() time.Time

var sections = []string{"A", "B", "C", "D"}

// Registry owns every spot in the lot. It is not safe for concurrent use.
type Registry struct {
	spots []*Spot
	index map[string]*Spot
	now   Clock
}

func NewRegistry(now Clock) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		index: make(map[string]*Spot),
		now:   now,
	}
}

// Initialize lays out levels × sections, replacing any existing spots.
func (r *Registry) Initialize(levels, spotsPerLevel int) error {
	if levels < 1 {
		return fmt.Errorf("%w: levels must be at least 1, got %d", ErrInvalidLayout, levels)
	}
	if spotsPerLevel < 0 {
		return fmt.Errorf("%w: spots per level must not be negative, got %d", ErrInvalidLayout, spotsPerLevel)
	}

	r.spots = nil
	r.index = make(map[string]*Spot)

	counter := 1
	perSection := spotsPerLevel / len(sections)
	mix := sectionMix(perSection)
	for level := 1; level <= levels; level++ {
		for _, section := range sections {
			for i, spotType := range SpotTypes {
				for n := 0; n < mix[i]; n++ {
					id := fmt.Sprintf("%d-%s-%d", level, section, counter)
					spot := NewSpot(id, spotType, level, section)
					r.spots = append(r.spots, spot)
					r.index[id] = spot
					counter++
				}
			}
		}
	}
	return nil
}

// sectionMix splits n spots by type in SpotTypes order. Motorcycle takes
// whatever the truncated ratios leave behind.
func sectionMix(n int) []int {
	regular := n * 60 / 100
	compact := n * 20 / 100
	large := n * 10 / 100
	handicapped := n * 5 / 100
	motorcycle := n - regular - compact - large - handicapped
	return []int{regular, compact, large, handicapped, motorcycle}
}

func (r *Registry) Occupy(spotID, vehicleID string) bool {
	spot, ok := r.index[spotID]
	if !ok {
		return false
	}
	return spot.Occupy(vehicleID, r.now())
}

func (r *Registry) Vacate(spotID string) (Occupancy, bool) {
	spot, ok := r.index[spotID]
	if !ok {
		return Occupancy{}, false
	}
	return spot.Vacate()
}

func (r *Registry) Spot(id string) (Spot, bool) {
	spot, ok := r.index[id]
	if !ok {
		return Spot{}, false
	}
	return *spot, true
}

// Spots returns copies of all spots in creation order.
func (r *Registry) Spots() []Spot {
	out := make([]Spot, len(r.spots))
	for i, s := range r.spots {
		out[i] = *s
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.spots)
}

func (r *Registry) Occupied() int {
	n := 0
	for _, s := range r.spots {
		if s.IsOccupied() {
			n++
		}
	}
	return n
}

// FindCandidates returns the free spots a vehicle type may use, exact
// matches first, each tier ordered by distance from the entrance.
func (r *Registry) FindCandidates(vt VehicleType) []Spot {
	var primary, secondary []Spot
	for _, s := range r.spots {
		if s.IsOccupied() {
			continue
		}
		switch MatchOf(vt, s.Type) {
		case PrimaryMatch:
			primary = append(primary, *s)
		case SecondaryMatch:
			secondary = append(secondary, *s)
		}
	}
	sortByDistance(primary)
	sortByDistance(secondary)
	return append(primary, secondary...)
}

// freeSuitable returns every free spot the vehicle type may use, unordered
// by tier.
func (r *Registry) freeSuitable(vt VehicleType) []Spot {
	var out []Spot
	for _, s := range r.spots {
		if !s.IsOccupied() && Suitable(vt, s.Type) {
			out = append(out, *s)
		}
	}
	return out
}

func sortByDistance(spots []Spot) {
	sort.SliceStable(spots, func(i, j int) bool {
		if spots[i].Level != spots[j].Level {
			return spots[i].Level < spots[j].Level
		}
		return spots[i].Section < spots[j].Section
	})
}

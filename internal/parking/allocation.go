package parking

import (
	"fmt"
	"strconv"
	"strings"
)

const PreferenceClosest = "closest"

// Assign picks the best free spot for the vehicle type without occupying it.
func Assign(r *Registry, vt VehicleType) (Spot, error) {
	if _, ok := suitability[vt]; !ok {
		return Spot{}, fmt.Errorf("%w: %q", ErrUnknownVehicleType, vt)
	}
	candidates := r.FindCandidates(vt)
	if len(candidates) == 0 {
		return Spot{}, fmt.Errorf("%w for %s", ErrNoSpotAvailable, vt)
	}
	return candidates[0], nil
}

// Recommend suggests a spot without regard to primary/secondary tiers.
// Preference is "closest" or "level-N"; anything else behaves like closest.
func Recommend(r *Registry, vt VehicleType, preference string) (string, bool) {
	spots := r.freeSuitable(vt)
	if len(spots) == 0 {
		return "", false
	}
	if level, ok := parseLevelPreference(preference); ok {
		var onLevel []Spot
		for _, s := range spots {
			if s.Level == level {
				onLevel = append(onLevel, s)
			}
		}
		if len(onLevel) > 0 {
			spots = onLevel
		}
	}
	sortByDistance(spots)
	return spots[0].ID, true
}

func parseLevelPreference(preference string) (int, bool) {
	rest, ok := strings.CutPrefix(preference, "level-")
	if !ok {
		return 0, false
	}
	level, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return level, true
}

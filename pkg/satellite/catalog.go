package satellite

import (
	"sort"
	"strings"
	"time"

	"github.com/dzeleniak/orbitpipe/internal/types"
)

// SearchCriteria represents multi-criteria search parameters for satellites.
type SearchCriteria struct {
	Name   string // partial match, case-insensitive
	Owner  string // partial match, case-insensitive
	Type   string // partial match, case-insensitive
	Regime string // exact match, case-insensitive
}

// VisibilityCriteria represents visibility search parameters.
type VisibilityCriteria struct {
	SearchCriteria              // Embed standard search criteria
	MinElevation   float64      // degrees
	MaxElevation   float64      // degrees
}

// VisibleSatellite represents a satellite with its current observation angles.
type VisibleSatellite struct {
	Satellite *types.Satellite
	Angles    *ObservationAngles
}

// MergeSatelliteData combines TLE and SATCAT data into Satellite objects.
// TLEs are used as the primary key, with SATCAT data merged when available.
// Satellites with SATCAT data have their orbit regime classified from its
// orbital parameters; those without SATCAT data, or with missing
// parameters, get the UNKNOWN regime.
func MergeSatelliteData(tles []types.TLE, satcats []types.SATCAT) []*types.Satellite {
	tleMap := make(map[int]*types.TLE)
	for i := range tles {
		noradID := tles[i].GetNoradID()
		if noradID > 0 {
			tleMap[noradID] = &tles[i]
		}
	}

	satcatMap := make(map[int]*types.SATCAT)
	for i := range satcats {
		satcatMap[satcats[i].NoradID] = &satcats[i]
	}

	satellites := make([]*types.Satellite, 0, len(tleMap))

	for noradID, tle := range tleMap {
		sat := &types.Satellite{
			NoradID: noradID,
			TLE:     tle,
		}

		if satcat, exists := satcatMap[noradID]; exists {
			sat.SATCAT = satcat
			sat.Name = satcat.Name
			sat.IntlID = satcat.IntlID
			sat.ObjectType = satcat.ObjectType
			sat.Owner = satcat.Owner
			sat.LaunchDate = satcat.LaunchDate
			sat.DecayDate = satcat.DecayDate
			sat.LaunchSite = satcat.LaunchSite
			sat.Period = satcat.Period
			sat.Inclination = satcat.Inclination
			sat.Apogee = satcat.Apogee
			sat.Perigee = satcat.Perigee
			sat.RCSSize = satcat.RCSSize

			sat.OrbitRegime = string(DetermineOrbitRegime(
				sat.Apogee,
				sat.Perigee,
				sat.Period,
				sat.Inclination,
			))
		} else {
			sat.Name = ""
			sat.OrbitRegime = string(RegimeUnknown)
		}

		satellites = append(satellites, sat)
	}

	sort.Slice(satellites, func(i, j int) bool {
		return satellites[i].NoradID < satellites[j].NoradID
	})

	return satellites
}

// FilterSatellites filters satellites by NORAD ID and/or name.
// If both noradID and name are zero/empty, returns all satellites.
// Name filtering is case-insensitive exact match.
func FilterSatellites(satellites []*types.Satellite, noradID int, name string) []*types.Satellite {
	if noradID == 0 && name == "" {
		return satellites
	}

	filtered := make([]*types.Satellite, 0)
	nameLower := strings.ToLower(name)

	for _, sat := range satellites {
		if noradID > 0 && sat.NoradID != noradID {
			continue
		}

		if name != "" && strings.ToLower(sat.Name) != nameLower {
			continue
		}

		filtered = append(filtered, sat)
	}

	return filtered
}

// SearchSatellites performs multi-criteria search on satellites.
// All criteria are optional - empty strings are ignored.
// Name, owner, and type use partial matching (case-insensitive).
// Regime uses exact matching (case-insensitive).
// Results are sorted by NORAD ID.
func SearchSatellites(satellites []*types.Satellite, criteria SearchCriteria) []*types.Satellite {
	results := make([]*types.Satellite, 0)

	nameLower := strings.ToLower(criteria.Name)
	ownerUpper := strings.ToUpper(criteria.Owner)
	typeLower := strings.ToLower(criteria.Type)
	regimeUpper := strings.ToUpper(criteria.Regime)

	for _, sat := range satellites {
		if criteria.Name != "" && !strings.Contains(strings.ToLower(sat.Name), nameLower) {
			continue
		}

		if criteria.Owner != "" && !strings.Contains(strings.ToUpper(sat.Owner), ownerUpper) {
			continue
		}

		if criteria.Type != "" && !strings.Contains(strings.ToLower(sat.ObjectType), typeLower) {
			continue
		}

		if criteria.Regime != "" && strings.ToUpper(sat.OrbitRegime) != regimeUpper {
			continue
		}

		results = append(results, sat)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].NoradID < results[j].NoradID
	})

	return results
}

// FindVisibleSatellites finds satellites currently visible from the observer's location.
// Applies search criteria first, then filters by elevation bounds.
// Returns satellites with their observation angles, sorted by elevation (highest first).
func FindVisibleSatellites(
	satellites []*types.Satellite,
	observer *ObserverPosition,
	t time.Time,
	criteria VisibilityCriteria,
) ([]*VisibleSatellite, error) {
	candidates := SearchSatellites(satellites, criteria.SearchCriteria)

	visible := make([]*VisibleSatellite, 0)

	for _, sat := range candidates {
		if sat.TLE == nil {
			continue
		}

		pos, vel, err := PropagateSatellite(sat.TLE, t)
		if err != nil {
			continue
		}

		angles := CalculateObservationAngles(t, pos, vel, observer)

		if angles.Elevation >= criteria.MinElevation &&
			angles.Elevation <= criteria.MaxElevation {
			visible = append(visible, &VisibleSatellite{
				Satellite: sat,
				Angles:    angles,
			})
		}
	}

	sort.Slice(visible, func(i, j int) bool {
		return visible[i].Angles.Elevation > visible[j].Angles.Elevation
	})

	return visible, nil
}

package satellite

import (
	"testing"
	"time"

	"github.com/dzeleniak/orbitpipe/internal/types"
)

const (
	issLine1 = "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927"
	issLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"
)

func TestDetermineOrbitRegimeLEO(t *testing.T) {
	// ISS-like: ~400km circular, ~92min period, ~51deg inclination.
	if got := DetermineOrbitRegime(420, 400, 92.7, 51.6); got != RegimeLEO {
		t.Errorf("DetermineOrbitRegime = %v, want %v", got, RegimeLEO)
	}
}

func TestDetermineOrbitRegimeGEO(t *testing.T) {
	if got := DetermineOrbitRegime(35786, 35786, 1436, 0.1); got != RegimeGEO {
		t.Errorf("DetermineOrbitRegime = %v, want %v", got, RegimeGEO)
	}
}

func TestDetermineOrbitRegimeMEO(t *testing.T) {
	if got := DetermineOrbitRegime(20200, 20180, 717, 55); got != RegimeMEO {
		t.Errorf("DetermineOrbitRegime = %v, want %v", got, RegimeMEO)
	}
}

func TestDetermineOrbitRegimeHEO(t *testing.T) {
	// Highly eccentric Molniya-style orbit.
	if got := DetermineOrbitRegime(39000, 600, 718, 63.4); got != RegimeHEO {
		t.Errorf("DetermineOrbitRegime = %v, want %v", got, RegimeHEO)
	}
}

func TestDetermineOrbitRegimeUnknownOnMissingData(t *testing.T) {
	if got := DetermineOrbitRegime(0, 0, 0, 0); got != RegimeUnknown {
		t.Errorf("DetermineOrbitRegime = %v, want %v", got, RegimeUnknown)
	}
}

func TestPropagateSatelliteAndObserve(t *testing.T) {
	tle := &types.TLE{Line1: issLine1, Line2: issLine2}
	epoch := time.Date(2008, 9, 20, 12, 25, 40, 0, time.UTC)

	pos, vel, err := PropagateSatellite(tle, epoch)
	if err != nil {
		t.Fatalf("PropagateSatellite returned error: %v", err)
	}

	observer := &ObserverPosition{Latitude: 28.5, Longitude: -80.6, Altitude: 0}
	angles := CalculateObservationAngles(epoch, pos, vel, observer)

	if angles.Range <= 0 {
		t.Errorf("Range = %v, want > 0", angles.Range)
	}
	if angles.Elevation < -90 || angles.Elevation > 90 {
		t.Errorf("Elevation = %v, out of [-90, 90]", angles.Elevation)
	}
	if angles.Azimuth < 0 || angles.Azimuth >= 360 {
		t.Errorf("Azimuth = %v, out of [0, 360)", angles.Azimuth)
	}
}

func TestPropagateSatelliteNilTLE(t *testing.T) {
	if _, _, err := PropagateSatellite(nil, time.Now()); err == nil {
		t.Fatal("expected error for nil TLE")
	}
}

func TestMergeSatelliteDataJoinsOnNoradID(t *testing.T) {
	tles := []types.TLE{{Line1: issLine1, Line2: issLine2}}
	satcats := []types.SATCAT{{
		NoradID: 25544, Name: "ISS (ZARYA)", Owner: "ISS",
		ObjectType: "PAYLOAD", Period: 92.7, Inclination: 51.6,
		Apogee: 420, Perigee: 400,
	}}

	merged := MergeSatelliteData(tles, satcats)
	if len(merged) != 1 {
		t.Fatalf("len(merged) = %d, want 1", len(merged))
	}
	sat := merged[0]
	if sat.Name != "ISS (ZARYA)" {
		t.Errorf("Name = %q, want ISS (ZARYA)", sat.Name)
	}
	if sat.OrbitRegime != string(RegimeLEO) {
		t.Errorf("OrbitRegime = %q, want %q", sat.OrbitRegime, RegimeLEO)
	}
	if sat.TLE == nil || sat.TLE.Line1 != issLine1 {
		t.Error("merged satellite did not retain its TLE")
	}
}

func TestMergeSatelliteDataTLEWithoutSATCATIsUnknownRegime(t *testing.T) {
	tles := []types.TLE{{Line1: issLine1, Line2: issLine2}}
	merged := MergeSatelliteData(tles, nil)
	if len(merged) != 1 {
		t.Fatalf("len(merged) = %d, want 1", len(merged))
	}
	if merged[0].OrbitRegime != string(RegimeUnknown) {
		t.Errorf("OrbitRegime = %q, want %q", merged[0].OrbitRegime, RegimeUnknown)
	}
}

func TestSearchSatellitesFiltersByNameAndRegime(t *testing.T) {
	satellites := []*types.Satellite{
		{NoradID: 1, Name: "Starlink-1", Owner: "US", ObjectType: "PAYLOAD", OrbitRegime: "LEO"},
		{NoradID: 2, Name: "Starlink-2", Owner: "US", ObjectType: "PAYLOAD", OrbitRegime: "LEO"},
		{NoradID: 3, Name: "Intelsat-1", Owner: "INTL", ObjectType: "PAYLOAD", OrbitRegime: "GEO"},
	}

	results := SearchSatellites(satellites, SearchCriteria{Name: "starlink"})
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	results = SearchSatellites(satellites, SearchCriteria{Regime: "geo"})
	if len(results) != 1 || results[0].NoradID != 3 {
		t.Fatalf("regime filter returned %+v, want only NORAD 3", results)
	}

	if results[0].NoradID < 0 {
		t.Fatal("unreachable: sanity check on results slice")
	}
}

func TestSearchSatellitesSortedByNoradID(t *testing.T) {
	satellites := []*types.Satellite{
		{NoradID: 30, Name: "B"},
		{NoradID: 10, Name: "A"},
		{NoradID: 20, Name: "C"},
	}
	results := SearchSatellites(satellites, SearchCriteria{})
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].NoradID > results[i].NoradID {
			t.Fatalf("results not sorted by NORAD ID: %+v", results)
		}
	}
}

func TestFilterSatellitesByNoradIDAndName(t *testing.T) {
	satellites := []*types.Satellite{
		{NoradID: 1, Name: "Alpha"},
		{NoradID: 2, Name: "Beta"},
	}

	if got := FilterSatellites(satellites, 0, ""); len(got) != 2 {
		t.Fatalf("no filter: len = %d, want 2", len(got))
	}
	if got := FilterSatellites(satellites, 2, ""); len(got) != 1 || got[0].Name != "Beta" {
		t.Fatalf("norad filter returned %+v", got)
	}
	if got := FilterSatellites(satellites, 0, "alpha"); len(got) != 1 || got[0].NoradID != 1 {
		t.Fatalf("name filter returned %+v", got)
	}
}

func TestFindVisibleSatellitesSkipsSatellitesWithoutTLE(t *testing.T) {
	satellites := []*types.Satellite{
		{NoradID: 1, Name: "NoTLE", TLE: nil},
	}
	observer := &ObserverPosition{Latitude: 28.5, Longitude: -80.6, Altitude: 0}

	visible, err := FindVisibleSatellites(satellites, observer, time.Now(), VisibilityCriteria{
		MinElevation: -90, MaxElevation: 90,
	})
	if err != nil {
		t.Fatalf("FindVisibleSatellites returned error: %v", err)
	}
	if len(visible) != 0 {
		t.Errorf("len(visible) = %d, want 0 for a satellite with no TLE", len(visible))
	}
}

func TestFindVisibleSatellitesAppliesElevationBounds(t *testing.T) {
	satellites := []*types.Satellite{
		{NoradID: 25544, Name: "ISS (ZARYA)", TLE: &types.TLE{Line1: issLine1, Line2: issLine2}},
	}
	observer := &ObserverPosition{Latitude: 28.5, Longitude: -80.6, Altitude: 0}
	epoch := time.Date(2008, 9, 20, 12, 25, 40, 0, time.UTC)

	visible, err := FindVisibleSatellites(satellites, observer, epoch, VisibilityCriteria{
		MinElevation: 91, MaxElevation: 180,
	})
	if err != nil {
		t.Fatalf("FindVisibleSatellites returned error: %v", err)
	}
	if len(visible) != 0 {
		t.Errorf("len(visible) = %d, want 0 when min elevation is unreachable", len(visible))
	}
}

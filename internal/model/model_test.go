package model

import "testing"

func TestSatIDPrefersName(t *testing.T) {
	r := TLERecord{NoradID: 25544, Name: "ISS (ZARYA)"}
	if got := r.SatID(); got != "ISS (ZARYA)" {
		t.Errorf("SatID() = %q, want %q", got, "ISS (ZARYA)")
	}
}

func TestSatIDFallsBackToNoradID(t *testing.T) {
	r := TLERecord{NoradID: 44713}
	if got := r.SatID(); got != "44713" {
		t.Errorf("SatID() = %q, want %q", got, "44713")
	}
}

func TestSatIDFallbackIsNumericForSmallIDs(t *testing.T) {
	// A naive string(rune(n)) conversion would render small NORAD IDs as
	// unprintable control characters instead of their decimal digits.
	r := TLERecord{NoradID: 7}
	if got := r.SatID(); got != "7" {
		t.Errorf("SatID() = %q, want %q", got, "7")
	}
}

func TestVisibilityGatesVisibleRequiresAllGates(t *testing.T) {
	g := VisibilityGates{ElevationOK: true, RangeOK: true, GeographicOK: false}
	if g.Visible() {
		t.Error("Visible() = true, want false when geographic gate fails")
	}
	g.GeographicOK = true
	if !g.Visible() {
		t.Error("Visible() = false, want true when all gates pass")
	}
}

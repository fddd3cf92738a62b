// Package types holds the catalog-browsing data model: raw TLE/SATCAT
// entries as fetched from a catalog provider, and the Satellite view that
// merges the two. The pipeline's own data model (TLERecord, snapshots,
// windows, events) lives in internal/model.
package types

import (
	"strconv"
	"strings"
	"time"
)

// TLE represents a Two-Line Element set entry (two lines of text)
type TLE struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

// GetNoradID parses the NORAD catalog number out of TLE line 1, columns
// 3-7 (1-indexed). Returns 0 if the line is too short or not numeric.
func (t TLE) GetNoradID() int {
	if len(t.Line1) < 7 {
		return 0
	}
	id, err := strconv.Atoi(strings.TrimSpace(t.Line1[2:7]))
	if err != nil {
		return 0
	}
	return id
}

// SATCAT represents a Satellite Catalog entry
type SATCAT struct {
	ID          string  `json:"id"`
	IntlID      string  `json:"intlId"`
	Name        string  `json:"name"`
	NoradID     int     `json:"noradId"`
	LaunchDate  string  `json:"launchDate"`
	DecayDate   string  `json:"decayDate"`
	ObjectType  string  `json:"objectType"`
	Owner       string  `json:"owner"`
	LaunchSite  string  `json:"launchSite"`
	Period      float64 `json:"period"`
	Inclination float64 `json:"inclination"`
	Apogee      float64 `json:"apogee"`
	Perigee     float64 `json:"perigee"`
	RCSSize     string  `json:"rcsSize"`
}

// Satellite merges a TLE with its SATCAT metadata, keyed by NORAD ID.
type Satellite struct {
	NoradID     int     `json:"noradId"`
	Name        string  `json:"name"`
	IntlID      string  `json:"intlId"`
	ObjectType  string  `json:"objectType"`
	Owner       string  `json:"owner"`
	LaunchDate  string  `json:"launchDate"`
	DecayDate   string  `json:"decayDate"`
	LaunchSite  string  `json:"launchSite"`
	Period      float64 `json:"period"`
	Inclination float64 `json:"inclination"`
	Apogee      float64 `json:"apogee"`
	Perigee     float64 `json:"perigee"`
	RCSSize     string  `json:"rcsSize"`
	OrbitRegime string  `json:"orbitRegime"`

	TLE    *TLE    `json:"tle,omitempty"`
	SATCAT *SATCAT `json:"satcat,omitempty"`
}

// Catalog represents the stored satellite catalog data
type Catalog struct {
	Satellites []*Satellite `json:"satellites"`
	TLEs       []TLE        `json:"tles"`
	SATCATs    []SATCAT     `json:"satcats"`
	FetchedAt  time.Time    `json:"fetched_at"`
}

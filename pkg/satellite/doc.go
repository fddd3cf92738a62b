// Package satellite provides satellite catalog search and orbital
// classification for the catalog-browsing CLI.
//
// It merges TLE (Two-Line Element) and SATCAT (Satellite Catalog) data
// fetched separately (see internal/httpcatalog) into a searchable set of
// satellites, classifies each into an orbital regime, and resolves
// look angles against a ground observer using pkg/propagator and
// pkg/geometry.
//
// # Basic Usage
//
// Merge fetched TLE/SATCAT data and search it:
//
//	satellites := satellite.MergeSatelliteData(tles, satcats)
//
//	results := satellite.SearchSatellites(satellites, satellite.SearchCriteria{
//	    Name:   "starlink",
//	    Type:   "payload",
//	    Regime: "LEO",
//	})
//
// Propagate satellite position and resolve observation angles:
//
//	observer := &satellite.ObserverPosition{
//	    Latitude:  40.7128, // New York City
//	    Longitude: -74.0060,
//	    Altitude:  10.0, // meters
//	}
//
//	if len(results) > 0 && results[0].TLE != nil {
//	    pos, vel, err := satellite.PropagateSatellite(results[0].TLE, time.Now())
//	    if err == nil {
//	        angles := satellite.CalculateObservationAngles(time.Now(), pos, vel, observer)
//	        fmt.Printf("Azimuth: %.2f°, Elevation: %.2f°\n", angles.Azimuth, angles.Elevation)
//	    }
//	}
//
// Find visible satellites:
//
//	visible, err := satellite.FindVisibleSatellites(
//	    satellites,
//	    observer,
//	    time.Now(),
//	    satellite.VisibilityCriteria{
//	        MinElevation: 10.0, // Above 10° elevation
//	        MaxElevation: 90.0,
//	    },
//	)
package satellite

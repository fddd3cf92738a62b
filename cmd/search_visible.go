package cmd

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dzeleniak/orbitpipe/internal/storage"
	"github.com/dzeleniak/orbitpipe/pkg/satellite"
	"github.com/spf13/cobra"
)

var (
	visibleName         string
	visibleOwner        string
	visibleType         string
	visibleRegime       string
	visibleMinElevation float64
	visibleMaxElevation float64
	visibleLimit        int
	visibleVerbose      bool
)

var visibleCmd = &cobra.Command{
	Use:   "visible",
	Short: "Search for satellites currently visible from observer location",
	Long: `Search for satellites currently overhead based on observer location from config.
Propagates satellites to current time and checks if they are visible (above minimum elevation).
Supports all standard search filters (name, owner, type, regime) plus elevation constraints.`,
	Run: func(cmd *cobra.Command, args []string) {
		runSearchVisible()
	},
}

func init() {
	searchCmd.AddCommand(visibleCmd)
	visibleCmd.Flags().StringVarP(&visibleName, "name", "n", "", "Search by satellite name (partial match, case-insensitive)")
	visibleCmd.Flags().StringVarP(&visibleOwner, "owner", "o", "", "Filter by owner/country code")
	visibleCmd.Flags().StringVarP(&visibleType, "type", "t", "", "Filter by object type (PAYLOAD, ROCKET BODY, DEBRIS)")
	visibleCmd.Flags().StringVarP(&visibleRegime, "regime", "r", "", "Filter by orbital regime (LEO, MEO, GEO, HEO)")
	visibleCmd.Flags().Float64Var(&visibleMinElevation, "min-elevation", 10.0, "Minimum elevation angle in degrees")
	visibleCmd.Flags().Float64Var(&visibleMaxElevation, "max-elevation", 90.0, "Maximum elevation angle in degrees")
	visibleCmd.Flags().IntVarP(&visibleLimit, "limit", "l", 0, "Maximum number of results to display (0 = no limit)")
	visibleCmd.Flags().BoolVarP(&visibleVerbose, "verbose", "v", false, "Display verbose satellite information")
}

func runSearchVisible() {
	if config.ObserverLatitude == 0.0 && config.ObserverLongitude == 0.0 {
		fmt.Println("Observer location not configured.")
		fmt.Println("Please set observer_latitude, observer_longitude, and observer_altitude in ~/.icu/config.yaml")
		return
	}

	observer := &satellite.ObserverPosition{
		Latitude:  config.ObserverLatitude,
		Longitude: config.ObserverLongitude,
		Altitude:  config.ObserverAltitude,
	}

	store, err := storage.NewStorage(config.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	catalog, err := store.Load()
	if err != nil {
		log.Fatalf("Error loading catalog: %v", err)
	}

	if catalog == nil {
		fmt.Println("No catalog found. Run 'icu fetch' to download data.")
		return
	}

	now := time.Now()

	visible, err := satellite.FindVisibleSatellites(catalog.Satellites, observer, now, satellite.VisibilityCriteria{
		SearchCriteria: satellite.SearchCriteria{
			Name:   visibleName,
			Owner:  visibleOwner,
			Type:   visibleType,
			Regime: visibleRegime,
		},
		MinElevation: visibleMinElevation,
		MaxElevation: visibleMaxElevation,
	})
	if err != nil {
		log.Fatalf("Error finding visible satellites: %v", err)
	}

	if len(visible) == 0 {
		fmt.Printf("\nNo satellites currently visible (elevation between %.1f° and %.1f°).\n",
			visibleMinElevation, visibleMaxElevation)
		return
	}

	displayCount := len(visible)
	if visibleLimit > 0 && displayCount > visibleLimit {
		displayCount = visibleLimit
	}

	fmt.Printf("\nFound %d visible satellites", len(visible))
	if visibleLimit > 0 && len(visible) > visibleLimit {
		fmt.Printf(" (showing first %d)", visibleLimit)
	}
	fmt.Printf("\nObserver: %.4f°N, %.4f°E, %.0fm\n", observer.Latitude, observer.Longitude, observer.Altitude)
	fmt.Printf("Time: %s\n\n", now.Format("2006-01-02 15:04:05 MST"))

	if visibleVerbose {
		displayVisibleSatellitesVerbose(visible[:displayCount])
	} else {
		displayVisibleSatellitesList(visible[:displayCount])
	}

	if visibleLimit > 0 && len(visible) > visibleLimit {
		fmt.Printf("\n... %d more visible satellites. Use --limit to show more.\n", len(visible)-visibleLimit)
	}
}

func displayVisibleSatellitesList(visible []*satellite.VisibleSatellite) {
	fmt.Printf("%-8s  %-40s  %-7s  %-7s  %-11s\n", "NORAD", "Name", "El (°)", "Az (°)", "Range (km)")
	fmt.Println(strings.Repeat("-", 80))

	for _, v := range visible {
		fmt.Printf("%-8d  %-40s  %7.2f  %7.2f  %11.0f\n",
			v.Satellite.NoradID,
			v.Satellite.Name,
			v.Angles.Elevation,
			v.Angles.Azimuth,
			v.Angles.Range)
	}
}

func displayVisibleSatellitesVerbose(visible []*satellite.VisibleSatellite) {
	for i, v := range visible {
		if i > 0 {
			fmt.Println("\n" + strings.Repeat("-", 60))
		}

		sat := v.Satellite
		fmt.Printf("Name:           %s\n", sat.Name)
		fmt.Printf("NORAD ID:       %d\n", sat.NoradID)
		fmt.Printf("Type:           %s\n", sat.ObjectType)
		fmt.Printf("Owner:          %s\n", sat.Owner)
		fmt.Printf("Orbit Regime:   %s\n", sat.OrbitRegime)

		fmt.Printf("\nCurrent Position:\n")
		fmt.Printf("  Elevation:    %.2f°\n", v.Angles.Elevation)
		fmt.Printf("  Azimuth:      %.2f°\n", v.Angles.Azimuth)
		fmt.Printf("  Range:        %.0f km\n", v.Angles.Range)
		fmt.Printf("  Range Rate:   %.2f km/s\n", v.Angles.RangeRate)

		fmt.Printf("\nOrbital Parameters:\n")
		fmt.Printf("  Period:       %.2f minutes\n", sat.Period)
		fmt.Printf("  Inclination:  %.2f°\n", sat.Inclination)
		fmt.Printf("  Apogee:       %.0f km\n", sat.Apogee)
		fmt.Printf("  Perigee:      %.0f km\n", sat.Perigee)
	}
}

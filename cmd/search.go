package cmd

import (
	"fmt"
	"log"

	"github.com/dzeleniak/orbitpipe/internal/storage"
	"github.com/dzeleniak/orbitpipe/internal/types"
	"github.com/dzeleniak/orbitpipe/pkg/satellite"
	"github.com/spf13/cobra"
)

var (
	searchName    string
	searchOwner   string
	searchType    string
	searchRegime  string
	searchLimit   int
	searchVerbose bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search for satellites by name or other criteria",
	Long: `Search the satellite catalog using partial name matching and filters.
Returns a list of matching satellites with their NORAD IDs.`,
	Run: func(cmd *cobra.Command, args []string) {
		runSearch()
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchName, "name", "n", "", "Search by satellite name (partial match, case-insensitive)")
	searchCmd.Flags().StringVarP(&searchOwner, "owner", "o", "", "Filter by owner/country code")
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "", "Filter by object type (PAYLOAD, ROCKET BODY, DEBRIS)")
	searchCmd.Flags().StringVarP(&searchRegime, "regime", "r", "", "Filter by orbital regime (LEO, MEO, GEO, HEO)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "Maximum number of results to display (0 = no limit)")
	searchCmd.Flags().BoolVarP(&searchVerbose, "verbose", "v", false, "Display verbose satellite information")
}

func runSearch() {
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

	results := satellite.SearchSatellites(catalog.Satellites, satellite.SearchCriteria{
		Name:   searchName,
		Owner:  searchOwner,
		Type:   searchType,
		Regime: searchRegime,
	})

	if len(results) == 0 {
		fmt.Println("No satellites found matching the criteria.")
		return
	}

	displayCount := len(results)
	if searchLimit > 0 && displayCount > searchLimit {
		displayCount = searchLimit
	}

	fmt.Printf("Found %d satellites", len(results))
	if searchLimit > 0 && len(results) > searchLimit {
		fmt.Printf(" (showing first %d)", searchLimit)
	}
	fmt.Println("\n")

	if searchVerbose {
		displaySatellites(results[:displayCount])
	} else {
		for i := 0; i < displayCount; i++ {
			sat := results[i]
			fmt.Printf("%-8d  %s\n", sat.NoradID, sat.Name)
		}
	}

	if searchLimit > 0 && len(results) > searchLimit {
		fmt.Printf("\n... %d more results. Use --limit to show more.\n", len(results)-searchLimit)
	}
}

// displaySatellites prints full catalog metadata for each satellite,
// one block per entry.
func displaySatellites(satellites []*types.Satellite) {
	for i, sat := range satellites {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("Name:           %s\n", sat.Name)
		fmt.Printf("NORAD ID:       %d\n", sat.NoradID)
		if sat.IntlID != "" {
			fmt.Printf("International:  %s\n", sat.IntlID)
		}
		if sat.ObjectType != "" {
			fmt.Printf("Type:           %s\n", sat.ObjectType)
		}
		if sat.Owner != "" {
			fmt.Printf("Owner:          %s\n", sat.Owner)
		}
		if sat.OrbitRegime != "" {
			fmt.Printf("Orbit Regime:   %s\n", sat.OrbitRegime)
		}
		if sat.LaunchDate != "" {
			fmt.Printf("Launch Date:    %s\n", sat.LaunchDate)
		}
		if sat.DecayDate != "" {
			fmt.Printf("Decay Date:     %s\n", sat.DecayDate)
		}
		if sat.LaunchSite != "" {
			fmt.Printf("Launch Site:    %s\n", sat.LaunchSite)
		}
		if sat.Period > 0 || sat.Inclination > 0 || sat.Apogee > 0 || sat.Perigee > 0 {
			fmt.Printf("\nOrbital Parameters:\n")
			if sat.Period > 0 {
				fmt.Printf("  Period:       %.2f minutes\n", sat.Period)
			}
			if sat.Inclination > 0 {
				fmt.Printf("  Inclination:  %.2f°\n", sat.Inclination)
			}
			if sat.Apogee > 0 {
				fmt.Printf("  Apogee:       %.0f km\n", sat.Apogee)
			}
			if sat.Perigee > 0 {
				fmt.Printf("  Perigee:      %.0f km\n", sat.Perigee)
			}
			if sat.RCSSize != "" {
				fmt.Printf("  RCS Size:     %s\n", sat.RCSSize)
			}
		}
	}
}

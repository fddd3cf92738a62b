package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dzeleniak/orbitpipe/internal/config"
	"github.com/dzeleniak/orbitpipe/internal/metrics"
	"github.com/dzeleniak/orbitpipe/internal/pipeerr"
	"github.com/dzeleniak/orbitpipe/internal/pipeline"
	"github.com/dzeleniak/orbitpipe/pkg/geometry"
	"github.com/spf13/cobra"
)

var (
	runConfigPath  string
	runInputPath   string
	runOutputDir   string
	runMetricsAddr string
	runObsLatDeg   float64
	runObsLonDeg   float64
	runObsAltKm    float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the orbit processing pipeline end to end",
	Long: `Run sequences propagation, visibility filtering, feasibility
scoring, 3GPP event detection, satellite-pool verification, AHP
handover evaluation, and RL training-dataset generation over the input
TLE set, writing per-stage artifacts and validation snapshots to
--output-dir. A failed validation gate halts the run and the process
exits with the error kind's mapped exit code; the pipeline never falls
back to simulated data.`,
	Run: func(cmd *cobra.Command, args []string) {
		runPipeline()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "pipeline config file (YAML); defaults built in if omitted")
	runCmd.Flags().StringVar(&runInputPath, "input", "", "input artifact path (required)")
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "./output", "directory for stage artifacts and validation snapshots")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on, e.g. :9090 (disabled if empty)")
	runCmd.Flags().Float64Var(&runObsLatDeg, "observer-lat", 0.0, "observer latitude in degrees")
	runCmd.Flags().Float64Var(&runObsLonDeg, "observer-lon", 0.0, "observer longitude in degrees")
	runCmd.Flags().Float64Var(&runObsAltKm, "observer-alt-km", 0.0, "observer altitude in km above sea level")
	runCmd.MarkFlagRequired("input")
}

func runPipeline() {
	cfg, err := config.Load(runConfigPath)
	if err != nil {
		log.Fatalf("failed to load pipeline config: %v", err)
	}

	observer := geometry.ObserverPosition{
		LatitudeDeg:  runObsLatDeg,
		LongitudeDeg: runObsLonDeg,
		AltitudeKm:   runObsAltKm,
	}

	var reg *metrics.Registry
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if runMetricsAddr != "" {
		reg = metrics.New()
		go func() {
			if err := reg.Serve(ctx, runMetricsAddr); err != nil {
				fmt.Fprintf(os.Stderr, "metrics server stopped: %v\n", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	orch := pipeline.New(cfg, observer, runOutputDir, time.Now(), reg)

	result, err := orch.Run(ctx, runInputPath)
	if err != nil {
		if pe, ok := err.(*pipeerr.Error); ok {
			os.Stderr.Write(pe.JSON())
			os.Stderr.Write([]byte("\n"))
			os.Exit(pe.ErrorKind.ExitCode())
		}
		log.Fatalf("pipeline run failed: %v", err)
	}

	summary := struct {
		FeasibleCount int           `json:"feasible_count"`
		EventCount    int           `json:"event_count"`
		DecisionCount int           `json:"decision_count"`
		TotalDuration time.Duration `json:"total_duration"`
		ArtifactPaths []string      `json:"artifact_paths"`
	}{
		FeasibleCount: result.FeasibleCount,
		EventCount:    len(result.Events),
		DecisionCount: len(result.Decisions),
		TotalDuration: result.Stats.TotalDuration(),
		ArtifactPaths: result.ArtifactPaths,
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal run summary: %v", err)
	}
	fmt.Println(string(out))
}

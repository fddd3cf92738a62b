// Package config loads the orbit-processing pipeline's configuration
// via Viper, generalizing the catalog CLI's cmd.Config pattern
// (cmd/config.go) to every recognised key: sampling interval,
// per-constellation elevation/range gates, AHP weights, 3GPP event
// thresholds, pool targets, and coverage thresholds.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ElevationThresholds holds per-constellation minimum elevation gates
// (degrees), the visibility filter's first gate.
type ElevationThresholds struct {
	StarlinkDeg float64 `mapstructure:"starlink_deg"`
	OneWebDeg   float64 `mapstructure:"oneweb_deg"`
	DefaultDeg  float64 `mapstructure:"default_deg"`
}

// RangeBoundsKm is the visibility filter's range gate envelope.
type RangeBoundsKm struct {
	MinKm float64 `mapstructure:"min_km"`
	MaxKm float64 `mapstructure:"max_km"`
}

// AHPWeights are the handover evaluator's Saaty weights; their sum
// must equal 1.0.
type AHPWeights struct {
	Signal    float64 `mapstructure:"signal"`
	Geometry  float64 `mapstructure:"geometry"`
	Stability float64 `mapstructure:"stability"`
}

// Sum returns the three weights summed, for the invariant check.
func (w AHPWeights) Sum() float64 { return w.Signal + w.Geometry + w.Stability }

// EventThresholds are the 3GPP trigger constants.
type EventThresholds struct {
	A4ThresholdDBm   float64 `mapstructure:"a4_dbm"`
	A5Threshold1DBm  float64 `mapstructure:"a5_t1_dbm"`
	A5Threshold2DBm  float64 `mapstructure:"a5_t2_dbm"`
	D2Threshold1Km   float64 `mapstructure:"d2_t1_km"`
	D2Threshold2Km   float64 `mapstructure:"d2_t2_km"`
	HysteresisDB     float64 `mapstructure:"hys_db"`
	HysteresisKm     float64 `mapstructure:"hys_km"`
	TimeToTriggerMs  int64   `mapstructure:"ttt_ms"`
}

// PoolTarget is the [min,max] simultaneously-connectable target for one
// constellation.
type PoolTarget struct {
	Min int `mapstructure:"min"`
	Max int `mapstructure:"max"`
}

// PoolTargets groups the per-constellation PoolTarget pairs.
type PoolTargets struct {
	Starlink PoolTarget `mapstructure:"starlink"`
	OneWeb   PoolTarget `mapstructure:"oneweb"`
}

// CoverageThresholds are the minimum pool-coverage ratios per
// constellation.
type CoverageThresholds struct {
	Starlink float64 `mapstructure:"starlink"`
	OneWeb   float64 `mapstructure:"oneweb"`
}

// GeographicBounds restricts the visibility filter's geographic gate;
// zero value (all zero) means "whole globe".
type GeographicBounds struct {
	MinLatDeg float64 `mapstructure:"min_lat_deg"`
	MaxLatDeg float64 `mapstructure:"max_lat_deg"`
	MinLonDeg float64 `mapstructure:"min_lon_deg"`
	MaxLonDeg float64 `mapstructure:"max_lon_deg"`
}

// Contains reports whether (latDeg, lonDeg) falls within b. The zero
// value of GeographicBounds is treated as "whole globe" by the caller,
// not here.
func (b GeographicBounds) Contains(latDeg, lonDeg float64) bool {
	return latDeg >= b.MinLatDeg && latDeg <= b.MaxLatDeg &&
		lonDeg >= b.MinLonDeg && lonDeg <= b.MaxLonDeg
}

// Config is the full pipeline configuration.
type Config struct {
	SamplingIntervalS        int                 `mapstructure:"sampling_interval_s"`
	ElevationThresholds      ElevationThresholds `mapstructure:"elevation_thresholds"`
	RangeBoundsKm            RangeBoundsKm       `mapstructure:"range_bounds_km"`
	GeographicBounds         GeographicBounds    `mapstructure:"geographic_bounds"`
	MinServiceWindowMinutes  float64             `mapstructure:"min_service_window_minutes"`
	MinFeasibilityScore      float64             `mapstructure:"min_feasibility_score"`
	AHPWeights               AHPWeights          `mapstructure:"ahp_weights"`
	EventThresholds          EventThresholds     `mapstructure:"event_thresholds"`
	PoolTargets              PoolTargets         `mapstructure:"pool_targets"`
	CoverageThresholds       CoverageThresholds  `mapstructure:"coverage_thresholds"`
	Workers                  int                 `mapstructure:"workers"`
	ObservationWindowMinutes int                 `mapstructure:"observation_window_minutes"`
}

// SamplingInterval is SamplingIntervalS as a time.Duration.
func (c Config) SamplingInterval() time.Duration {
	return time.Duration(c.SamplingIntervalS) * time.Second
}

// Default builds the documented default configuration.
func Default() Config {
	return Config{
		SamplingIntervalS: 30,
		ElevationThresholds: ElevationThresholds{
			StarlinkDeg: 5.0,
			OneWebDeg:   10.0,
			DefaultDeg:  10.0,
		},
		RangeBoundsKm:           RangeBoundsKm{MinKm: 200, MaxKm: 2000},
		GeographicBounds:        GeographicBounds{MinLatDeg: -90, MaxLatDeg: 90, MinLonDeg: -180, MaxLonDeg: 180},
		MinServiceWindowMinutes: 2.0,
		MinFeasibilityScore:     0.6,
		AHPWeights:              AHPWeights{Signal: 0.5, Geometry: 0.3, Stability: 0.2},
		EventThresholds: EventThresholds{
			A4ThresholdDBm:  -100,
			A5Threshold1DBm: -110,
			A5Threshold2DBm: -95,
			D2Threshold1Km:  2000,
			D2Threshold2Km:  1500,
			HysteresisDB:    2,
			HysteresisKm:    50,
			TimeToTriggerMs: 640,
		},
		PoolTargets: PoolTargets{
			Starlink: PoolTarget{Min: 10, Max: 0},
			OneWeb:   PoolTarget{Min: 3, Max: 0},
		},
		CoverageThresholds:       CoverageThresholds{Starlink: 0.95, OneWeb: 0.85},
		Workers:                  0, // 0 means min(8, NumCPU); resolved by internal/batch
		ObservationWindowMinutes: 120,
	}
}

// Load reads configuration from (in order of increasing precedence) the
// built-in defaults, an optional config file at path, and ORBITPIPE_*
// environment variables, mirroring the catalog CLI's Viper usage in
// cmd/config.go.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	}
	v.SetEnvPrefix("orbitpipe")
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("sampling_interval_s", def.SamplingIntervalS)
	v.SetDefault("elevation_thresholds.starlink_deg", def.ElevationThresholds.StarlinkDeg)
	v.SetDefault("elevation_thresholds.oneweb_deg", def.ElevationThresholds.OneWebDeg)
	v.SetDefault("elevation_thresholds.default_deg", def.ElevationThresholds.DefaultDeg)
	v.SetDefault("range_bounds_km.min_km", def.RangeBoundsKm.MinKm)
	v.SetDefault("range_bounds_km.max_km", def.RangeBoundsKm.MaxKm)
	v.SetDefault("geographic_bounds.min_lat_deg", def.GeographicBounds.MinLatDeg)
	v.SetDefault("geographic_bounds.max_lat_deg", def.GeographicBounds.MaxLatDeg)
	v.SetDefault("geographic_bounds.min_lon_deg", def.GeographicBounds.MinLonDeg)
	v.SetDefault("geographic_bounds.max_lon_deg", def.GeographicBounds.MaxLonDeg)
	v.SetDefault("min_service_window_minutes", def.MinServiceWindowMinutes)
	v.SetDefault("min_feasibility_score", def.MinFeasibilityScore)
	v.SetDefault("ahp_weights.signal", def.AHPWeights.Signal)
	v.SetDefault("ahp_weights.geometry", def.AHPWeights.Geometry)
	v.SetDefault("ahp_weights.stability", def.AHPWeights.Stability)
	v.SetDefault("event_thresholds.a4_dbm", def.EventThresholds.A4ThresholdDBm)
	v.SetDefault("event_thresholds.a5_t1_dbm", def.EventThresholds.A5Threshold1DBm)
	v.SetDefault("event_thresholds.a5_t2_dbm", def.EventThresholds.A5Threshold2DBm)
	v.SetDefault("event_thresholds.d2_t1_km", def.EventThresholds.D2Threshold1Km)
	v.SetDefault("event_thresholds.d2_t2_km", def.EventThresholds.D2Threshold2Km)
	v.SetDefault("event_thresholds.hys_db", def.EventThresholds.HysteresisDB)
	v.SetDefault("event_thresholds.hys_km", def.EventThresholds.HysteresisKm)
	v.SetDefault("event_thresholds.ttt_ms", def.EventThresholds.TimeToTriggerMs)
	v.SetDefault("pool_targets.starlink.min", def.PoolTargets.Starlink.Min)
	v.SetDefault("pool_targets.oneweb.min", def.PoolTargets.OneWeb.Min)
	v.SetDefault("coverage_thresholds.starlink", def.CoverageThresholds.Starlink)
	v.SetDefault("coverage_thresholds.oneweb", def.CoverageThresholds.OneWeb)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("observation_window_minutes", def.ObservationWindowMinutes)

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate checks the invariants required of a loaded Config
// (currently: AHP weights summing to 1.0).
func (c Config) Validate() error {
	const tolerance = 1e-9
	sum := c.AHPWeights.Sum()
	if diff := sum - 1.0; diff > tolerance || diff < -tolerance {
		return fmt.Errorf("ahp_weights must sum to 1.0, got %v", sum)
	}
	return nil
}

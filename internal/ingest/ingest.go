// Package ingest loads the Stage-1 input artifact (a TLE catalog
// produced upstream of this pipeline) and enforces the
// academic-standards gate: every TLE record must carry its own
// epoch_datetime, and the metadata must not claim a unified time base.
package ingest

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/dzeleniak/orbitpipe/internal/model"
	"github.com/dzeleniak/orbitpipe/internal/pipeerr"
)

// rawTLE mirrors the on-disk tle_data entry shape.
type rawTLE struct {
	NoradID       int    `json:"norad_id"`
	Constellation string `json:"constellation"`
	Line1         string `json:"line1"`
	Line2         string `json:"line2"`
	EpochDatetime string `json:"epoch_datetime"`
	Name          string `json:"name"`
}

// rawMetadata mirrors the input artifact's metadata block. The three
// banned fields are decoded as *string so that any string value for
// them, even an empty one, is caught by a nil check; a key that is
// absent or null leaves the pointer nil.
type rawMetadata struct {
	ConstellationConfigs json.RawMessage `json:"constellation_configs"`
	CalculationBaseTime  *string         `json:"calculation_base_time"`
	PrimaryEpochTime     *string         `json:"primary_epoch_time"`
	UnifiedTimeBase      *string         `json:"unified_time_base"`
}

type rawArtifact struct {
	TLEData  []rawTLE    `json:"tle_data"`
	Metadata rawMetadata `json:"metadata"`
}

// Input is the parsed, validated Stage-1 artifact.
type Input struct {
	Records []model.TLERecord
}

// Load reads and validates the input artifact at path.
func Load(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Input{}, pipeerr.Wrap(pipeerr.KindInputMissing, "ingest.Load", "create the Stage-1 input artifact before running this pipeline", err)
		}
		return Input{}, pipeerr.Wrap(pipeerr.KindInputMissing, "ingest.Load", "check file permissions on the input path", err)
	}

	var raw rawArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return Input{}, pipeerr.Wrap(pipeerr.KindInputMalformed, "ingest.Load", "input is not valid JSON matching {tle_data:[...], metadata:{...}}", err)
	}

	if raw.Metadata.CalculationBaseTime != nil || raw.Metadata.PrimaryEpochTime != nil || raw.Metadata.UnifiedTimeBase != nil {
		return Input{}, pipeerr.New(
			pipeerr.KindAcademicComplianceViolation,
			"ingest.Load",
			"metadata declares calculation_base_time/primary_epoch_time/unified_time_base: each satellite must propagate from its own TLE epoch",
			"remove the unified-time-base field from the input artifact's metadata",
		)
	}

	if len(raw.TLEData) == 0 {
		return Input{}, pipeerr.New(pipeerr.KindInputMalformed, "ingest.Load", "tle_data is empty", "provide at least one TLE record")
	}

	records := make([]model.TLERecord, 0, len(raw.TLEData))
	for i, rt := range raw.TLEData {
		if rt.EpochDatetime == "" {
			return Input{}, pipeerr.New(
				pipeerr.KindAcademicComplianceViolation,
				"ingest.Load",
				errors.Errorf("tle_data[%d] is missing epoch_datetime", i).Error(),
				"every TLE record must carry its own epoch_datetime",
			)
		}
		epoch, err := time.Parse(time.RFC3339, rt.EpochDatetime)
		if err != nil {
			return Input{}, pipeerr.Wrap(pipeerr.KindInputMalformed, "ingest.Load", "epoch_datetime must be RFC3339", err)
		}
		if rt.Line1 == "" || rt.Line2 == "" {
			return Input{}, pipeerr.New(pipeerr.KindInputMalformed, "ingest.Load", errors.Errorf("tle_data[%d] missing line1/line2", i).Error(), "supply complete two-line element sets")
		}

		records = append(records, model.TLERecord{
			NoradID:       rt.NoradID,
			Name:          rt.Name,
			Constellation: model.Constellation(normalizeConstellation(rt.Constellation)),
			Line1:         rt.Line1,
			Line2:         rt.Line2,
			EpochDatetime: epoch,
		})
	}

	return Input{Records: records}, nil
}

func normalizeConstellation(tag string) string {
	switch tag {
	case "starlink", "oneweb", "kuiper":
		return tag
	default:
		return string(model.ConstellationUnknown)
	}
}

package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dzeleniak/orbitpipe/internal/pipeerr"
)

func writeArtifact(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "input.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsInputMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	var pe *pipeerr.Error
	if !asPipeErr(err, &pe) {
		t.Fatalf("expected *pipeerr.Error, got %v (%T)", err, err)
	}
	if pe.ErrorKind != pipeerr.KindInputMissing {
		t.Errorf("ErrorKind = %v, want InputMissing", pe.ErrorKind)
	}
}

func TestLoadMalformedJSONReturnsInputMalformed(t *testing.T) {
	path := writeArtifact(t, "{not valid json")
	_, err := Load(path)
	var pe *pipeerr.Error
	if !asPipeErr(err, &pe) {
		t.Fatalf("expected *pipeerr.Error, got %v (%T)", err, err)
	}
	if pe.ErrorKind != pipeerr.KindInputMalformed {
		t.Errorf("ErrorKind = %v, want InputMalformed", pe.ErrorKind)
	}
}

func TestLoadRejectsUnifiedTimeBaseMetadata(t *testing.T) {
	path := writeArtifact(t, `{
		"tle_data": [{"norad_id": 1, "constellation": "starlink", "line1": "a", "line2": "b", "epoch_datetime": "2025-01-01T00:00:00Z"}],
		"metadata": {"unified_time_base": "2025-01-01T00:00:00Z"}
	}`)
	_, err := Load(path)
	var pe *pipeerr.Error
	if !asPipeErr(err, &pe) {
		t.Fatalf("expected *pipeerr.Error, got %v (%T)", err, err)
	}
	if pe.ErrorKind != pipeerr.KindAcademicComplianceViolation {
		t.Errorf("ErrorKind = %v, want AcademicComplianceViolation", pe.ErrorKind)
	}
}

func TestLoadRejectsCalculationBaseTimeMetadata(t *testing.T) {
	path := writeArtifact(t, `{
		"tle_data": [{"norad_id": 1, "constellation": "starlink", "line1": "a", "line2": "b", "epoch_datetime": "2025-01-01T00:00:00Z"}],
		"metadata": {"calculation_base_time": "2025-01-01T00:00:00Z"}
	}`)
	_, err := Load(path)
	var pe *pipeerr.Error
	if !asPipeErr(err, &pe) || pe.ErrorKind != pipeerr.KindAcademicComplianceViolation {
		t.Fatalf("expected AcademicComplianceViolation, got %v", err)
	}
}

func TestLoadRejectsRecordMissingEpochDatetime(t *testing.T) {
	path := writeArtifact(t, `{
		"tle_data": [{"norad_id": 1, "constellation": "starlink", "line1": "a", "line2": "b"}],
		"metadata": {}
	}`)
	_, err := Load(path)
	var pe *pipeerr.Error
	if !asPipeErr(err, &pe) || pe.ErrorKind != pipeerr.KindAcademicComplianceViolation {
		t.Fatalf("expected AcademicComplianceViolation for missing epoch_datetime, got %v", err)
	}
}

func TestLoadRejectsEmptyTLEData(t *testing.T) {
	path := writeArtifact(t, `{"tle_data": [], "metadata": {}}`)
	_, err := Load(path)
	var pe *pipeerr.Error
	if !asPipeErr(err, &pe) || pe.ErrorKind != pipeerr.KindInputMalformed {
		t.Fatalf("expected InputMalformed for empty tle_data, got %v", err)
	}
}

func TestLoadSucceedsAndNormalizesUnknownConstellation(t *testing.T) {
	path := writeArtifact(t, `{
		"tle_data": [
			{"norad_id": 25544, "name": "ISS", "constellation": "starlink", "line1": "a1", "line2": "b1", "epoch_datetime": "2025-01-01T00:00:00Z"},
			{"norad_id": 99999, "constellation": "mystery", "line1": "a2", "line2": "b2", "epoch_datetime": "2025-01-02T00:00:00Z"}
		],
		"metadata": {}
	}`)
	in, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(in.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(in.Records))
	}
	if in.Records[1].Constellation != "unknown" {
		t.Errorf("Records[1].Constellation = %q, want unknown", in.Records[1].Constellation)
	}
}

func asPipeErr(err error, out **pipeerr.Error) bool {
	pe, ok := err.(*pipeerr.Error)
	if ok {
		*out = pe
	}
	return ok
}

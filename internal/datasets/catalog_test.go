package datasets

import (
	"strings"
	"testing"
	"time"
)

func TestList_SortedWithPreviews(t *testing.T) {
	infos := List()
	if len(infos) != 4 {
		t.Fatalf("Expected 4 datasets, got %d", len(infos))
	}

	wantIDs := []string{"airpassengers", "energy_daily", "retail_weekly", "temperature_daily"}
	for i, want := range wantIDs {
		if infos[i].ID != want {
			t.Errorf("Position %d: expected %q, got %q", i, want, infos[i].ID)
		}
	}

	for _, info := range infos {
		if info.Rows < 2 {
			t.Errorf("Dataset %s: implausible row count %d", info.ID, info.Rows)
		}
		if len(info.Sample) != PreviewRows {
			t.Errorf("Dataset %s: expected %d preview rows, got %d", info.ID, PreviewRows, len(info.Sample))
		}
		if info.Freq == "" || info.SeasonLength < 1 || info.RecommendedHorizon < 1 {
			t.Errorf("Dataset %s: incomplete metadata %+v", info.ID, info)
		}
	}
}

func TestLoad_AirPassengers(t *testing.T) {
	tbl, info, err := Load("airpassengers")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tbl.Len() != 144 {
		t.Errorf("Expected 144 monthly rows, got %d", tbl.Len())
	}
	if info.Rows != 144 || info.Freq != "MS" || info.SeasonLength != 12 {
		t.Errorf("Unexpected metadata: %+v", info)
	}

	first := tbl.Points[0]
	if !first.TS.Equal(time.Date(1949, time.January, 1, 0, 0, 0, 0, time.UTC)) || first.Value != 112 {
		t.Errorf("Unexpected first observation: %+v", first)
	}
	last := tbl.Points[tbl.Len()-1]
	if last.Value != 432 {
		t.Errorf("Unexpected last value: %v", last.Value)
	}
}

func TestLoad_SyntheticSeriesAreDeterministic(t *testing.T) {
	a, _, err := Load("energy_daily")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	b, _, err := Load("energy_daily")
	if err != nil {
		t.Fatalf("Second load failed: %v", err)
	}
	if a.Len() != 365 || a.Len() != b.Len() {
		t.Fatalf("Unexpected lengths: %d vs %d", a.Len(), b.Len())
	}
	for i := range a.Points {
		if a.Points[i].Value != b.Points[i].Value {
			t.Fatalf("Row %d differs between loads: %v vs %v", i, a.Points[i].Value, b.Points[i].Value)
		}
	}
}

func TestLoad_UnknownDataset(t *testing.T) {
	_, _, err := Load("nope")
	if err == nil || !strings.Contains(err.Error(), `dataset "nope" was not found`) {
		t.Errorf("Expected not-found error, got: %v", err)
	}
}

func TestLoad_RowCounts(t *testing.T) {
	cases := map[string]int{
		"retail_weekly":     156,
		"temperature_daily": 730,
	}
	for id, want := range cases {
		tbl, _, err := Load(id)
		if err != nil {
			t.Fatalf("Load(%s) failed: %v", id, err)
		}
		if tbl.Len() != want {
			t.Errorf("Dataset %s: expected %d rows, got %d", id, want, tbl.Len())
		}
	}
}

// Package datasets bundles the sample time series shipped with the service:
// the classic AirPassengers series plus deterministic synthetic series for
// energy, retail and temperature demos.
package datasets

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/forecastlab/forecastlab/internal/timeseries"
)

// Info describes a bundled dataset, including a short preview and the
// settings the UI should suggest for it.
type Info struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Description        string              `json:"description"`
	Rows               int                 `json:"rows"`
	Sample             []timeseries.Record `json:"sample"`
	Freq               string              `json:"freq"`
	SeasonLength       int                 `json:"season_length"`
	RecommendedHorizon int                 `json:"recommended_horizon"`
	RecommendedModule  string              `json:"recommended_module,omitempty"`
	RecommendedModels  []string            `json:"recommended_models,omitempty"`
}

// PreviewRows is the number of sample records included in listings
const PreviewRows = 5

type dataset struct {
	info   Info
	loader func() *timeseries.Table
}

var catalog = map[string]dataset{
	"airpassengers": {
		info: Info{
			ID:                 "airpassengers",
			Name:               "AirPassengers (Monthly, 1949-1960)",
			Description:        "Classic airline passengers series with strong trend and yearly seasonality; a good statistical baseline.",
			Freq:               "MS",
			SeasonLength:       12,
			RecommendedHorizon: 12,
			RecommendedModule:  "statistical",
			RecommendedModels:  []string{"auto_arima", "auto_ets"},
		},
		loader: loadAirPassengers,
	},
	"energy_daily": {
		info: Info{
			ID:                 "energy_daily",
			Name:               "Energy Consumption (Daily, 2023)",
			Description:        "Synthetic household energy use with weekday/weekend pattern; solid for quick baselines and lag-feature models.",
			Freq:               "D",
			SeasonLength:       7,
			RecommendedHorizon: 14,
			RecommendedModule:  "statistical",
			RecommendedModels:  []string{"auto_arima"},
		},
		loader: loadEnergyDaily,
	},
	"retail_weekly": {
		info: Info{
			ID:                 "retail_weekly",
			Name:               "Retail Sales (Weekly, 2021-2023)",
			Description:        "Synthetic store sales with holiday lift; useful for seasonal models over longer cycles.",
			Freq:               "W",
			SeasonLength:       52,
			RecommendedHorizon: 8,
			RecommendedModule:  "statistical",
			RecommendedModels:  []string{"auto_arima"},
		},
		loader: loadRetailWeekly,
	},
	"temperature_daily": {
		info: Info{
			ID:                 "temperature_daily",
			Name:               "Temperature (Daily, 2022-2023)",
			Description:        "Smooth daily temperatures with strong yearly seasonality; a friendly candidate for lag-regression and neural models.",
			Freq:               "D",
			SeasonLength:       365,
			RecommendedHorizon: 30,
			RecommendedModule:  "lag_regression",
			RecommendedModels:  []string{"linear", "random_forest"},
		},
		loader: loadTemperature,
	},
}

// List returns metadata with previews for all bundled datasets, sorted by id
func List() []Info {
	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	infos := make([]Info, 0, len(ids))
	for _, id := range ids {
		ds := catalog[id]
		tbl := ds.loader()
		info := ds.info
		info.Rows = tbl.Len()
		info.Sample = previewRecords(tbl, PreviewRows)
		infos = append(infos, info)
	}
	return infos
}

// Load returns the full table and metadata for one dataset
func Load(id string) (*timeseries.Table, Info, error) {
	ds, ok := catalog[id]
	if !ok {
		return nil, Info{}, fmt.Errorf("dataset %q was not found", id)
	}
	tbl := ds.loader()
	info := ds.info
	info.Rows = tbl.Len()
	info.Sample = previewRecords(tbl, PreviewRows)
	return tbl, info, nil
}

func previewRecords(tbl *timeseries.Table, limit int) []timeseries.Record {
	records := tbl.Records()
	if len(records) > limit {
		records = records[:limit]
	}
	return records
}

// airPassengers is the monthly international airline passenger series,
// January 1949 through December 1960.
var airPassengers = []float64{
	112, 118, 132, 129, 121, 135, 148, 148, 136, 119, 104, 118,
	115, 126, 141, 135, 125, 149, 170, 170, 158, 133, 114, 140,
	145, 150, 178, 163, 172, 178, 199, 199, 184, 162, 146, 166,
	171, 180, 193, 181, 183, 218, 230, 242, 209, 191, 172, 194,
	196, 196, 236, 235, 229, 243, 264, 272, 237, 211, 180, 201,
	204, 188, 235, 227, 234, 264, 302, 293, 259, 229, 203, 229,
	242, 233, 267, 269, 270, 315, 364, 347, 312, 274, 237, 278,
	284, 277, 317, 313, 318, 374, 413, 405, 355, 306, 271, 306,
	315, 301, 356, 348, 355, 422, 465, 467, 404, 347, 305, 336,
	340, 318, 362, 348, 363, 435, 491, 505, 404, 359, 310, 337,
	360, 342, 406, 396, 420, 472, 548, 559, 463, 407, 362, 405,
	417, 391, 419, 461, 472, 535, 622, 606, 508, 461, 390, 432,
}

func loadAirPassengers() *timeseries.Table {
	tbl := &timeseries.Table{}
	start := time.Date(1949, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range airPassengers {
		tbl.Append(start.AddDate(0, i, 0), v)
	}
	return tbl
}

func loadEnergyDaily() *timeseries.Table {
	rng := rand.New(rand.NewSource(42))
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	weekly := []float64{1.1, 1.15, 1.2, 1.15, 1.1, 0.8, 0.75}

	tbl := &timeseries.Table{}
	const base = 50.0
	for i := 0; i < 365; i++ {
		trend := 10 * float64(i) / 364
		seasonal := base * (weekly[i%len(weekly)] - 1)
		noise := rng.NormFloat64() * 5
		tbl.Append(start.AddDate(0, 0, i), base+trend+seasonal+noise)
	}
	return tbl
}

func loadRetailWeekly() *timeseries.Table {
	rng := rand.New(rand.NewSource(123))
	start := time.Date(2021, time.January, 3, 0, 0, 0, 0, time.UTC)

	// Yearly profile: steady through autumn, a pre-holiday bump, a lull,
	// then the holiday peak.
	yearly := make([]float64, 0, 52)
	for i := 0; i < 39; i++ {
		yearly = append(yearly, 0.9)
	}
	for i := 0; i < 4; i++ {
		yearly = append(yearly, 1.2)
	}
	for i := 0; i < 5; i++ {
		yearly = append(yearly, 1.0)
	}
	for i := 0; i < 4; i++ {
		yearly = append(yearly, 1.5)
	}

	tbl := &timeseries.Table{}
	const base = 10000.0
	for i := 0; i < 156; i++ {
		trend := 5000 * float64(i) / 155
		seasonal := base * (yearly[i%len(yearly)] - 1)
		noise := rng.NormFloat64() * 800
		tbl.Append(start.AddDate(0, 0, 7*i), base+trend+seasonal+noise)
	}
	return tbl
}

func loadTemperature() *timeseries.Table {
	rng := rand.New(rand.NewSource(456))
	start := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)

	tbl := &timeseries.Table{}
	const base = 55.0
	for i := 0; i < 730; i++ {
		seasonal := 25 * math.Sin(2*math.Pi*float64(i)/365-math.Pi/2)
		noise := rng.NormFloat64() * 5
		tbl.Append(start.AddDate(0, 0, i), base+seasonal+noise)
	}
	return tbl
}

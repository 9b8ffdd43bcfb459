// Package risk holds the static flood and landslide classification of known cities.
package risk

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"weather-dashboard/models"

	"gopkg.in/yaml.v3"
)

//go:embed risks.yaml
var defaultRisks []byte

// Unknown is returned for cities that have no record
var Unknown = models.Risk{FloodRisk: models.RiskLow, LandslideRisk: models.RiskLow}

type fileFormat struct {
	Cities []struct {
		City        string `yaml:"city"`
		Flood       string `yaml:"flood"`
		Landslide   string `yaml:"landslide"`
		Coordinates string `yaml:"coordinates"`
	} `yaml:"cities"`
}

// Table is an immutable city to risk mapping. It is safe for concurrent use.
type Table struct {
	records []models.RiskRecord
	byCity  map[string]int // lowercased city -> index into records
}

// Default returns the table compiled into the binary
func Default() *Table {
	t, err := Parse(defaultRisks)
	if err != nil {
		panic(fmt.Sprintf("embedded risk table: %v", err))
	}
	return t
}

// Load reads a risk table from a YAML file
func Load(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read risk table: %w", err)
	}
	t, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse builds a table from YAML. Unknown levels and duplicate cities are rejected.
func Parse(b []byte) (*Table, error) {
	var f fileFormat
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to parse risk table: %w", err)
	}

	t := &Table{
		records: make([]models.RiskRecord, 0, len(f.Cities)),
		byCity:  make(map[string]int, len(f.Cities)),
	}
	for i, c := range f.Cities {
		city := strings.TrimSpace(c.City)
		if city == "" {
			return nil, fmt.Errorf("entry %d: empty city", i)
		}
		flood, err := models.ParseRiskLevel(c.Flood)
		if err != nil {
			return nil, fmt.Errorf("%s: flood: %w", city, err)
		}
		landslide, err := models.ParseRiskLevel(c.Landslide)
		if err != nil {
			return nil, fmt.Errorf("%s: landslide: %w", city, err)
		}

		key := strings.ToLower(city)
		if _, dup := t.byCity[key]; dup {
			return nil, fmt.Errorf("duplicate city %q", city)
		}
		t.byCity[key] = len(t.records)
		t.records = append(t.records, models.RiskRecord{
			City:          city,
			FloodRisk:     flood,
			LandslideRisk: landslide,
			Coordinates:   c.Coordinates,
		})
	}
	return t, nil
}

// Lookup returns the risk pair for a "City, CC" label. The match is exact
// apart from letter case; cities without a record get Unknown.
func (t *Table) Lookup(city string) models.Risk {
	result := Unknown
	if i, ok := t.byCity[strings.ToLower(city)]; ok {
		result = t.records[i].Risk()
	}
	slog.Debug("risk lookup", "city", city, "flood", result.FloodRisk, "landslide", result.LandslideRisk)
	return result
}

// Records returns a copy of all records in file order
func (t *Table) Records() []models.RiskRecord {
	out := make([]models.RiskRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Len returns the number of records
func (t *Table) Len() int {
	return len(t.records)
}

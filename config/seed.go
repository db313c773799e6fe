package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Seed describes reference data loaded by the populate-seasons command
type Seed struct {
	CurrentSeason string       `yaml:"current_season"`
	Seasons       []SeedSeason `yaml:"seasons"`
}

// SeedSeason is one season entry of a seed file. League is a league name; empty means global.
type SeedSeason struct {
	League    string `yaml:"league"`
	StartYear int    `yaml:"start_year"`
	EndYear   int    `yaml:"end_year"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
	Active    *bool  `yaml:"active"`
}

// LoadSeed reads and validates a YAML seed file
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed parses seed YAML
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, s := range seed.Seasons {
		if s.StartYear == 0 {
			return nil, fmt.Errorf("season %d: start_year is required", i)
		}
		if s.EndYear != 0 && s.EndYear < s.StartYear {
			return nil, fmt.Errorf("season %d: end_year %d before start_year %d", i, s.EndYear, s.StartYear)
		}
		for _, d := range []string{s.StartDate, s.EndDate} {
			if d == "" {
				continue
			}
			if _, err := time.Parse("2006-01-02", d); err != nil {
				return nil, fmt.Errorf("season %d: invalid date %q", i, d)
			}
		}
	}
	return &seed, nil
}

// DefaultSeed covers the 2010/2011 to 2025/2026 global seasons with 2024/2025 as current
func DefaultSeed() *Seed {
	seed := &Seed{CurrentSeason: "2024/2025"}
	for year := 2010; year <= 2025; year++ {
		start := fmt.Sprintf("%d-08-01", year)
		end := fmt.Sprintf("%d-05-31", year+1)
		switch year {
		case 2019:
			end = "2020-07-31"
		case 2020:
			start = "2020-09-01"
		}
		seed.Seasons = append(seed.Seasons, SeedSeason{
			StartYear: year,
			EndYear:   year + 1,
			StartDate: start,
			EndDate:   end,
		})
	}
	return seed
}

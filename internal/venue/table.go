package venue

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// tableFile is the on-disk shape of a venue table.
type tableFile struct {
	Venues []Record `yaml:"venues"`
}

// LoadTable reads a venue table from a YAML file.
func LoadTable(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading venue table: %w", err)
	}

	var tf tableFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing venue table: %w", err)
	}
	if len(tf.Venues) == 0 {
		return nil, fmt.Errorf("venue table %s contains no venues", path)
	}

	return tf.Venues, nil
}

// DefaultTable returns the built-in venue table for the Orlando deployment.
// Address fragments are carried as aliases because some scrapers report the
// street address instead of the venue name.
func DefaultTable() []Record {
	return []Record{
		{
			CanonicalName: "Will's Pub",
			PlaceID:       1,
			Address:       "1042 N. Mills Ave. Orlando, FL 32803",
			Aliases:       []string{"Wills Pub", "Will's Pub Orlando", "1042 N Mills"},
		},
		{
			CanonicalName: "Conduit",
			PlaceID:       5,
			Address:       "22 S Magnolia Ave, Orlando, FL 32801",
			Aliases:       []string{"The Conduit", "Conduit Bar", "Conduit FL", "22 S Magnolia"},
		},
		{
			CanonicalName: "Stardust Video & Coffee",
			PlaceID:       4,
			Address:       "1842 Winter Park Rd",
			Aliases:       []string{"Stardust", "1842 Winter Park"},
		},
		{
			CanonicalName: "Sly Fox",
			PlaceID:       6,
			Aliases:       []string{"The Sly Fox"},
		},
	}
}

// Package catalog reads pitcher season stats from YAML files.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/rostr/internal/domain/model"
)

//go:embed seed.yaml
var seedYAML []byte

// Sentinel kinds for catalog errors.
var (
	ErrInvalidCatalog = errors.New("invalid pitcher catalog")
	ErrEmptyCatalog   = errors.New("pitcher catalog has no rows")
)

type file struct {
	Pitchers []model.PitcherSeason `yaml:"pitchers"`
}

// Parse decodes a catalog document. Unknown keys are rejected so typos in
// metric names surface instead of loading zeros.
func Parse(r io.Reader) ([]model.PitcherSeason, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if len(f.Pitchers) == 0 {
		return nil, ErrEmptyCatalog
	}
	if err := validate(f.Pitchers); err != nil {
		return nil, err
	}
	return f.Pitchers, nil
}

func validate(rows []model.PitcherSeason) error {
	seen := make(map[string]int, len(rows))
	for i := range rows {
		p := &rows[i]
		p.IDFG = strings.TrimSpace(p.IDFG)
		p.Name = strings.TrimSpace(p.Name)
		switch {
		case p.IDFG == "":
			return fmt.Errorf("%w: row %d: idfg is required", ErrInvalidCatalog, i+1)
		case p.Name == "":
			return fmt.Errorf("%w: row %d: name is required", ErrInvalidCatalog, i+1)
		case p.Season < 1000 || p.Season > 9999:
			return fmt.Errorf("%w: row %d: season %d is not a 4-digit year", ErrInvalidCatalog, i+1, p.Season)
		case p.KPct < 0 || p.KPct > 100:
			return fmt.Errorf("%w: row %d: k_pct %.1f out of range", ErrInvalidCatalog, i+1, p.KPct)
		case p.Innings < 0:
			return fmt.Errorf("%w: row %d: ip must not be negative", ErrInvalidCatalog, i+1)
		case p.ERA < 0:
			return fmt.Errorf("%w: row %d: era must not be negative", ErrInvalidCatalog, i+1)
		}
		key := fmt.Sprintf("%s/%d", p.IDFG, p.Season)
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("%w: rows %d and %d both define %s", ErrInvalidCatalog, prev, i+1, key)
		}
		seen[key] = i + 1
	}
	return nil
}

// LoadFile parses the catalog at path.
func LoadFile(path string) ([]model.PitcherSeason, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Seed returns the catalog bundled with the binary.
func Seed() ([]model.PitcherSeason, error) {
	return Parse(bytes.NewReader(seedYAML))
}

// Load reads path, or the bundled seed when path is empty.
func Load(path string) ([]model.PitcherSeason, error) {
	if path == "" {
		return Seed()
	}
	return LoadFile(path)
}

// Seasons lists the distinct seasons present in rows, in first-seen order.
func Seasons(rows []model.PitcherSeason) []int {
	var out []int
	seen := map[int]bool{}
	for _, r := range rows {
		if !seen[r.Season] {
			seen[r.Season] = true
			out = append(out, r.Season)
		}
	}
	return out
}

package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/digitrace/internal/model"
)

// File is the TOML layout of a template overlay file.
type File struct {
	Digits []DigitEntry `toml:"digit"`
}

// DigitEntry overrides one digit's path and, optionally, its hint.
type DigitEntry struct {
	Digit  int          `toml:"digit"`
	Hint   string       `toml:"hint"`
	Points [][2]float64 `toml:"points"`
}

// Load returns the built-in catalog overlaid with templates from path.
// An empty path or a missing file yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	c := Default()
	if strings.TrimSpace(path) == "" {
		return c, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to stat templates: %w", err)
	}
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}
	if err := c.apply(f); err != nil {
		return nil, fmt.Errorf("invalid templates in %s: %w", path, err)
	}
	return c, nil
}

func (c *Catalog) apply(f File) error {
	seen := map[int]struct{}{}
	for _, entry := range f.Digits {
		if _, dup := seen[entry.Digit]; dup {
			return fmt.Errorf("digit %d defined twice", entry.Digit)
		}
		seen[entry.Digit] = struct{}{}

		t := model.DigitTemplate{
			Digit:     entry.Digit,
			Waypoints: toPoints(entry.Points),
			Hint:      entry.Hint,
		}
		if err := validate(t); err != nil {
			return err
		}
		if t.Hint == "" {
			t.Hint = c.templates[t.Digit].Hint
		}
		c.templates[t.Digit] = t
	}
	return nil
}

package achievements

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	CatalogKind            = "achievement_catalog"
	SupportedSchemaVersion = 1
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,47}$`)

// ErrUnknownID is returned for ids that are not in the catalog.
var ErrUnknownID = errors.New("unknown achievement id")

type Rarity int

const (
	Common Rarity = iota
	Rare
	Epic
	Legendary
)

func (r Rarity) String() string {
	switch r {
	case Common:
		return "common"
	case Rare:
		return "rare"
	case Epic:
		return "epic"
	case Legendary:
		return "legendary"
	default:
		return fmt.Sprintf("rarity(%d)", int(r))
	}
}

func ParseRarity(raw string) (Rarity, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "common":
		return Common, nil
	case "rare":
		return Rare, nil
	case "epic":
		return Epic, nil
	case "legendary":
		return Legendary, nil
	default:
		return Common, fmt.Errorf("invalid rarity %q", raw)
	}
}

func (r *Rarity) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseRarity(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Definition is one catalog entry. ID is persisted and must never change.
type Definition struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Rarity Rarity `yaml:"rarity"`
	Hint   string `yaml:"hint"`
	Icon   string `yaml:"icon"`
}

type Catalog struct {
	Kind          string       `yaml:"kind"`
	SchemaVersion int          `yaml:"schema_version"`
	Achievements  []Definition `yaml:"achievements"`
}

func (c Catalog) Validate() error {
	if c.Kind != CatalogKind {
		return fmt.Errorf("kind must be %q", CatalogKind)
	}
	if c.SchemaVersion != SupportedSchemaVersion {
		return fmt.Errorf("unsupported schema_version %d", c.SchemaVersion)
	}
	if len(c.Achievements) == 0 {
		return errors.New("catalog has no achievements")
	}
	seen := map[string]struct{}{}
	for i, def := range c.Achievements {
		if !idPattern.MatchString(def.ID) {
			return fmt.Errorf("achievements[%d]: invalid id %q", i, def.ID)
		}
		if _, dup := seen[def.ID]; dup {
			return fmt.Errorf("achievements[%d]: duplicate id %q", i, def.ID)
		}
		seen[def.ID] = struct{}{}
		if strings.TrimSpace(def.Name) == "" {
			return fmt.Errorf("achievement %s: name is required", def.ID)
		}
		if strings.TrimSpace(def.Hint) == "" {
			return fmt.Errorf("achievement %s: hint is required", def.ID)
		}
	}
	return nil
}

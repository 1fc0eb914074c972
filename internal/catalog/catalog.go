// Package catalog maps hero ids to display names and roles, and rank levels
// to rank names.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"rivals-scout/internal/config"
	"rivals-scout/internal/domain"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed heroes.yaml
var defaultCatalog []byte

type file struct {
	Heroes []domain.Hero  `yaml:"heroes"`
	Ranks  map[int]string `yaml:"ranks"`
}

type Catalog struct {
	heroes []domain.Hero
	byID   map[string]domain.Hero
	ranks  map[int]string
}

// New loads cfg.HeroCatalogPath, or the embedded catalog when no path is set.
func New(cfg *config.Config, logger zerolog.Logger) (*Catalog, error) {
	if cfg.HeroCatalogPath == "" {
		c, err := Parse(defaultCatalog)
		if err != nil {
			return nil, fmt.Errorf("failed to parse embedded catalog: %w", err)
		}
		logger.Debug().Int("heroes", len(c.heroes)).Msg("using embedded hero catalog")
		return c, nil
	}

	c, err := Load(cfg.HeroCatalogPath)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.HeroCatalogPath).Msg("failed to load hero catalog")
		return nil, err
	}
	logger.Info().Str("path", cfg.HeroCatalogPath).Int("heroes", len(c.heroes)).Msg("hero catalog loaded")
	return c, nil
}

func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}
	return c, nil
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	c := &Catalog{
		byID:  make(map[string]domain.Hero, len(f.Heroes)),
		ranks: f.Ranks,
	}
	if c.ranks == nil {
		c.ranks = map[int]string{}
	}
	for _, h := range f.Heroes {
		h.ID = strings.TrimSpace(h.ID)
		if h.ID == "" {
			return nil, fmt.Errorf("hero %q has no id", h.Name)
		}
		if _, dup := c.byID[h.ID]; dup {
			return nil, fmt.Errorf("duplicate hero id %s", h.ID)
		}
		h.Role = normalizeRole(h.Role)
		c.byID[h.ID] = h
		c.heroes = append(c.heroes, h)
	}
	return c, nil
}

func normalizeRole(r domain.Role) domain.Role {
	switch domain.Role(strings.ToLower(strings.TrimSpace(string(r)))) {
	case domain.RoleVanguard:
		return domain.RoleVanguard
	case domain.RoleDuelist:
		return domain.RoleDuelist
	case domain.RoleStrategist:
		return domain.RoleStrategist
	}
	return domain.RoleUnknown
}

func (c *Catalog) Heroes() []domain.Hero {
	out := make([]domain.Hero, len(c.heroes))
	copy(out, c.heroes)
	return out
}

func (c *Catalog) HeroName(id string) string {
	if h, ok := c.byID[id]; ok && h.Name != "" {
		return h.Name
	}
	return fmt.Sprintf("Unknown (%s)", id)
}

func (c *Catalog) HeroRole(id string) domain.Role {
	if h, ok := c.byID[id]; ok {
		return h.Role
	}
	return domain.RoleUnknown
}

func (c *Catalog) RankName(level int) string {
	if name, ok := c.ranks[level]; ok {
		return name
	}
	return strconv.Itoa(level)
}

// Package pokedex provides species data for battle setup
package pokedex

//go:generate mockgen -destination=mock/mock_client.go -package=pokedexmock github.com/pokearena/battle-api/internal/clients/pokedex Client

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/pokearena/battle-api/internal/entities"
	"github.com/pokearena/battle-api/internal/errors"
	"github.com/pokearena/battle-api/internal/pkg/rng"
)

//go:embed data/gen1.json
var gen1Data []byte

// defaultSpriteBaseURL points at the public sprite repository keyed by dex number
const defaultSpriteBaseURL = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon"

// starterIDs are the species offered to new players
var starterIDs = []string{"bulbasaur", "charmander", "squirtle"}

// Species holds the catalog entry for one pokemon
type Species struct {
	Num           int    `json:"num"`
	ID            string `json:"id"`
	Name          string `json:"name"`
	PrimaryType   string `json:"primary_type"`
	SecondaryType string `json:"secondary_type"`
	BaseHP        int32  `json:"base_hp"`
	BaseAttack    int32  `json:"base_attack"`
	BaseDefense   int32  `json:"base_defense"`
	BaseSpeed     int32  `json:"base_speed"`
	SpriteURL     string `json:"sprite_url"`
}

// BattlePokemon builds a fresh battle-ready pokemon from the species entry
func (sp *Species) BattlePokemon() *entities.BattlePokemon {
	return &entities.BattlePokemon{
		SpeciesID:     sp.ID,
		Name:          sp.Name,
		SpriteURL:     sp.SpriteURL,
		PrimaryType:   sp.PrimaryType,
		SecondaryType: sp.SecondaryType,
		BaseHP:        sp.BaseHP,
		BaseAttack:    sp.BaseAttack,
		BaseDefense:   sp.BaseDefense,
		BaseSpeed:     sp.BaseSpeed,
		CurrentHP:     sp.BaseHP,
	}
}

// Client defines the interface for species lookups
type Client interface {
	// GetSpecies fetches a species by ID
	// Returns errors.NotFound for unknown species
	GetSpecies(ctx context.Context, speciesID string) (*Species, error)

	// RandomSpecies draws a uniformly random species from the catalog
	RandomSpecies(ctx context.Context, src rng.Source) (*Species, error)

	// ListStarters returns the species offered to new players, in dex order
	ListStarters(ctx context.Context) ([]*Species, error)
}

type client struct {
	ordered []*Species
	byID    map[string]*Species
}

// Config contains configuration for the embedded pokedex client.
type Config struct {
	// SpriteBaseURL overrides where sprite links point. Optional.
	SpriteBaseURL string
}

// New creates a pokedex client backed by the embedded gen-1 catalog
func New(cfg *Config) (Client, error) {
	baseURL := defaultSpriteBaseURL
	if cfg != nil && cfg.SpriteBaseURL != "" {
		baseURL = cfg.SpriteBaseURL
	}

	var species []*Species
	if err := json.Unmarshal(gen1Data, &species); err != nil {
		return nil, errors.Wrapf(err, "failed to parse embedded species catalog")
	}
	if len(species) == 0 {
		return nil, errors.Internal("embedded species catalog is empty")
	}

	byID := make(map[string]*Species, len(species))
	for _, sp := range species {
		sp.SpriteURL = fmt.Sprintf("%s/%d.png", baseURL, sp.Num)
		byID[sp.ID] = sp
	}

	return &client{
		ordered: species,
		byID:    byID,
	}, nil
}

func (c *client) GetSpecies(_ context.Context, speciesID string) (*Species, error) {
	if speciesID == "" {
		return nil, errors.InvalidArgument("species ID cannot be empty")
	}

	sp, ok := c.byID[speciesID]
	if !ok {
		return nil, errors.NotFoundf("species %s not found", speciesID)
	}
	return sp, nil
}

func (c *client) RandomSpecies(_ context.Context, src rng.Source) (*Species, error) {
	if src == nil {
		return nil, errors.InvalidArgument("rng source cannot be nil")
	}

	idx := int(src.Float64() * float64(len(c.ordered)))
	if idx >= len(c.ordered) {
		idx = len(c.ordered) - 1
	}
	return c.ordered[idx], nil
}

func (c *client) ListStarters(_ context.Context) ([]*Species, error) {
	starters := make([]*Species, 0, len(starterIDs))
	for _, id := range starterIDs {
		sp, ok := c.byID[id]
		if !ok {
			return nil, errors.Internalf("starter species %s missing from catalog", id)
		}
		starters = append(starters, sp)
	}
	return starters, nil
}

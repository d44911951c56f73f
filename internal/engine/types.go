package engine

import (
	"github.com/pokearena/battle-api/internal/entities"
	"github.com/pokearena/battle-api/internal/pkg/rng"
)

// ParticipantSeed is the per-player input to battle creation: identity plus
// the pokemon snapshot to copy into the battle.
type ParticipantSeed struct {
	PlayerID string
	Username string
	Pokemon  entities.BattlePokemon
	IsAI     bool
}

// Rules carries the per-battle configuration fixed at creation time.
type Rules struct {
	StartingPotions  uint32
	StartingXAttack  uint32
	StartingXDefense uint32
}

// DefaultRules returns the standard starting inventory
func DefaultRules() Rules {
	return Rules{
		StartingPotions:  2,
		StartingXAttack:  1,
		StartingXDefense: 1,
	}
}

// Inventory converts the rules to a starting inventory
func (r Rules) Inventory() entities.Inventory {
	return entities.Inventory{
		Potion:   r.StartingPotions,
		XAttack:  r.StartingXAttack,
		XDefense: r.StartingXDefense,
	}
}

// NewBattleInput defines the input for creating a battle
type NewBattleInput struct {
	BattleID string
	Player1  ParticipantSeed
	Player2  ParticipantSeed
	Rules    Rules
}

// NewBattleOutput defines the output for creating a battle
type NewBattleOutput struct {
	Battle *entities.Battle
}

// ResolveTurnInput defines the input for resolving one half-exchange. RNG is
// supplied per call so concurrent battles never contend on shared state and
// a fixed sequence replays a resolution exactly.
type ResolveTurnInput struct {
	Battle   *entities.Battle
	PlayerID string
	Action   entities.TurnAction
	RNG      rng.Source
}

// ResolveTurnOutput defines the output for resolving one half-exchange
type ResolveTurnOutput struct {
	Battle *entities.Battle
	Turn   entities.Turn
	// BattleComplete is true when this half-exchange ended the battle
	BattleComplete bool
	// WinnerID is set only when BattleComplete is true
	WinnerID string
}

// UseItemInput defines the input for consuming an item
type UseItemInput struct {
	Battle   *entities.Battle
	PlayerID string
	Item     entities.ItemType
}

// UseItemOutput defines the output for consuming an item
type UseItemOutput struct {
	Battle *entities.Battle
	Result ItemResult
}

// BoostStat names the stat an X item boosts
type BoostStat string

// Boostable stats
const (
	BoostAttack  BoostStat = "attack"
	BoostDefense BoostStat = "defense"
)

// ItemResult is a tagged per-item result: exactly one of Heal or Boost is
// set, matching the item kind.
type ItemResult struct {
	Item      entities.ItemType
	Message   string
	Heal      *HealResult
	Boost     *BoostResult
	Inventory entities.Inventory
}

// HealResult reports a potion's effect
type HealResult struct {
	Restored int32
	NewHP    int32
}

// BoostResult reports an X item's effect
type BoostResult struct {
	Stat           BoostStat
	TurnsRemaining uint32
}

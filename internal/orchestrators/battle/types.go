package battle

import (
	"github.com/pokearena/battle-api/internal/clients/pokedex"
	"github.com/pokearena/battle-api/internal/engine"
	"github.com/pokearena/battle-api/internal/entities"
)

// RegisterPlayerInput defines the input for registering a trainer
type RegisterPlayerInput struct {
	Username string
	// SpeciesID picks the active pokemon, usually one of the starters
	SpeciesID string
}

// RegisterPlayerOutput defines the output for registering a trainer
type RegisterPlayerOutput struct {
	Player *entities.Player
}

// GetPlayerInput defines the input for fetching a trainer
type GetPlayerInput struct {
	PlayerID string
}

// GetPlayerOutput defines the output for fetching a trainer
type GetPlayerOutput struct {
	Player *entities.Player
}

// ListStartersInput defines the input for listing starter species
type ListStartersInput struct{}

// ListStartersOutput defines the output for listing starter species
type ListStartersOutput struct {
	Starters []*pokedex.Species
}

// CreateBattleInput defines the input for starting a battle
type CreateBattleInput struct {
	PlayerID string
	// SpeciesID optionally overrides the player's active pokemon for this
	// battle with a fresh full-health snapshot of the given species.
	SpeciesID string
	// OpponentID is optional. When empty an opponent is drawn at random from
	// available players, falling back to a fabricated AI trainer.
	OpponentID string
}

// CreateBattleOutput defines the output for starting a battle
type CreateBattleOutput struct {
	Battle *entities.Battle
}

// SubmitTurnInput defines the input for submitting a turn action
type SubmitTurnInput struct {
	BattleID string
	PlayerID string
	Action   entities.TurnAction
}

// SubmitTurnOutput defines the output for submitting a turn action
type SubmitTurnOutput struct {
	Battle *entities.Battle
	// PlayerTurn is the log entry for the submitted action
	PlayerTurn entities.Turn
	// AITurn is set when an AI opponent resolved its action in the same call
	AITurn *entities.Turn
	// BattleComplete is true when the battle ended during this call
	BattleComplete bool
	// WinnerID is set only when BattleComplete is true
	WinnerID string
}

// UseItemInput defines the input for consuming an item mid-battle
type UseItemInput struct {
	BattleID string
	PlayerID string
	Item     entities.ItemType
}

// UseItemOutput defines the output for consuming an item mid-battle
type UseItemOutput struct {
	Battle *entities.Battle
	Result engine.ItemResult
}

// GetBattleInput defines the input for fetching a battle
type GetBattleInput struct {
	BattleID string
	// PlayerID is the requesting participant
	PlayerID string
}

// GetBattleOutput defines the output for fetching a battle
type GetBattleOutput struct {
	Battle *entities.Battle
}

// ListBattleHistoryInput defines the input for listing a player's battles
type ListBattleHistoryInput struct {
	PlayerID string
}

// BattleSummary is one battle history row, newest first
type BattleSummary struct {
	BattleID         string
	OpponentID       string
	OpponentUsername string
	Status           entities.BattleStatus
	WinnerID         string
	TurnCount        int32
	CreatedAt        int64
	CompletedAt      int64
}

// ListBattleHistoryOutput defines the output for listing a player's battles
type ListBattleHistoryOutput struct {
	Battles []*BattleSummary
}

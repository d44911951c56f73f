// Package kanto implements the battle engine: the classic single-pokemon
// ruleset with attack/defend actions, timed stat boosts, and consumable
// items. All methods transform deep copies, so a rejected call never leaves
// a partially mutated record behind.
package kanto

import (
	"github.com/pokearena/battle-api/internal/engine"
	"github.com/pokearena/battle-api/internal/engine/typechart"
	"github.com/pokearena/battle-api/internal/entities"
	"github.com/pokearena/battle-api/internal/errors"
	"github.com/pokearena/battle-api/internal/pkg/clock"
)

// BoostDuration is how many resolved turns a fresh boost lasts. Re-applying
// a boost resets the counter to this value; durations never stack.
const BoostDuration = 2

type kantoEngine struct {
	clock clock.Clock
}

// Config contains configuration for the kanto engine.
type Config struct {
	Clock clock.Clock
}

// Validate validates the Config.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	return nil
}

// New creates a new kanto battle engine
func New(cfg *Config) (engine.Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &kantoEngine{clock: c}, nil
}

// NewBattle builds the initial battle record: full HP, zero boosts, the
// rules' starting inventory, and the faster pokemon acting first (ties go
// to player 1).
func (e *kantoEngine) NewBattle(input *engine.NewBattleInput) (*engine.NewBattleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.BattleID == "" {
		return nil, errors.InvalidArgument("battle ID cannot be empty")
	}
	if err := validateSeed("player1", input.Player1); err != nil {
		return nil, err
	}
	if err := validateSeed("player2", input.Player2); err != nil {
		return nil, err
	}
	if input.Player1.PlayerID == input.Player2.PlayerID {
		return nil, errors.InvalidArgument("a player cannot battle themselves")
	}

	inventory := input.Rules.Inventory()

	battle := &entities.Battle{
		ID:        input.BattleID,
		Player1:   seedParticipant(input.Player1, inventory),
		Player2:   seedParticipant(input.Player2, inventory),
		Turns:     []entities.Turn{},
		Status:    entities.BattleStatusInProgress,
		CreatedAt: e.clock.Now().Unix(),
	}

	battle.NextPlayerID = input.Player1.PlayerID
	if input.Player2.Pokemon.BaseSpeed > input.Player1.Pokemon.BaseSpeed {
		battle.NextPlayerID = input.Player2.PlayerID
	}

	return &engine.NewBattleOutput{Battle: battle}, nil
}

func validateSeed(side string, seed engine.ParticipantSeed) error {
	if seed.PlayerID == "" {
		return errors.InvalidArgumentf("%s: player ID cannot be empty", side)
	}
	if seed.Pokemon.SpeciesID == "" {
		return errors.FailedPreconditionf("%s has no active pokemon", side)
	}
	if seed.Pokemon.BaseHP <= 0 {
		return errors.InvalidArgumentf("%s: pokemon base HP must be positive", side)
	}
	if !typechart.IsValid(seed.Pokemon.PrimaryType) {
		return errors.InvalidArgumentf("%s: unknown primary type %q", side, seed.Pokemon.PrimaryType)
	}
	if seed.Pokemon.SecondaryType != "" && !typechart.IsValid(seed.Pokemon.SecondaryType) {
		return errors.InvalidArgumentf("%s: unknown secondary type %q", side, seed.Pokemon.SecondaryType)
	}
	return nil
}

func seedParticipant(seed engine.ParticipantSeed, inventory entities.Inventory) entities.Participant {
	pokemon := seed.Pokemon
	pokemon.CurrentHP = pokemon.BaseHP

	return entities.Participant{
		PlayerID:  seed.PlayerID,
		Username:  seed.Username,
		Pokemon:   pokemon,
		Inventory: inventory,
		IsAI:      seed.IsAI,
	}
}

// ResolveTurn resolves one half-exchange. The acting player's action applies
// immediately against the opponent's current, already-applied state; there
// is no simultaneity. Raw damage goes in the log, the HP subtraction is
// clamped at zero.
func (e *kantoEngine) ResolveTurn(input *engine.ResolveTurnInput) (*engine.ResolveTurnOutput, error) {
	if input == nil || input.Battle == nil {
		return nil, errors.InvalidArgument("battle cannot be nil")
	}
	if input.Action != entities.ActionAttack && input.Action != entities.ActionDefend {
		return nil, errors.InvalidArgumentf("unknown action %q", input.Action)
	}
	if input.RNG == nil {
		return nil, errors.InvalidArgument("rng source is required")
	}
	if err := validateActor(input.Battle, input.PlayerID); err != nil {
		return nil, err
	}

	battle := input.Battle.Clone()
	actor := battle.ParticipantByID(input.PlayerID)
	opponent := battle.OpponentOf(input.PlayerID)

	var result AttackResult
	if input.Action == entities.ActionAttack {
		result = ComputeAttack(
			actor.Pokemon,
			actor.AttackBoostActive(),
			opponent.Pokemon,
			opponent.Defending,
			opponent.DefenseBoostActive(),
			input.RNG,
		)

		applied := result.Damage
		if applied > opponent.Pokemon.CurrentHP {
			applied = opponent.Pokemon.CurrentHP
		}
		opponent.Pokemon.CurrentHP -= applied
	}

	actor.Defending = input.Action == entities.ActionDefend

	tickBoosts(actor)
	tickBoosts(opponent)

	turn := entities.Turn{
		Number:         int32(len(battle.Turns)) + 1,
		PlayerID:       input.PlayerID,
		Action:         input.Action,
		Damage:         result.Damage,
		Critical:       result.Critical,
		SuperEffective: result.SuperEffective,
	}

	if input.Action == entities.ActionAttack {
		turn.Message = attackMessage(actor.Username, result)
	} else {
		turn.Message = defendMessage(actor.Username)
	}

	output := &engine.ResolveTurnOutput{}
	if opponent.Pokemon.CurrentHP == 0 {
		battle.Status = entities.BattleStatusCompleted
		battle.WinnerID = actor.PlayerID
		battle.NextPlayerID = ""
		battle.CompletedAt = e.clock.Now().Unix()
		turn.Message += " " + victoryMessage(actor.Username, opponent.Pokemon.Name)
		output.BattleComplete = true
		output.WinnerID = actor.PlayerID
	} else {
		battle.NextPlayerID = opponent.PlayerID
	}

	battle.Turns = append(battle.Turns, turn)

	output.Battle = battle
	output.Turn = turn
	return output, nil
}

// validateActor rejects calls against completed or corrupted battles, from
// non-participants, and out of turn order. All checks run before anything
// is copied or mutated.
func validateActor(battle *entities.Battle, playerID string) error {
	if !battle.HasParticipant(playerID) {
		return errors.PermissionDenied("you are not a participant in this battle").
			WithMeta("battle_id", battle.ID).
			WithMeta("player_id", playerID)
	}
	if battle.Player1.Pokemon.CurrentHP == 0 && battle.Player2.Pokemon.CurrentHP == 0 {
		return errors.DataLossf("corrupted battle record %s: both pokemon have fainted", battle.ID)
	}
	if battle.Status != entities.BattleStatusInProgress {
		return errors.FailedPrecondition("battle is not active").
			WithMeta("battle_id", battle.ID)
	}
	if battle.NextPlayerID != playerID {
		return errors.FailedPrecondition("it is not your turn").
			WithMeta("battle_id", battle.ID).
			WithMeta("player_id", playerID)
	}
	return nil
}

// tickBoosts decrements both boost counters at the end of a resolved turn.
// A counter that reaches zero leaves the boost inactive from the following
// turn on.
func tickBoosts(p *entities.Participant) {
	if p.AttackBoostTurns > 0 {
		p.AttackBoostTurns--
	}
	if p.DefenseBoostTurns > 0 {
		p.DefenseBoostTurns--
	}
}

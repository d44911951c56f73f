// Package battle implements the battle orchestrator: it loads records, runs
// the engine, persists the outcome, and drives AI opponents.
package battle

//go:generate mockgen -destination=mock/mock_service.go -package=battlemock github.com/pokearena/battle-api/internal/orchestrators/battle Service

import (
	"context"
	"log/slog"

	"github.com/pokearena/battle-api/internal/clients/pokedex"
	"github.com/pokearena/battle-api/internal/engine"
	"github.com/pokearena/battle-api/internal/entities"
	"github.com/pokearena/battle-api/internal/errors"
	"github.com/pokearena/battle-api/internal/pkg/idgen"
	"github.com/pokearena/battle-api/internal/pkg/rng"
	battlerepo "github.com/pokearena/battle-api/internal/repositories/battle"
	playerrepo "github.com/pokearena/battle-api/internal/repositories/player"
)

// AIAttackChance is the probability an AI opponent attacks instead of
// defending (source of one rng draw per AI action)
const AIAttackChance = 0.75

// aiTrainerNames are the usernames assigned to fabricated AI opponents
var aiTrainerNames = []string{"blue", "lance", "lorelei", "bruno", "agatha"}

// Service defines the interface for battle operations
type Service interface {
	// Trainer management
	RegisterPlayer(ctx context.Context, input *RegisterPlayerInput) (*RegisterPlayerOutput, error)
	GetPlayer(ctx context.Context, input *GetPlayerInput) (*GetPlayerOutput, error)
	ListStarters(ctx context.Context, input *ListStartersInput) (*ListStartersOutput, error)

	// Battle lifecycle
	CreateBattle(ctx context.Context, input *CreateBattleInput) (*CreateBattleOutput, error)
	SubmitTurn(ctx context.Context, input *SubmitTurnInput) (*SubmitTurnOutput, error)
	UseItem(ctx context.Context, input *UseItemInput) (*UseItemOutput, error)
	GetBattle(ctx context.Context, input *GetBattleInput) (*GetBattleOutput, error)
	ListBattleHistory(ctx context.Context, input *ListBattleHistoryInput) (*ListBattleHistoryOutput, error)
}

// Config holds the dependencies for the battle orchestrator
type Config struct {
	BattleRepo  battlerepo.Repository
	PlayerRepo  playerrepo.Repository
	Engine      engine.Engine
	Pokedex     pokedex.Client
	BattleIDGen idgen.Generator
	PlayerIDGen idgen.Generator
	// RNG is drawn for crits, AI decisions, and random opponent selection.
	// Defaults to the real source.
	RNG rng.Source
	// Rules overrides the starting inventory for new battles. Defaults to
	// engine.DefaultRules.
	Rules *engine.Rules
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.BattleRepo == nil {
		vb.RequiredField("BattleRepo")
	}
	if c.PlayerRepo == nil {
		vb.RequiredField("PlayerRepo")
	}
	if c.Engine == nil {
		vb.RequiredField("Engine")
	}
	if c.Pokedex == nil {
		vb.RequiredField("Pokedex")
	}
	if c.BattleIDGen == nil {
		vb.RequiredField("BattleIDGen")
	}
	if c.PlayerIDGen == nil {
		vb.RequiredField("PlayerIDGen")
	}

	return vb.Build()
}

type orchestrator struct {
	battleRepo  battlerepo.Repository
	playerRepo  playerrepo.Repository
	engine      engine.Engine
	pokedex     pokedex.Client
	battleIDGen idgen.Generator
	playerIDGen idgen.Generator
	rng         rng.Source
	rules       engine.Rules
}

// NewOrchestrator creates a new battle orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	src := cfg.RNG
	if src == nil {
		src = rng.New()
	}

	rules := engine.DefaultRules()
	if cfg.Rules != nil {
		rules = *cfg.Rules
	}

	return &orchestrator{
		battleRepo:  cfg.BattleRepo,
		playerRepo:  cfg.PlayerRepo,
		engine:      cfg.Engine,
		pokedex:     cfg.Pokedex,
		battleIDGen: cfg.BattleIDGen,
		playerIDGen: cfg.PlayerIDGen,
		rng:         src,
		rules:       rules,
	}, nil
}

// RegisterPlayer creates a trainer record with the chosen species as its
// active pokemon
func (o *orchestrator) RegisterPlayer(
	ctx context.Context,
	input *RegisterPlayerInput,
) (*RegisterPlayerOutput, error) {
	if input.Username == "" {
		return nil, errors.InvalidArgument("username is required")
	}
	if input.SpeciesID == "" {
		return nil, errors.InvalidArgument("species ID is required")
	}

	species, err := o.pokedex.GetSpecies(ctx, input.SpeciesID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to look up species %s", input.SpeciesID)
	}

	player := &entities.Player{
		ID:            o.playerIDGen.Generate(),
		Username:      input.Username,
		ActivePokemon: species.BattlePokemon(),
	}

	createOutput, err := o.playerRepo.Create(ctx, playerrepo.CreateInput{Player: player})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create player")
	}

	slog.Info("Player registered",
		"player_id", player.ID,
		"username", player.Username,
		"species_id", species.ID,
	)

	return &RegisterPlayerOutput{Player: createOutput.Player}, nil
}

// GetPlayer fetches a trainer record
func (o *orchestrator) GetPlayer(ctx context.Context, input *GetPlayerInput) (*GetPlayerOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID is required")
	}

	getOutput, err := o.playerRepo.Get(ctx, playerrepo.GetInput{ID: input.PlayerID})
	if err != nil {
		return nil, err
	}

	return &GetPlayerOutput{Player: getOutput.Player}, nil
}

// ListStarters lists the species offered to new trainers
func (o *orchestrator) ListStarters(ctx context.Context, _ *ListStartersInput) (*ListStartersOutput, error) {
	starters, err := o.pokedex.ListStarters(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list starters")
	}

	return &ListStartersOutput{Starters: starters}, nil
}

// CreateBattle starts a battle between the player and an opponent. The
// opponent is explicit, drawn at random from available players, or a
// fabricated AI trainer when nobody else is around.
func (o *orchestrator) CreateBattle(ctx context.Context, input *CreateBattleInput) (*CreateBattleOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID is required")
	}

	playerOut, err := o.playerRepo.Get(ctx, playerrepo.GetInput{ID: input.PlayerID})
	if err != nil {
		return nil, err
	}
	player := playerOut.Player

	pokemon := player.ActivePokemon
	if input.SpeciesID != "" {
		species, err := o.pokedex.GetSpecies(ctx, input.SpeciesID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to look up species %s", input.SpeciesID)
		}
		pokemon = species.BattlePokemon()
	}
	if pokemon == nil {
		return nil, errors.FailedPreconditionf("%s has no active pokemon", player.Username)
	}

	if err := o.requireNoActiveBattle(ctx, player.ID); err != nil {
		return nil, err
	}

	opponent, err := o.pickOpponent(ctx, input)
	if err != nil {
		return nil, err
	}

	newBattleOut, err := o.engine.NewBattle(&engine.NewBattleInput{
		BattleID: o.battleIDGen.Generate(),
		Player1: engine.ParticipantSeed{
			PlayerID: player.ID,
			Username: player.Username,
			Pokemon:  *pokemon,
			IsAI:     player.IsAI,
		},
		Player2: engine.ParticipantSeed{
			PlayerID: opponent.ID,
			Username: opponent.Username,
			Pokemon:  *opponent.ActivePokemon,
			IsAI:     opponent.IsAI,
		},
		Rules: o.rules,
	})
	if err != nil {
		return nil, err
	}
	battle := newBattleOut.Battle

	// A faster AI opponent owns the opening move; resolve it now so the
	// human always acts next
	if aiOut, err := o.resolveAITurn(battle); err != nil {
		return nil, err
	} else if aiOut != nil {
		battle = aiOut.Battle
	}

	if _, err := o.battleRepo.Create(ctx, battlerepo.CreateInput{Battle: battle}); err != nil {
		return nil, errors.Wrap(err, "failed to persist battle")
	}

	// An AI opener can end the battle outright
	if battle.Status == entities.BattleStatusCompleted {
		o.recordResult(ctx, battle)
	}

	slog.Info("Battle created",
		"battle_id", battle.ID,
		"player1_id", battle.Player1.PlayerID,
		"player2_id", battle.Player2.PlayerID,
		"ai_opponent", battle.Player2.IsAI,
		"next_player_id", battle.NextPlayerID,
	)

	return &CreateBattleOutput{Battle: battle}, nil
}

// requireNoActiveBattle rejects a second concurrent battle for a player
func (o *orchestrator) requireNoActiveBattle(ctx context.Context, playerID string) error {
	activeOut, err := o.battleRepo.GetActiveByPlayerID(ctx, battlerepo.GetActiveByPlayerIDInput{
		PlayerID: playerID,
	})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return errors.Wrap(err, "failed to check for active battle")
	}
	return errors.AlreadyExistsf("player %s is already in battle %s", playerID, activeOut.Battle.ID)
}

// pickOpponent resolves the second participant: an explicit player, a random
// available one, or a fabricated AI trainer.
func (o *orchestrator) pickOpponent(ctx context.Context, input *CreateBattleInput) (*entities.Player, error) {
	if input.OpponentID != "" {
		if input.OpponentID == input.PlayerID {
			return nil, errors.InvalidArgument("cannot battle yourself")
		}

		opponentOut, err := o.playerRepo.Get(ctx, playerrepo.GetInput{ID: input.OpponentID})
		if err != nil {
			return nil, err
		}
		if !opponentOut.Player.HasActivePokemon() {
			return nil, errors.FailedPreconditionf("%s has no active pokemon", opponentOut.Player.Username)
		}
		if err := o.requireNoActiveBattle(ctx, input.OpponentID); err != nil {
			return nil, err
		}
		return opponentOut.Player, nil
	}

	availableOut, err := o.playerRepo.ListAvailable(ctx, playerrepo.ListAvailableInput{
		ExcludePlayerID: input.PlayerID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list available opponents")
	}

	// Candidates still in an active battle are skipped
	candidates := make([]*entities.Player, 0, len(availableOut.Players))
	for _, p := range availableOut.Players {
		if err := o.requireNoActiveBattle(ctx, p.ID); err != nil {
			if errors.IsAlreadyExists(err) {
				continue
			}
			return nil, err
		}
		candidates = append(candidates, p)
	}

	if len(candidates) > 0 {
		return candidates[drawIndex(o.rng, len(candidates))], nil
	}

	return o.fabricateAITrainer(ctx)
}

// fabricateAITrainer creates and persists an AI opponent with a random species
func (o *orchestrator) fabricateAITrainer(ctx context.Context) (*entities.Player, error) {
	species, err := o.pokedex.RandomSpecies(ctx, o.rng)
	if err != nil {
		return nil, errors.Wrap(err, "failed to draw AI species")
	}

	trainer := &entities.Player{
		ID:            o.playerIDGen.Generate(),
		Username:      aiTrainerNames[drawIndex(o.rng, len(aiTrainerNames))],
		ActivePokemon: species.BattlePokemon(),
		IsAI:          true,
	}

	if _, err := o.playerRepo.Create(ctx, playerrepo.CreateInput{Player: trainer}); err != nil {
		return nil, errors.Wrap(err, "failed to persist AI trainer")
	}

	slog.Info("AI trainer fabricated",
		"player_id", trainer.ID,
		"username", trainer.Username,
		"species_id", species.ID,
	)

	return trainer, nil
}

// SubmitTurn resolves the player's action. When the opponent is an AI and
// the battle is still live, the AI's answer resolves in the same call.
func (o *orchestrator) SubmitTurn(ctx context.Context, input *SubmitTurnInput) (*SubmitTurnOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument("battle ID is required")
	}
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID is required")
	}

	getOutput, err := o.battleRepo.Get(ctx, battlerepo.GetInput{ID: input.BattleID})
	if err != nil {
		return nil, err
	}

	resolveOut, err := o.engine.ResolveTurn(&engine.ResolveTurnInput{
		Battle:   getOutput.Battle,
		PlayerID: input.PlayerID,
		Action:   input.Action,
		RNG:      o.rng,
	})
	if err != nil {
		return nil, err
	}

	out := &SubmitTurnOutput{
		Battle:         resolveOut.Battle,
		PlayerTurn:     resolveOut.Turn,
		BattleComplete: resolveOut.BattleComplete,
		WinnerID:       resolveOut.WinnerID,
	}

	if aiOut, err := o.resolveAITurn(resolveOut.Battle); err != nil {
		return nil, err
	} else if aiOut != nil {
		aiTurn := aiOut.Turn
		out.Battle = aiOut.Battle
		out.AITurn = &aiTurn
		out.BattleComplete = aiOut.BattleComplete
		out.WinnerID = aiOut.WinnerID
	}

	if _, err := o.battleRepo.Update(ctx, battlerepo.UpdateInput{Battle: out.Battle}); err != nil {
		return nil, errors.Wrap(err, "failed to persist battle")
	}

	if out.BattleComplete {
		o.recordResult(ctx, out.Battle)
	}

	slog.Info("Turn resolved",
		"battle_id", out.Battle.ID,
		"player_id", input.PlayerID,
		"action", input.Action,
		"turns", len(out.Battle.Turns),
		"complete", out.BattleComplete,
	)

	return out, nil
}

// resolveAITurn resolves one AI action when the battle is live and the move
// belongs to an AI participant, and returns nil otherwise. AI policy: attack
// with probability AIAttackChance, else defend (one rng draw for the
// decision).
func (o *orchestrator) resolveAITurn(battle *entities.Battle) (*engine.ResolveTurnOutput, error) {
	if battle.Status != entities.BattleStatusInProgress {
		return nil, nil
	}

	next := battle.ParticipantByID(battle.NextPlayerID)
	if next == nil || !next.IsAI {
		return nil, nil
	}

	action := entities.ActionAttack
	if o.rng.Float64() >= AIAttackChance {
		action = entities.ActionDefend
	}

	aiOut, err := o.engine.ResolveTurn(&engine.ResolveTurnInput{
		Battle:   battle,
		PlayerID: next.PlayerID,
		Action:   action,
		RNG:      o.rng,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve AI turn")
	}
	return aiOut, nil
}

// recordResult bumps win/loss counters once a battle completes. The battle
// record is already persisted, so counter failures are logged, not returned.
func (o *orchestrator) recordResult(ctx context.Context, battle *entities.Battle) {
	for _, p := range []*entities.Participant{&battle.Player1, &battle.Player2} {
		getOutput, err := o.playerRepo.Get(ctx, playerrepo.GetInput{ID: p.PlayerID})
		if err != nil {
			slog.WarnContext(ctx, "failed to load player for result recording",
				"player_id", p.PlayerID,
				"error", err.Error())
			continue
		}

		record := getOutput.Player
		if p.PlayerID == battle.WinnerID {
			record.Wins++
		} else {
			record.Losses++
		}

		if _, err := o.playerRepo.Update(ctx, playerrepo.UpdateInput{Player: record}); err != nil {
			slog.WarnContext(ctx, "failed to record battle result",
				"player_id", p.PlayerID,
				"error", err.Error())
		}
	}
}

// UseItem consumes an item as a free action and persists the result
func (o *orchestrator) UseItem(ctx context.Context, input *UseItemInput) (*UseItemOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument("battle ID is required")
	}
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID is required")
	}

	getOutput, err := o.battleRepo.Get(ctx, battlerepo.GetInput{ID: input.BattleID})
	if err != nil {
		return nil, err
	}

	itemOut, err := o.engine.UseItem(&engine.UseItemInput{
		Battle:   getOutput.Battle,
		PlayerID: input.PlayerID,
		Item:     input.Item,
	})
	if err != nil {
		return nil, err
	}

	if _, err := o.battleRepo.Update(ctx, battlerepo.UpdateInput{Battle: itemOut.Battle}); err != nil {
		return nil, errors.Wrap(err, "failed to persist battle")
	}

	slog.Info("Item used",
		"battle_id", itemOut.Battle.ID,
		"player_id", input.PlayerID,
		"item", input.Item,
	)

	return &UseItemOutput{
		Battle: itemOut.Battle,
		Result: itemOut.Result,
	}, nil
}

// GetBattle fetches a battle for one of its participants
func (o *orchestrator) GetBattle(ctx context.Context, input *GetBattleInput) (*GetBattleOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument("battle ID is required")
	}
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID is required")
	}

	getOutput, err := o.battleRepo.Get(ctx, battlerepo.GetInput{ID: input.BattleID})
	if err != nil {
		return nil, err
	}
	if !getOutput.Battle.HasParticipant(input.PlayerID) {
		return nil, errors.PermissionDeniedf("player %s is not a participant in battle %s",
			input.PlayerID, input.BattleID)
	}

	return &GetBattleOutput{Battle: getOutput.Battle}, nil
}

// ListBattleHistory lists a player's battles as summaries, newest first
func (o *orchestrator) ListBattleHistory(
	ctx context.Context,
	input *ListBattleHistoryInput,
) (*ListBattleHistoryOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID is required")
	}

	listOutput, err := o.battleRepo.ListByPlayerID(ctx, battlerepo.ListByPlayerIDInput{
		PlayerID: input.PlayerID,
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]*BattleSummary, 0, len(listOutput.Battles))
	for _, b := range listOutput.Battles {
		opponent := b.OpponentOf(input.PlayerID)
		if opponent == nil {
			continue
		}
		summaries = append(summaries, &BattleSummary{
			BattleID:         b.ID,
			OpponentID:       opponent.PlayerID,
			OpponentUsername: opponent.Username,
			Status:           b.Status,
			WinnerID:         b.WinnerID,
			TurnCount:        int32(len(b.Turns)),
			CreatedAt:        b.CreatedAt,
			CompletedAt:      b.CompletedAt,
		})
	}

	return &ListBattleHistoryOutput{Battles: summaries}, nil
}

// drawIndex maps one uniform draw onto [0, n)
func drawIndex(src rng.Source, n int) int {
	idx := int(src.Float64() * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

package kanto_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pokearena/battle-api/internal/engine"
	"github.com/pokearena/battle-api/internal/engine/kanto"
	"github.com/pokearena/battle-api/internal/entities"
	"github.com/pokearena/battle-api/internal/errors"
	"github.com/pokearena/battle-api/internal/pkg/clock"
	"github.com/pokearena/battle-api/internal/pkg/rng"
)

const (
	ashID  = "player_ash"
	garyID = "player_gary"
)

type EngineTestSuite struct {
	suite.Suite
	engine engine.Engine
	now    time.Time
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) SetupTest() {
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	eng, err := kanto.New(&kanto.Config{
		Clock: &clock.Fixed{T: s.now},
	})
	s.Require().NoError(err)
	s.engine = eng
}

func (s *EngineTestSuite) newBattle() *entities.Battle {
	out, err := s.engine.NewBattle(&engine.NewBattleInput{
		BattleID: "battle_1",
		Player1: engine.ParticipantSeed{
			PlayerID: ashID,
			Username: "ash",
			Pokemon:  firePokemon(),
		},
		Player2: engine.ParticipantSeed{
			PlayerID: garyID,
			Username: "gary",
			Pokemon:  grassPokemon(),
			IsAI:     true,
		},
		Rules: engine.DefaultRules(),
	})
	s.Require().NoError(err)
	return out.Battle
}

// snapshot returns the canonical serialized form, used to prove that error
// paths leave the record byte-identical.
func (s *EngineTestSuite) snapshot(b *entities.Battle) string {
	data, err := json.Marshal(b)
	s.Require().NoError(err)
	return string(data)
}

func noCrit() rng.Source {
	return &rng.Fixed{Values: []float64{0.5}}
}

func (s *EngineTestSuite) TestNewBattle() {
	battle := s.newBattle()

	s.Equal(entities.BattleStatusInProgress, battle.Status)
	s.Empty(battle.WinnerID)
	s.Empty(battle.Turns)
	s.Equal(int32(100), battle.Player1.Pokemon.CurrentHP)
	s.Equal(int32(100), battle.Player2.Pokemon.CurrentHP)
	s.Equal(uint32(2), battle.Player1.Inventory.Potion)
	s.Equal(uint32(1), battle.Player1.Inventory.XAttack)
	s.Equal(uint32(1), battle.Player1.Inventory.XDefense)
	s.Equal(uint32(0), battle.Player1.AttackBoostTurns)
	s.True(battle.Player2.IsAI)
	s.Equal(s.now.Unix(), battle.CreatedAt)

	// charmander (speed 65) outspeeds tangela (speed 60)
	s.Equal(ashID, battle.NextPlayerID)
}

func (s *EngineTestSuite) TestNewBattleSpeedOrder() {
	fast := grassPokemon()
	fast.BaseSpeed = 120

	out, err := s.engine.NewBattle(&engine.NewBattleInput{
		BattleID: "battle_2",
		Player1:  engine.ParticipantSeed{PlayerID: ashID, Username: "ash", Pokemon: firePokemon()},
		Player2:  engine.ParticipantSeed{PlayerID: garyID, Username: "gary", Pokemon: fast},
		Rules:    engine.DefaultRules(),
	})
	s.Require().NoError(err)
	s.Equal(garyID, out.Battle.NextPlayerID)
}

func (s *EngineTestSuite) TestNewBattleSpeedTieFavorsPlayer1() {
	tied := grassPokemon()
	tied.BaseSpeed = firePokemon().BaseSpeed

	out, err := s.engine.NewBattle(&engine.NewBattleInput{
		BattleID: "battle_3",
		Player1:  engine.ParticipantSeed{PlayerID: ashID, Username: "ash", Pokemon: firePokemon()},
		Player2:  engine.ParticipantSeed{PlayerID: garyID, Username: "gary", Pokemon: tied},
		Rules:    engine.DefaultRules(),
	})
	s.Require().NoError(err)
	s.Equal(ashID, out.Battle.NextPlayerID)
}

func (s *EngineTestSuite) TestNewBattleWithoutPokemon() {
	_, err := s.engine.NewBattle(&engine.NewBattleInput{
		BattleID: "battle_4",
		Player1:  engine.ParticipantSeed{PlayerID: ashID, Username: "ash", Pokemon: firePokemon()},
		Player2:  engine.ParticipantSeed{PlayerID: garyID, Username: "gary"},
		Rules:    engine.DefaultRules(),
	})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *EngineTestSuite) TestNewBattleRejectsSelfBattle() {
	_, err := s.engine.NewBattle(&engine.NewBattleInput{
		BattleID: "battle_5",
		Player1:  engine.ParticipantSeed{PlayerID: ashID, Username: "ash", Pokemon: firePokemon()},
		Player2:  engine.ParticipantSeed{PlayerID: ashID, Username: "ash", Pokemon: grassPokemon()},
		Rules:    engine.DefaultRules(),
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *EngineTestSuite) TestResolveTurnAttack() {
	battle := s.newBattle()
	before := s.snapshot(battle)

	out, err := s.engine.ResolveTurn(&engine.ResolveTurnInput{
		Battle:   battle,
		PlayerID: ashID,
		Action:   entities.ActionAttack,
		RNG:      noCrit(),
	})
	s.Require().NoError(err)

	// fire 50 attack vs grass: round(50*0.3)*2 = 30
	s.Equal(int32(70), out.Battle.Player2.Pokemon.CurrentHP)
	s.Equal(garyID, out.Battle.NextPlayerID)
	s.False(out.BattleComplete)

	s.Require().Len(out.Battle.Turns, 1)
	turn := out.Battle.Turns[0]
	s.Equal(int32(1), turn.Number)
	s.Equal(ashID, turn.PlayerID)
	s.Equal(entities.ActionAttack, turn.Action)
	s.Equal(int32(30), turn.Damage)
	s.False(turn.Critical)
	s.True(turn.SuperEffective)
	s.Equal("ash attacks! It's super effective! Dealt 30 damage.", turn.Message)

	// the input battle is untouched
	s.Equal(before, s.snapshot(battle))
}

func (s *EngineTestSuite) TestResolveTurnDefendDrawsNoRandomness() {
	battle := s.newBattle()
	src := &countingSource{value: 0.0}

	out, err := s.engine.ResolveTurn(&engine.ResolveTurnInput{
		Battle:   battle,
		PlayerID: ashID,
		Action:   entities.ActionDefend,
		RNG:      src,
	})
	s.Require().NoError(err)

	s.Equal(0, src.calls, "defend must not consume randomness")
	s.True(out.Battle.Player1.Defending)
	s.Equal(int32(100), out.Battle.Player2.Pokemon.CurrentHP)

	turn := out.Battle.Turns[0]
	s.Equal(int32(0), turn.Damage)
	s.False(turn.Critical)
	s.False(turn.SuperEffective)
	s.Equal("ash chose to defend!", turn.Message)
}

func (s *EngineTestSuite) TestResolveTurnAgainstDefender() {
	battle := s.newBattle()

	out, err := s.engine.ResolveTurn(&engine.ResolveTurnInput{
		Battle: battle, PlayerID: ashID, Action: entities.ActionDefend, RNG: noCrit(),
	})
	s.Require().NoError(err)

	// gary attacks into ash's defend: round(55*0.3*0.5) = 8 base,
	// halved again for the defender to 4
	out, err = s.engine.ResolveTurn(&engine.ResolveTurnInput{
		Battle: out.Battle, PlayerID: garyID, Action: entities.ActionAttack, RNG: noCrit(),
	})
	s.Require().NoError(err)

	turn := out.Battle.Turns[1]
	s.Equal(int32(4), turn.Damage)
	s.Equal(int32(96), out.Battle.Player1.Pokemon.CurrentHP)

	// ash's defend expires once ash acts again
	out, err = s.engine.ResolveTurn(&engine.ResolveTurnInput{
		Battle: out.Battle, PlayerID: ashID, Action: entities.ActionAttack, RNG: noCrit(),
	})
	s.Require().NoError(err)
	s.False(out.Battle.Player1.Defending)
}

func (s *EngineTestSuite) TestResolveTurnOutOfOrder() {
	battle := s.newBattle()
	before := s.snapshot(battle)

	_, err := s.engine.ResolveTurn(&engine.ResolveTurnInput{
		Battle:   battle,
		PlayerID: garyID,
		Action:   entities.ActionAttack,
		RNG:      noCrit(),
	})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
	s.Equal("it is not your turn", errors.GetMessage(err))
	s.Equal(before, s.snapshot(battle))
}

func (s *EngineTestSuite) TestResolveTurnUnknownAction() {
	battle := s.newBattle()
	before := s.snapshot(battle)

	_, err := s.engine.ResolveTurn(&engine.ResolveTurnInput{
		Battle:   battle,
		PlayerID: ashID,
		Action:   entities.TurnAction("flee"),
		RNG:      noCrit(),
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Equal(before, s.snapshot(battle))
}

func (s *EngineTestSuite) TestResolveTurnNonParticipant() {
	battle := s.newBattle()

	_, err := s.engine.ResolveTurn(&engine.ResolveTurnInput{
		Battle:   battle,
		PlayerID: "player_brock",
		Action:   entities.ActionAttack,
		RNG:      noCrit(),
	})
	s.Require().Error(err)
	s.True(errors.IsPermissionDenied(err))
}

func (s *EngineTestSuite) TestResolveTurnCompletedBattle() {
	battle := s.newBattle()
	battle.Status = entities.BattleStatusCompleted
	battle.WinnerID = garyID
	before := s.snapshot(battle)

	_, err := s.engine.ResolveTurn(&engine.ResolveTurnInput{
		Battle:   battle,
		PlayerID: ashID,
		Action:   entities.ActionAttack,
		RNG:      noCrit(),
	})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
	s.Equal(before, s.snapshot(battle))
}

func (s *EngineTestSuite) TestResolveTurnCorruptedRecord() {
	battle := s.newBattle()
	battle.Player1.Pokemon.CurrentHP = 0
	battle.Player2.Pokemon.CurrentHP = 0

	_, err := s.engine.ResolveTurn(&engine.ResolveTurnInput{
		Battle:   battle,
		PlayerID: ashID,
		Action:   entities.ActionAttack,
		RNG:      noCrit(),
	})
	s.Require().Error(err)
	s.True(errors.IsDataLoss(err))
}

func (s *EngineTestSuite) TestResolveTurnWinCondition() {
	battle := s.newBattle()
	battle.Player2.Pokemon.CurrentHP = 25

	out, err := s.engine.ResolveTurn(&engine.ResolveTurnInput{
		Battle:   battle,
		PlayerID: ashID,
		Action:   entities.ActionAttack,
		RNG:      noCrit(),
	})
	s.Require().NoError(err)

	s.True(out.BattleComplete)
	s.Equal(ashID, out.WinnerID)
	s.Equal(entities.BattleStatusCompleted, out.Battle.Status)
	s.Equal(ashID, out.Battle.WinnerID)
	s.Empty(out.Battle.NextPlayerID)
	s.Equal(s.now.Unix(), out.Battle.CompletedAt)
	s.Equal(int32(0), out.Battle.Player2.Pokemon.CurrentHP)

	// raw damage stays in the log, the HP subtraction is clamped
	turn := out.Battle.Turns[0]
	s.Equal(int32(30), turn.Damage)
	s.Contains(turn.Message, "Tangela fainted! ash wins!")
}

func (s *EngineTestSuite) TestResolveTurnDeterminism() {
	battle := s.newBattle()

	run := func() string {
		seq := &rng.Fixed{Values: []float64{0.05, 0.5, 0.95, 0.2}}
		current := battle
		for _, step := range []struct {
			player string
			action entities.TurnAction
		}{
			{ashID, entities.ActionAttack},
			{garyID, entities.ActionDefend},
			{ashID, entities.ActionAttack},
			{garyID, entities.ActionAttack},
		} {
			out, err := s.engine.ResolveTurn(&engine.ResolveTurnInput{
				Battle:   current,
				PlayerID: step.player,
				Action:   step.action,
				RNG:      seq,
			})
			s.Require().NoError(err)
			current = out.Battle
		}
		return s.snapshot(current)
	}

	s.Equal(run(), run(), "identical rng sequence must replay byte-for-byte")
}

func (s *EngineTestSuite) TestResolveTurnMonotonicLog() {
	battle := s.newBattle()
	players := []string{ashID, garyID}

	for i := 0; i < 6; i++ {
		out, err := s.engine.ResolveTurn(&engine.ResolveTurnInput{
			Battle:   battle,
			PlayerID: players[i%2],
			Action:   entities.ActionDefend,
			RNG:      noCrit(),
		})
		s.Require().NoError(err)
		battle = out.Battle

		s.Require().Len(battle.Turns, i+1)
		for j, turn := range battle.Turns {
			s.Equal(int32(j+1), turn.Number)
		}
	}
}

func (s *EngineTestSuite) TestBoostLifecycle() {
	battle := s.newBattle()

	// ash uses X-Attack as a free action, then attacks boosted
	itemOut, err := s.engine.UseItem(&engine.UseItemInput{
		Battle:   battle,
		PlayerID: ashID,
		Item:     entities.ItemXAttack,
	})
	s.Require().NoError(err)
	s.Equal(uint32(2), itemOut.Battle.Player1.AttackBoostTurns)
	s.Equal(ashID, itemOut.Battle.NextPlayerID, "item use must not pass the turn")
	s.Empty(itemOut.Battle.Turns, "item use must not append a log entry")

	out, err := s.engine.ResolveTurn(&engine.ResolveTurnInput{
		Battle:   itemOut.Battle,
		PlayerID: ashID,
		Action:   entities.ActionAttack,
		RNG:      noCrit(),
	})
	s.Require().NoError(err)

	// boosted: round(50*0.3*1.5) * 2 = 45
	s.Equal(int32(45), out.Battle.Turns[0].Damage)
	s.Equal(uint32(1), out.Battle.Player1.AttackBoostTurns, "boost ticks after the resolved turn")

	// opponent's turn ticks it to zero
	out, err = s.engine.ResolveTurn(&engine.ResolveTurnInput{
		Battle:   out.Battle,
		PlayerID: garyID,
		Action:   entities.ActionDefend,
		RNG:      noCrit(),
	})
	s.Require().NoError(err)
	s.Equal(uint32(0), out.Battle.Player1.AttackBoostTurns)

	// expired: back to the unboosted 30
	out, err = s.engine.ResolveTurn(&engine.ResolveTurnInput{
		Battle:   out.Battle,
		PlayerID: ashID,
		Action:   entities.ActionAttack,
		RNG:      noCrit(),
	})
	s.Require().NoError(err)
	s.Equal(int32(15), out.Battle.Turns[2].Damage, "defend still active on gary")
}

func (s *EngineTestSuite) TestUseItemPotion() {
	battle := s.newBattle()
	battle.Player1.Pokemon.CurrentHP = 10
	before := s.snapshot(battle)

	out, err := s.engine.UseItem(&engine.UseItemInput{
		Battle:   battle,
		PlayerID: ashID,
		Item:     entities.ItemPotion,
	})
	s.Require().NoError(err)

	s.Equal(int32(60), out.Battle.Player1.Pokemon.CurrentHP)
	s.Equal(uint32(1), out.Battle.Player1.Inventory.Potion)
	s.Empty(out.Battle.Turns, "potion use must not append a log entry")
	s.Equal(ashID, out.Battle.NextPlayerID)

	s.Require().NotNil(out.Result.Heal)
	s.Equal(int32(50), out.Result.Heal.Restored)
	s.Equal(int32(60), out.Result.Heal.NewHP)
	s.Nil(out.Result.Boost)
	s.Equal("Used Potion! Restored 50 HP.", out.Result.Message)

	// Input battle untouched
	s.Equal(before, s.snapshot(battle))
}

func (s *EngineTestSuite) TestUseItemPotionClampsAtBaseHP() {
	battle := s.newBattle()
	battle.Player1.Pokemon.CurrentHP = 90

	out, err := s.engine.UseItem(&engine.UseItemInput{
		Battle:   battle,
		PlayerID: ashID,
		Item:     entities.ItemPotion,
	})
	s.Require().NoError(err)

	s.Equal(int32(100), out.Battle.Player1.Pokemon.CurrentHP)
	s.Equal(int32(10), out.Result.Heal.Restored)
}

func (s *EngineTestSuite) TestUseItemOutOfStock() {
	battle := s.newBattle()
	battle.Player1.Inventory.Potion = 0
	before := s.snapshot(battle)

	_, err := s.engine.UseItem(&engine.UseItemInput{
		Battle:   battle,
		PlayerID: ashID,
		Item:     entities.ItemPotion,
	})
	s.Require().Error(err)
	s.True(errors.IsResourceExhausted(err))
	s.Equal(before, s.snapshot(battle))
}

func (s *EngineTestSuite) TestUseItemUnknownType() {
	battle := s.newBattle()

	_, err := s.engine.UseItem(&engine.UseItemInput{
		Battle:   battle,
		PlayerID: ashID,
		Item:     entities.ItemType("master-ball"),
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *EngineTestSuite) TestUseItemOutOfTurn() {
	battle := s.newBattle()

	_, err := s.engine.UseItem(&engine.UseItemInput{
		Battle:   battle,
		PlayerID: garyID,
		Item:     entities.ItemPotion,
	})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *EngineTestSuite) TestBoostReapplyResetsDuration() {
	battle := s.newBattle()
	battle.Player1.Inventory.XAttack = 2
	battle.Player1.AttackBoostTurns = 1

	out, err := s.engine.UseItem(&engine.UseItemInput{
		Battle:   battle,
		PlayerID: ashID,
		Item:     entities.ItemXAttack,
	})
	s.Require().NoError(err)
	s.Equal(uint32(2), out.Battle.Player1.AttackBoostTurns, "re-applying resets, never stacks")
}

func (s *EngineTestSuite) TestHPNeverLeavesBounds() {
	battle := s.newBattle()
	players := []string{ashID, garyID}

	i := 0
	for battle.Status == entities.BattleStatusInProgress {
		out, err := s.engine.ResolveTurn(&engine.ResolveTurnInput{
			Battle:   battle,
			PlayerID: players[i%2],
			Action:   entities.ActionAttack,
			RNG:      noCrit(),
		})
		s.Require().NoError(err)
		battle = out.Battle
		i++

		for _, p := range []entities.Participant{battle.Player1, battle.Player2} {
			s.GreaterOrEqual(p.Pokemon.CurrentHP, int32(0))
			s.LessOrEqual(p.Pokemon.CurrentHP, p.Pokemon.BaseHP)
		}
		s.Require().Less(i, 100, "battle must terminate")
	}

	s.Equal(entities.BattleStatusCompleted, battle.Status)
	s.NotEmpty(battle.WinnerID)
}

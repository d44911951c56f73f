package kanto

import (
	"github.com/pokearena/battle-api/internal/engine"
	"github.com/pokearena/battle-api/internal/entities"
	"github.com/pokearena/battle-api/internal/errors"
)

// PotionHeal is the fixed HP a potion restores, clamped to base HP
const PotionHeal = 50

// UseItem consumes an item as a free action. The acting player must hold
// the turn, but using the item neither appends a log entry nor passes the
// turn: the player still acts afterwards.
func (e *kantoEngine) UseItem(input *engine.UseItemInput) (*engine.UseItemOutput, error) {
	if input == nil || input.Battle == nil {
		return nil, errors.InvalidArgument("battle cannot be nil")
	}
	if err := validateActor(input.Battle, input.PlayerID); err != nil {
		return nil, err
	}

	actorCheck := input.Battle.ParticipantByID(input.PlayerID)
	switch input.Item {
	case entities.ItemPotion, entities.ItemXAttack, entities.ItemXDefense:
	default:
		return nil, errors.InvalidArgumentf("unknown item type %q", input.Item)
	}
	if actorCheck.Inventory.Count(input.Item) == 0 {
		return nil, errors.ResourceExhaustedf("no %s remaining", input.Item).
			WithMeta("battle_id", input.Battle.ID).
			WithMeta("player_id", input.PlayerID)
	}

	battle := input.Battle.Clone()
	actor := battle.ParticipantByID(input.PlayerID)
	actor.Inventory.Consume(input.Item)

	result := engine.ItemResult{Item: input.Item}

	switch input.Item {
	case entities.ItemPotion:
		restored := PotionHeal
		if remaining := actor.Pokemon.BaseHP - actor.Pokemon.CurrentHP; int32(restored) > remaining {
			restored = int(remaining)
		}
		actor.Pokemon.CurrentHP += int32(restored)
		result.Heal = &engine.HealResult{
			Restored: int32(restored),
			NewHP:    actor.Pokemon.CurrentHP,
		}
		result.Message = potionMessage(int32(restored))

	case entities.ItemXAttack:
		actor.AttackBoostTurns = BoostDuration
		result.Boost = &engine.BoostResult{
			Stat:           engine.BoostAttack,
			TurnsRemaining: BoostDuration,
		}
		result.Message = attackBoostMessage(BoostDuration)

	case entities.ItemXDefense:
		actor.DefenseBoostTurns = BoostDuration
		result.Boost = &engine.BoostResult{
			Stat:           engine.BoostDefense,
			TurnsRemaining: BoostDuration,
		}
		result.Message = defenseBoostMessage(BoostDuration)
	}

	result.Inventory = actor.Inventory

	return &engine.UseItemOutput{
		Battle: battle,
		Result: result,
	}, nil
}

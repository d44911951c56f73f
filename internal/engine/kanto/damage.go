package kanto

import (
	"math"

	"github.com/pokearena/battle-api/internal/engine/typechart"
	"github.com/pokearena/battle-api/internal/entities"
	"github.com/pokearena/battle-api/internal/pkg/rng"
)

// Damage model constants
const (
	// AttackScale converts a base attack stat into base damage
	AttackScale = 0.3
	// CritChance is the probability of a critical hit per attack
	CritChance = 0.10
	// CritMultiplier doubles base damage on a critical hit
	CritMultiplier = 2.0
	// AttackBoostMultiplier applies while an attack boost is active
	AttackBoostMultiplier = 1.5
	// DamageHalving applies once for an active defend action and once more
	// for an active defense boost; the two are independent
	DamageHalving = 0.5
)

// AttackResult is the outcome of one attack computation. Damage is the raw
// value before clamping against the defender's remaining HP; the state
// machine clamps when it applies the hit, and the raw value goes in the log.
type AttackResult struct {
	Damage         int32
	Critical       bool
	SuperEffective bool
	NotEffective   bool
}

// ComputeAttack computes the damage one pokemon deals to another. Offense
// uses the attacker's primary type only; defense combines both defender
// types. Exactly one rng draw happens here, for the critical-hit check.
func ComputeAttack(
	attacker entities.BattlePokemon,
	attackBoosted bool,
	defender entities.BattlePokemon,
	defenderDefending bool,
	defenseBoosted bool,
	src rng.Source,
) AttackResult {
	base := float64(attacker.BaseAttack) * AttackScale
	typeMult := typechart.Against(attacker.PrimaryType, defender.PrimaryType, defender.SecondaryType)

	if attackBoosted {
		base *= AttackBoostMultiplier
	}

	critical := src.Float64() < CritChance
	if critical {
		base *= CritMultiplier
	}

	damage := math.Round(base * typeMult)
	if defenseBoosted {
		damage = math.Round(damage * DamageHalving)
	}
	if defenderDefending {
		damage = math.Round(damage * DamageHalving)
	}

	return AttackResult{
		Damage:         int32(damage),
		Critical:       critical,
		SuperEffective: typeMult > typechart.Normal,
		NotEffective:   typeMult < typechart.Normal,
	}
}

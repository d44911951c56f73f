// Package entities implements the battle domain entities.
// NOTE: These are data-only structs. All rules calculations (damage, boosts,
// win detection) are done by the engine, not here.
package entities

// BattleStatus represents the lifecycle state of a battle
type BattleStatus string

// Battle statuses. Completed is terminal; a completed battle is read-only.
const (
	BattleStatusInProgress BattleStatus = "in_progress"
	BattleStatusCompleted  BattleStatus = "completed"
)

// TurnAction is an action a participant can submit for a turn
type TurnAction string

// Turn actions. Item use is deliberately not a TurnAction: it is a free
// action that never appends a turn entry.
const (
	ActionAttack TurnAction = "attack"
	ActionDefend TurnAction = "defend"
)

// ItemType identifies a consumable item
type ItemType string

// Item types
const (
	ItemPotion   ItemType = "potion"
	ItemXAttack  ItemType = "x-attack"
	ItemXDefense ItemType = "x-defense"
)

// AllItemTypes lists every valid item type
var AllItemTypes = []ItemType{ItemPotion, ItemXAttack, ItemXDefense}

// BattlePokemon is a snapshot of a pokemon taken at battle start. It is
// owned exclusively by the participant holding it and never shared across
// battles. CurrentHP is the only mutable field.
type BattlePokemon struct {
	SpeciesID     string `json:"species_id"`
	Name          string `json:"name"`
	SpriteURL     string `json:"sprite_url,omitempty"`
	PrimaryType   string `json:"primary_type"`
	SecondaryType string `json:"secondary_type,omitempty"`
	BaseHP        int32  `json:"base_hp"`
	BaseAttack    int32  `json:"base_attack"`
	BaseDefense   int32  `json:"base_defense"`
	BaseSpeed     int32  `json:"base_speed"`
	CurrentHP     int32  `json:"current_hp"`
}

// Inventory holds a participant's remaining consumables. Counts are fixed
// at battle creation and only ever decrease.
type Inventory struct {
	Potion   uint32 `json:"potion"`
	XAttack  uint32 `json:"x_attack"`
	XDefense uint32 `json:"x_defense"`
}

// Count returns the remaining count for an item type
func (inv *Inventory) Count(item ItemType) uint32 {
	switch item {
	case ItemPotion:
		return inv.Potion
	case ItemXAttack:
		return inv.XAttack
	case ItemXDefense:
		return inv.XDefense
	default:
		return 0
	}
}

// Consume decrements the count for an item type. It is the caller's job to
// check Count first; consuming at zero is a no-op.
func (inv *Inventory) Consume(item ItemType) {
	switch item {
	case ItemPotion:
		if inv.Potion > 0 {
			inv.Potion--
		}
	case ItemXAttack:
		if inv.XAttack > 0 {
			inv.XAttack--
		}
	case ItemXDefense:
		if inv.XDefense > 0 {
			inv.XDefense--
		}
	}
}

// Participant is one side of a battle: trainer, active pokemon snapshot,
// consumables, and boost bookkeeping. A boost is active iff its turn counter
// is greater than zero.
type Participant struct {
	PlayerID          string        `json:"player_id"`
	Username          string        `json:"username"`
	Pokemon           BattlePokemon `json:"pokemon"`
	Inventory         Inventory     `json:"inventory"`
	AttackBoostTurns  uint32        `json:"attack_boost_turns"`
	DefenseBoostTurns uint32        `json:"defense_boost_turns"`
	// Defending is true from the moment this participant resolves a defend
	// action until their next resolved action. Derived from the turn log;
	// cached here so the engine never rescans history.
	Defending bool `json:"defending"`
	IsAI      bool `json:"is_ai,omitempty"`
}

// AttackBoostActive reports whether the attack boost applies
func (p *Participant) AttackBoostActive() bool {
	return p.AttackBoostTurns > 0
}

// DefenseBoostActive reports whether the defense boost applies
func (p *Participant) DefenseBoostActive() bool {
	return p.DefenseBoostTurns > 0
}

// Turn is one append-only entry of the battle log. Entries are immutable
// once created; the log is the authoritative history and the cached HP and
// boost state must always be reconstructable by replaying it.
type Turn struct {
	Number         int32      `json:"turn_number"`
	PlayerID       string     `json:"player_id"`
	Action         TurnAction `json:"action"`
	Damage         int32      `json:"damage"`
	Critical       bool       `json:"is_critical"`
	SuperEffective bool       `json:"is_super_effective"`
	Message        string     `json:"message"`
}

// Battle is the full battle record. It is created once at battle start and
// mutated solely through the engine's turn-resolution protocol.
type Battle struct {
	ID      string       `json:"id"`
	Player1 Participant  `json:"player1"`
	Player2 Participant  `json:"player2"`
	Turns   []Turn       `json:"turns"`
	Status  BattleStatus `json:"status"`
	// WinnerID is empty while the battle is in progress
	WinnerID string `json:"winner_id,omitempty"`
	// NextPlayerID is the id of the participant whose action resolves next.
	// Turn order is carried explicitly here rather than inferred from log
	// length, since item use interleaves without appending entries.
	NextPlayerID string `json:"next_player_id"`
	CreatedAt    int64  `json:"created_at"`
	CompletedAt  int64  `json:"completed_at,omitempty"`
}

// ParticipantByID returns the participant with the given player id, or nil
func (b *Battle) ParticipantByID(playerID string) *Participant {
	switch playerID {
	case b.Player1.PlayerID:
		return &b.Player1
	case b.Player2.PlayerID:
		return &b.Player2
	default:
		return nil
	}
}

// OpponentOf returns the other side's participant, or nil for a non-participant
func (b *Battle) OpponentOf(playerID string) *Participant {
	switch playerID {
	case b.Player1.PlayerID:
		return &b.Player2
	case b.Player2.PlayerID:
		return &b.Player1
	default:
		return nil
	}
}

// HasParticipant reports whether the player is one of the two sides
func (b *Battle) HasParticipant(playerID string) bool {
	return b.ParticipantByID(playerID) != nil
}

// Clone returns a deep copy of the battle record. The engine transforms
// copies so rejected calls never leave partial mutations behind.
func (b *Battle) Clone() *Battle {
	out := *b
	out.Turns = make([]Turn, len(b.Turns))
	copy(out.Turns, b.Turns)
	return &out
}

package entities

// Player is a trainer record. ActivePokemon is the snapshot template copied
// into a battle at creation; the copy's CurrentHP starts at BaseHP.
type Player struct {
	ID            string         `json:"id"`
	Username      string         `json:"username"`
	ActivePokemon *BattlePokemon `json:"active_pokemon,omitempty"`
	Wins          int32          `json:"wins"`
	Losses        int32          `json:"losses"`
	IsAI          bool           `json:"is_ai,omitempty"`
	CreatedAt     int64          `json:"created_at"`
	UpdatedAt     int64          `json:"updated_at"`
}

// HasActivePokemon reports whether the player can enter a battle
func (p *Player) HasActivePokemon() bool {
	return p.ActivePokemon != nil
}

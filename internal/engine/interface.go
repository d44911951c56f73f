// Package engine defines the battle resolution boundary: pure
// transformations from one battle snapshot to the next. Implementations
// perform no I/O; persistence and serialization belong to the caller.
package engine

//go:generate mockgen -destination=mock/mock_engine.go -package=enginemock github.com/pokearena/battle-api/internal/engine Engine

// Engine owns the battle rules: setup, turn resolution, and item use.
//
// Every method is all-or-nothing. On error the input battle is untouched
// and the returned battle is nil; on success the returned battle is a new
// value and the input is still untouched. Callers must serialize calls per
// battle id; the engine exposes no locking of its own.
type Engine interface {
	// NewBattle creates a battle record from two participant seeds.
	// Returns errors.FailedPrecondition if either side has no pokemon.
	NewBattle(input *NewBattleInput) (*NewBattleOutput, error)

	// ResolveTurn resolves one half-exchange: the acting player's attack or
	// defend against the opponent's current state.
	// Returns errors.FailedPrecondition for a completed battle or an
	// out-of-order actor, errors.InvalidArgument for an unknown action,
	// errors.PermissionDenied for a non-participant, errors.DataLoss for a
	// corrupted record.
	ResolveTurn(input *ResolveTurnInput) (*ResolveTurnOutput, error)

	// UseItem consumes an inventory item as a free action: no turn entry is
	// appended and the turn order does not advance.
	// Returns errors.ResourceExhausted when the item is out of stock, plus
	// the same precondition errors as ResolveTurn.
	UseItem(input *UseItemInput) (*UseItemOutput, error)
}

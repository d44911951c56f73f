// Package errors provides structured error handling for the battle service.
//
// Errors carry a Code, a user-facing Message, an optional wrapped Cause, and
// free-form metadata. Codes mirror gRPC status codes so the serving layer
// translates without a mapping table.
//
// Creating errors:
//
//	err := errors.NotFound("battle not found")
//	err := errors.FailedPrecondition("it is not your turn")
//
// Adding metadata:
//
//	err := errors.NotFound("battle not found").WithMeta("battle_id", id)
//
// Wrapping errors:
//
//	if err := repo.Get(ctx, in); err != nil {
//	    return errors.Wrap(err, "failed to load battle")
//	}
//
// Checking errors:
//
//	if errors.IsFailedPrecondition(err) {
//	    // reject the request, nothing was mutated
//	}
//
// Engine error taxonomy, by code:
//   - FAILED_PRECONDITION: battle not active, not your turn, no active pokemon
//   - RESOURCE_EXHAUSTED: item out of stock
//   - INVALID_ARGUMENT: unknown action or item type, bad input
//   - PERMISSION_DENIED: caller is not a participant
//   - NOT_FOUND: battle, player, or species lookup misses
//   - DATA_LOSS: corrupted battle record (invariant violation)
package errors

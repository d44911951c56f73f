// Package battle provides the interface for battle persistence
package battle

//go:generate mockgen -destination=mock/mock_repository.go -package=battlemock github.com/pokearena/battle-api/internal/repositories/battle Repository

import (
	"context"

	"github.com/pokearena/battle-api/internal/entities"
)

// Repository defines the interface for battle persistence
type Repository interface {
	// Create persists a new battle
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if a battle with the same ID exists
	// Returns errors.Internal for storage failures
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a battle by ID
	// Returns errors.InvalidArgument for empty IDs
	// Returns errors.NotFound if the battle doesn't exist
	// Returns errors.Internal for storage failures
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces an existing battle record
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.NotFound if the battle doesn't exist
	// Returns errors.Internal for storage failures
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// GetActiveByPlayerID retrieves the in-progress battle for a player
	// Returns errors.InvalidArgument for empty player IDs
	// Returns errors.NotFound if the player has no active battle
	// Returns errors.Internal for storage failures
	GetActiveByPlayerID(ctx context.Context, input GetActiveByPlayerIDInput) (*GetActiveByPlayerIDOutput, error)

	// ListByPlayerID retrieves all battles a player has participated in,
	// newest first
	// Returns errors.InvalidArgument for empty player IDs
	// Returns errors.Internal for storage failures
	ListByPlayerID(ctx context.Context, input ListByPlayerIDInput) (*ListByPlayerIDOutput, error)
}

// CreateInput defines the input for creating a battle
type CreateInput struct {
	Battle *entities.Battle
}

// CreateOutput defines the output for creating a battle
type CreateOutput struct {
	Battle *entities.Battle
}

// GetInput defines the input for getting a battle
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a battle
type GetOutput struct {
	Battle *entities.Battle
}

// UpdateInput defines the input for updating a battle
type UpdateInput struct {
	Battle *entities.Battle
}

// UpdateOutput defines the output for updating a battle
type UpdateOutput struct {
	Battle *entities.Battle
}

// GetActiveByPlayerIDInput defines the input for looking up a player's active battle
type GetActiveByPlayerIDInput struct {
	PlayerID string
}

// GetActiveByPlayerIDOutput defines the output for looking up a player's active battle
type GetActiveByPlayerIDOutput struct {
	Battle *entities.Battle
}

// ListByPlayerIDInput defines the input for listing battles by player
type ListByPlayerIDInput struct {
	PlayerID string
}

// ListByPlayerIDOutput defines the output for listing battles by player
type ListByPlayerIDOutput struct {
	Battles []*entities.Battle
}

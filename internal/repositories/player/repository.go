// Package player provides the interface for player persistence
package player

//go:generate mockgen -destination=mock/mock_repository.go -package=playermock github.com/pokearena/battle-api/internal/repositories/player Repository

import (
	"context"

	"github.com/pokearena/battle-api/internal/entities"
)

// Repository defines the interface for player persistence
type Repository interface {
	// Create persists a new player
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if a player with the same ID exists
	// Returns errors.Internal for storage failures
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a player by ID
	// Returns errors.InvalidArgument for empty IDs
	// Returns errors.NotFound if the player doesn't exist
	// Returns errors.Internal for storage failures
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces an existing player record
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.NotFound if the player doesn't exist
	// Returns errors.Internal for storage failures
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// ListAvailable retrieves players that have an active pokemon and can
	// be challenged, excluding the given player
	// Returns errors.Internal for storage failures
	ListAvailable(ctx context.Context, input ListAvailableInput) (*ListAvailableOutput, error)
}

// CreateInput defines the input for creating a player
type CreateInput struct {
	Player *entities.Player
}

// CreateOutput defines the output for creating a player
type CreateOutput struct {
	Player *entities.Player
}

// GetInput defines the input for getting a player
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a player
type GetOutput struct {
	Player *entities.Player
}

// UpdateInput defines the input for updating a player
type UpdateInput struct {
	Player *entities.Player
}

// UpdateOutput defines the output for updating a player
type UpdateOutput struct {
	Player *entities.Player
}

// ListAvailableInput defines the input for listing challengeable players
type ListAvailableInput struct {
	ExcludePlayerID string
}

// ListAvailableOutput defines the output for listing challengeable players
type ListAvailableOutput struct {
	Players []*entities.Player
}

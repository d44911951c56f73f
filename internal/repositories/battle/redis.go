package battle

import (
	"context"
	"encoding/json"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/pokearena/battle-api/internal/entities"
	"github.com/pokearena/battle-api/internal/errors"
	"github.com/pokearena/battle-api/internal/pkg/clock"
	redisclient "github.com/pokearena/battle-api/internal/redis"
)

const (
	battleKeyPrefix  = "battle:"
	historyKeyPrefix = "battle:player:"
	activeKeyPrefix  = "battle:active:"

	// Error messages
	errBattleNil     = "battle cannot be nil"
	errBattleIDEmpty = "battle ID cannot be empty"
	errPlayerIDEmpty = "player ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis battle repository.
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed battle repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Use real clock if none provided
	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  c,
	}, nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Battle == nil {
		return nil, errors.InvalidArgument(errBattleNil)
	}
	if input.Battle.ID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	key := battleKeyPrefix + input.Battle.ID

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("battle with ID %s already exists", input.Battle.ID)
	}

	data, err := json.Marshal(input.Battle)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal battle data")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0) // battles are kept for history

	// History indexes are sorted by creation time so listing reads newest first
	for _, playerID := range []string{input.Battle.Player1.PlayerID, input.Battle.Player2.PlayerID} {
		if playerID == "" {
			continue
		}
		pipe.ZAdd(ctx, historyKeyPrefix+playerID, redis.Z{
			Score:  float64(input.Battle.CreatedAt),
			Member: input.Battle.ID,
		})
		if input.Battle.Status == entities.BattleStatusInProgress {
			pipe.Set(ctx, activeKeyPrefix+playerID, input.Battle.ID, 0)
		}
	}

	if _, err = pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create battle")
	}

	return &CreateOutput{Battle: input.Battle}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	key := battleKeyPrefix + input.ID
	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("battle with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get battle")
	}

	var battle entities.Battle
	if err := json.Unmarshal([]byte(result), &battle); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal battle data")
	}

	return &GetOutput{Battle: &battle}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Battle == nil {
		return nil, errors.InvalidArgument(errBattleNil)
	}
	if input.Battle.ID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	key := battleKeyPrefix + input.Battle.ID

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("battle with ID %s not found", input.Battle.ID)
	}

	data, err := json.Marshal(input.Battle)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal battle data")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)

	// A finished battle releases both players for new battles
	if input.Battle.Status != entities.BattleStatusInProgress {
		for _, playerID := range []string{input.Battle.Player1.PlayerID, input.Battle.Player2.PlayerID} {
			if playerID != "" {
				pipe.Del(ctx, activeKeyPrefix+playerID)
			}
		}
	}

	if _, err = pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to update battle")
	}

	return &UpdateOutput{Battle: input.Battle}, nil
}

func (r *redisRepository) GetActiveByPlayerID(
	ctx context.Context,
	input GetActiveByPlayerIDInput,
) (*GetActiveByPlayerIDOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	battleID, err := r.client.Get(ctx, activeKeyPrefix+input.PlayerID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("player %s has no active battle", input.PlayerID)
		}
		return nil, errors.Wrapf(err, "failed to get active battle pointer")
	}

	getOutput, err := r.Get(ctx, GetInput{ID: battleID})
	if err != nil {
		if errors.IsNotFound(err) {
			// Stale pointer, clean it up
			slog.WarnContext(ctx, "active battle pointer is stale, cleaning up",
				"player_id", input.PlayerID,
				"battle_id", battleID)
			r.client.Del(ctx, activeKeyPrefix+input.PlayerID)
			return nil, errors.NotFoundf("player %s has no active battle", input.PlayerID)
		}
		return nil, err
	}

	return &GetActiveByPlayerIDOutput{Battle: getOutput.Battle}, nil
}

func (r *redisRepository) ListByPlayerID(
	ctx context.Context,
	input ListByPlayerIDInput,
) (*ListByPlayerIDOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	indexKey := historyKeyPrefix + input.PlayerID
	battleIDs, err := r.client.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get battles from index %s", indexKey)
	}

	battles := make([]*entities.Battle, 0, len(battleIDs))
	for _, id := range battleIDs {
		getOutput, err := r.Get(ctx, GetInput{ID: id})
		if err != nil {
			// If the record is gone, clean up the index
			if errors.IsNotFound(err) {
				slog.WarnContext(ctx, "battle not found, cleaning up index",
					"battle_id", id,
					"index_key", indexKey)
				r.client.ZRem(ctx, indexKey, id)
				continue
			}
			return nil, errors.Wrapf(err, "failed to get battle %s", id)
		}
		battles = append(battles, getOutput.Battle)
	}

	slog.DebugContext(ctx, "listed battles by player",
		"player_id", input.PlayerID,
		"count", len(battles))

	return &ListByPlayerIDOutput{Battles: battles}, nil
}

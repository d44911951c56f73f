package main

import (
	"context"
	"fmt"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cobra"

	"github.com/pokearena/battle-api/internal/engine"
	"github.com/pokearena/battle-api/internal/entities"
	battleorch "github.com/pokearena/battle-api/internal/orchestrators/battle"
	"github.com/pokearena/battle-api/internal/pkg/rng"
	redisclient "github.com/pokearena/battle-api/internal/redis"
)

var (
	simulateSpecies string
	simulateSeed    uint64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a local battle against an AI opponent",
	Long: `Run one full battle against a fabricated AI trainer on an embedded
in-memory store and print the turn log. A fixed seed replays the same battle.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simulateSpecies, "species", "charmander", "species for the simulated player")
	simulateCmd.Flags().Uint64Var(&simulateSeed, "seed", 0, "rng seed (0 for random play)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	mr, err := miniredis.Run()
	if err != nil {
		return fmt.Errorf("failed to start embedded store: %w", err)
	}
	defer mr.Close()

	client, err := redisclient.NewClient(mr.Addr(), nil)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}

	var src rng.Source
	if simulateSeed != 0 {
		src = rng.Seeded(simulateSeed)
	}

	svc, err := buildService(client, src, engine.DefaultRules())
	if err != nil {
		return err
	}

	playerOut, err := svc.RegisterPlayer(ctx, &battleorch.RegisterPlayerInput{
		Username:  "red",
		SpeciesID: simulateSpecies,
	})
	if err != nil {
		return fmt.Errorf("failed to register player: %w", err)
	}
	player := playerOut.Player

	createOut, err := svc.CreateBattle(ctx, &battleorch.CreateBattleInput{
		PlayerID: player.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to create battle: %w", err)
	}
	battle := createOut.Battle

	fmt.Printf("%s's %s vs %s's %s\n",
		battle.Player1.Username, battle.Player1.Pokemon.Name,
		battle.Player2.Username, battle.Player2.Pokemon.Name)

	for battle.Status == entities.BattleStatusInProgress {
		me := battle.ParticipantByID(player.ID)

		// Drink a potion (free action) when below a third of base HP
		if me.Inventory.Potion > 0 && me.Pokemon.CurrentHP*3 < me.Pokemon.BaseHP {
			itemOut, err := svc.UseItem(ctx, &battleorch.UseItemInput{
				BattleID: battle.ID,
				PlayerID: player.ID,
				Item:     entities.ItemPotion,
			})
			if err != nil {
				return fmt.Errorf("failed to use item: %w", err)
			}
			battle = itemOut.Battle
			fmt.Printf("       %s\n", itemOut.Result.Message)
		}

		turnOut, err := svc.SubmitTurn(ctx, &battleorch.SubmitTurnInput{
			BattleID: battle.ID,
			PlayerID: player.ID,
			Action:   entities.ActionAttack,
		})
		if err != nil {
			return fmt.Errorf("failed to submit turn: %w", err)
		}
		battle = turnOut.Battle

		fmt.Printf("%3d  %s\n", turnOut.PlayerTurn.Number, turnOut.PlayerTurn.Message)
		if turnOut.AITurn != nil {
			fmt.Printf("%3d  %s\n", turnOut.AITurn.Number, turnOut.AITurn.Message)
		}
	}

	fmt.Printf("\nBattle %s finished in %d turns, winner: %s\n",
		battle.ID, len(battle.Turns), battle.WinnerID)
	return nil
}

package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/pokearena/battle-api/internal/clients/pokedex"
	"github.com/pokearena/battle-api/internal/engine"
	"github.com/pokearena/battle-api/internal/engine/kanto"
	battleorch "github.com/pokearena/battle-api/internal/orchestrators/battle"
	"github.com/pokearena/battle-api/internal/pkg/idgen"
	"github.com/pokearena/battle-api/internal/pkg/rng"
	redisclient "github.com/pokearena/battle-api/internal/redis"
	battlerepo "github.com/pokearena/battle-api/internal/repositories/battle"
	playerrepo "github.com/pokearena/battle-api/internal/repositories/player"
)

var (
	grpcPort     int
	redisAddress string

	startingPotions  uint32
	startingXAttack  uint32
	startingXDefense uint32
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the gRPC server",
	Long:  `Start the battle-api gRPC server with all configured services.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().IntVar(&grpcPort, "port", 50051, "gRPC server port")
	serverCmd.Flags().StringVar(&redisAddress, "redis-address", "localhost:6379", "Redis address")

	defaults := engine.DefaultRules()
	serverCmd.Flags().Uint32Var(&startingPotions, "potions", defaults.StartingPotions, "Starting potion count per battle")
	serverCmd.Flags().Uint32Var(&startingXAttack, "x-attacks", defaults.StartingXAttack, "Starting X-Attack count per battle")
	serverCmd.Flags().Uint32Var(&startingXDefense, "x-defenses", defaults.StartingXDefense, "Starting X-Defense count per battle")
}

// buildService wires the storage, engine, and catalog into the battle
// service. A nil src uses real randomness.
func buildService(client redisclient.Client, src rng.Source, rules engine.Rules) (battleorch.Service, error) {
	battles, err := battlerepo.NewRedis(&battlerepo.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create battle repository: %w", err)
	}

	players, err := playerrepo.NewRedis(&playerrepo.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create player repository: %w", err)
	}

	eng, err := kanto.New(&kanto.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	dex, err := pokedex.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create pokedex client: %w", err)
	}

	return battleorch.NewOrchestrator(&battleorch.Config{
		BattleRepo:  battles,
		PlayerRepo:  players,
		Engine:      eng,
		Pokedex:     dex,
		BattleIDGen: idgen.NewUUID("battle"),
		PlayerIDGen: idgen.NewUUID("player"),
		RNG:         src,
		Rules:       &rules,
	})
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal, gracefully stopping...")
		cancel()
	}()

	client, err := redisclient.NewClient(redisAddress, nil)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}

	svc, err := buildService(client, nil, engine.Rules{
		StartingPotions:  startingPotions,
		StartingXAttack:  startingXAttack,
		StartingXDefense: startingXDefense,
	})
	if err != nil {
		return err
	}

	// Readiness check: the embedded catalog must be loadable
	starters, err := svc.ListStarters(ctx, &battleorch.ListStartersInput{})
	if err != nil {
		return fmt.Errorf("failed to load species catalog: %w", err)
	}
	log.Printf("Battle service ready with %d starter species", len(starters.Starters))

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", grpcPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.StreamServerInterceptor(),
		),
	)

	// Register health service
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("pokearena.battle.v1.BattleService", grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("gRPC server starting on port %d...", grpcPort)
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("Shutting down gRPC server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()

		select {
		case <-shutdownCtx.Done():
			log.Println("Graceful shutdown timeout exceeded, forcing stop")
			srv.Stop()
		case <-stopped:
			log.Println("Server stopped gracefully")
		}

		return nil
	case err := <-errChan:
		return err
	}
}

func logFunc(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
	log.Printf("[%v] %s %v", level, msg, fields)
}

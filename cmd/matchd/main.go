package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/duelforge/duelforge/internal/archetype"
	"github.com/duelforge/duelforge/internal/card/scryfall"
	"github.com/duelforge/duelforge/internal/config"
	"github.com/duelforge/duelforge/internal/deck"
	"github.com/duelforge/duelforge/internal/decision"
	"github.com/duelforge/duelforge/internal/game"
	"github.com/duelforge/duelforge/internal/server"
	"github.com/duelforge/duelforge/internal/stats"
)

var (
	configPath = flag.String("config", "", "path to configuration file")
	version    = "dev" // set via ldflags during build

	importPath = flag.String("import", "", "decklist file to import, then exit")
	importName = flag.String("import-name", "", "deck name for -import")

	deck1  = flag.String("deck1", "", "player 1 deck name")
	deck2  = flag.String("deck2", "", "player 2 deck name")
	name1  = flag.String("name1", "player1", "player 1 name")
	name2  = flag.String("name2", "player2", "player 2 name")
	human1 = flag.Bool("human1", false, "player 1 is human")
	human2 = flag.Bool("human2", false, "player 2 is human")
	remote = flag.Bool("remote", false, "prompt humans over WebSocket instead of stdin")
	gameNo = flag.Int("game", 1, "game number within the match")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting duelforge",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	if *importPath != "" {
		if err := importDeck(ctx, cfg, logger); err != nil {
			logger.Fatal("deck import failed", zap.Error(err))
		}
		return
	}

	if *deck1 == "" || *deck2 == "" {
		fmt.Fprintln(os.Stderr, "both -deck1 and -deck2 are required")
		os.Exit(1)
	}

	if err := runMatch(ctx, cfg, logger); err != nil {
		logger.Fatal("match failed", zap.Error(err))
	}
}

// importDeck builds a deck from a decklist file via the card catalog
// and saves it to the deck store.
func importDeck(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if *importName == "" {
		return fmt.Errorf("-import requires -import-name")
	}

	text, err := os.ReadFile(*importPath)
	if err != nil {
		return fmt.Errorf("reading decklist: %w", err)
	}

	catalog := scryfall.NewClient(cfg.Scryfall.BaseURL, logger)
	catalog.SetTimeout(cfg.Scryfall.Timeout)

	cards, err := deck.ParseDecklist(ctx, string(text), catalog)
	if err != nil {
		return err
	}

	decks := deck.NewStore(cfg.Decks.Dir, logger)
	if err := decks.SaveDeck(cards, *importName, cfg.Match.Format); err != nil {
		return err
	}

	logger.Info("deck imported",
		zap.String("deck", *importName),
		zap.String("format", cfg.Match.Format),
		zap.Int("cards", len(cards)),
	)
	return nil
}

func runMatch(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	statsStore, closeStats, err := openStats(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStats()

	var promptServer *server.Server
	if *remote && (*human1 || *human2) {
		promptServer = server.New(cfg.Server.WebSocket, logger)
		go func() {
			if serveErr := promptServer.Start(); serveErr != nil {
				logger.Error("prompt server error", zap.Error(serveErr))
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = promptServer.Shutdown(shutdownCtx)
		}()
	}

	seed := cfg.Match.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	p1, err := playerSetup(ctx, cfg, logger, promptServer, rng, *name1, *deck1, *human1)
	if err != nil {
		return err
	}
	p2, err := playerSetup(ctx, cfg, logger, promptServer, rng, *name2, *deck2, *human2)
	if err != nil {
		return err
	}

	match := game.NewMatch(game.MatchConfig{
		Format:     cfg.Match.Format,
		GameNumber: *gameNo,
		Seed:       seed,
		Players:    [2]game.PlayerSetup{p1, p2},
	},
		deck.NewStore(cfg.Decks.Dir, logger),
		archetype.NewStore(cfg.Catalog.Dir, logger),
		statsStore,
		logger,
	)

	if err := match.Run(ctx); err != nil {
		return err
	}

	switch match.State() {
	case game.StateMatchEnded:
		logger.Info("match result",
			zap.String("winner", match.Winner().Name),
			zap.String("loser", match.Loser().Name),
		)
		if promptServer != nil {
			promptServer.Broadcast(server.Message{Type: "event", Text: "MATCH_ENDED"})
		}
	default:
		logger.Info("match ready for play",
			zap.Stringer("state", match.State()),
			zap.String("first_player", match.CurrentPlayer().Name),
			zap.Int64("seed", seed),
		)
	}
	return nil
}

// playerSetup builds one side's configuration: human players prompt
// over stdin or WebSocket, automated players use the heuristic
// policies with the shared seeded RNG.
func playerSetup(ctx context.Context, cfg *config.Config, logger *zap.Logger, promptServer *server.Server, rng *rand.Rand, name, deckName string, human bool) (game.PlayerSetup, error) {
	setup := game.PlayerSetup{Name: name, DeckName: deckName}

	if !human {
		policyCfg := decision.AutomatedConfig{
			PlayProbability: cfg.Decision.PlayProbability,
			MinLands:        cfg.Decision.MinLands,
			MaxLands:        cfg.Decision.MaxLands,
			MaxMulligans:    cfg.Decision.MaxMulligans,
		}
		setup.Kind = game.PlayerAutomated
		setup.PlayDraw = decision.NewAutomatedPlayDraw(policyCfg, rng, logger)
		setup.Mulligan = decision.NewAutomatedMulligan(policyCfg, logger)
		return setup, nil
	}

	var prompter decision.Prompter
	if promptServer != nil {
		logger.Info("waiting for prompt client", zap.String("player", name))
		session, err := promptServer.AwaitSession(ctx, name)
		if err != nil {
			return setup, err
		}
		prompter = session
	} else {
		prompter = decision.NewStdinPrompter(os.Stdin, os.Stdout)
	}

	setup.Kind = game.PlayerHuman
	setup.PlayDraw = decision.NewHumanPlayDraw(prompter, logger)
	setup.Mulligan = decision.NewHumanMulligan(prompter, logger)
	return setup, nil
}

func openStats(ctx context.Context, cfg *config.Config, logger *zap.Logger) (stats.Store, func(), error) {
	switch cfg.Stats.Backend {
	case "postgres":
		store, err := stats.OpenPostgres(ctx, cfg.Stats.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("stats store ready", zap.String("backend", "postgres"))
		return store, store.Close, nil
	default:
		store := stats.NewFileStore(cfg.Stats.Dir, logger)
		logger.Info("stats store ready",
			zap.String("backend", "file"),
			zap.String("dir", cfg.Stats.Dir),
		)
		return store, func() {}, nil
	}
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

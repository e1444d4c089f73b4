// Package main provides the dicehall binary: an interactive terminal table
// for Farkle and Yahtzee with local persistence of saves, match history, and
// player profiles.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicehall/internal/config"
	"github.com/cory-johannsen/dicehall/internal/game/dice"
	"github.com/cory-johannsen/dicehall/internal/game/farkle"
	"github.com/cory-johannsen/dicehall/internal/game/player"
	"github.com/cory-johannsen/dicehall/internal/game/rules"
	"github.com/cory-johannsen/dicehall/internal/game/yahtzee"
	"github.com/cory-johannsen/dicehall/internal/observability"
	"github.com/cory-johannsen/dicehall/internal/storage"
	"github.com/cory-johannsen/dicehall/internal/storage/fs"
	"github.com/cory-johannsen/dicehall/internal/storage/memory"
	"github.com/cory-johannsen/dicehall/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty uses built-in defaults")
	logPath := flag.String("log", "dicehall.log", "log file path; keeps logs off the table")
	flag.Parse()

	ctx := context.Background()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}

	logger, err := observability.NewLogger(cfg.Logging, *logPath)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	stores, cleanup, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("initializing storage", zap.Error(err))
	}
	defer cleanup()

	ruleset := rules.Default()
	if cfg.Game.RulesDir != "" {
		ruleset, err = rules.LoadDir(cfg.Game.RulesDir)
		if err != nil {
			logger.Fatal("loading rules", zap.Error(err))
		}
	}

	logger.Info("dicehall starting",
		zap.String("backend", cfg.Storage.Backend),
		zap.Int("target_score", ruleset.TargetScore),
	)

	a := &app{
		cfg:     cfg,
		ruleset: ruleset,
		src:     dice.NewCryptoSource(),
		stores:  stores,
		logger:  logger,
		in:      bufio.NewScanner(os.Stdin),
	}
	a.run(ctx)
}

// buildStores selects the persistence backend from configuration. The
// returned cleanup releases backend resources.
func buildStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Stores, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return storage.Stores{}, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return postgres.Stores(pool), pool.Close, nil
	case config.BackendFile:
		return fs.NewStores(cfg.Storage.Dir), func() {}, nil
	case config.BackendMemory:
		logger.Warn("memory backend selected: nothing survives exit")
		return memory.NewStores(), func() {}, nil
	default:
		return storage.Stores{}, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

type app struct {
	cfg     config.Config
	ruleset rules.Rules
	src     dice.Source
	stores  storage.Stores
	logger  *zap.Logger
	in      *bufio.Scanner
}

// prompt prints a prompt and returns the next trimmed input line. Returns
// false on EOF.
func (a *app) prompt(format string, args ...any) (string, bool) {
	fmt.Printf(format, args...)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

func (a *app) run(ctx context.Context) {
	for {
		fmt.Println()
		fmt.Println("=== dicehall ===")
		fmt.Println("  1) new farkle game")
		fmt.Println("  2) new yahtzee game")
		fmt.Println("  3) resume a saved game")
		fmt.Println("  4) match history")
		fmt.Println("  5) player profiles")
		fmt.Println("  q) quit")
		choice, ok := a.prompt("> ")
		if !ok {
			return
		}
		switch choice {
		case "1":
			a.newFarkle(ctx)
		case "2":
			a.newYahtzee(ctx)
		case "3":
			a.resume(ctx)
		case "4":
			a.showHistory(ctx)
		case "5":
			a.showProfiles(ctx)
		case "q", "quit", "exit":
			return
		}
	}
}

// promptPlayers reads player names and assigns palette colors round-robin.
func (a *app) promptPlayers() []player.Player {
	var players []player.Player
	for {
		name, ok := a.prompt("player %d name (blank to finish): ", len(players)+1)
		if !ok {
			break
		}
		if name == "" {
			if len(players) > 0 {
				break
			}
			continue
		}
		p := player.Player{
			Name:  name,
			Color: player.DefaultColors[len(players)%len(player.DefaultColors)],
		}
		if err := p.Validate(); err != nil {
			fmt.Printf("  %v\n", err)
			continue
		}
		players = append(players, p)
	}
	return players
}

func (a *app) newFarkle(ctx context.Context) {
	players := a.promptPlayers()
	if len(players) == 0 {
		return
	}
	m, err := farkle.NewMatch(players, a.ruleset, a.src, a.stores, a.logger)
	if err != nil {
		fmt.Printf("starting game: %v\n", err)
		return
	}
	a.playFarkle(ctx, m)
}

func (a *app) newYahtzee(ctx context.Context) {
	players := a.promptPlayers()
	if len(players) == 0 {
		return
	}
	m, err := yahtzee.NewMatch(players, a.src, a.stores, a.logger)
	if err != nil {
		fmt.Printf("starting game: %v\n", err)
		return
	}
	a.playYahtzee(ctx, m)
}

func (a *app) resume(ctx context.Context) {
	if a.stores.Saves == nil {
		fmt.Println("no save storage configured")
		return
	}
	saves, err := a.stores.Saves.List(ctx)
	if err != nil {
		fmt.Printf("listing saves: %v\n", err)
		return
	}
	if len(saves) == 0 {
		fmt.Println("no saved games")
		return
	}
	for i, s := range saves {
		names := make([]string, len(s.Players))
		for j, p := range s.Players {
			names[j] = p.Name
		}
		fmt.Printf("  %d) %s with %s, started %s\n",
			i+1, s.GameType, strings.Join(names, ", "),
			s.GameStartTime.Format("2006-01-02 15:04"))
	}
	choice, ok := a.prompt("resume which game? ")
	if !ok {
		return
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(saves) {
		return
	}
	save := saves[n-1]
	switch save.GameType {
	case storage.GameTypeFarkle:
		m, err := farkle.RestoreMatch(save, a.ruleset, a.src, a.stores, a.logger)
		if err != nil {
			fmt.Printf("restoring game: %v\n", err)
			return
		}
		a.playFarkle(ctx, m)
	case storage.GameTypeYahtzee:
		m, err := yahtzee.RestoreMatch(save, a.src, a.stores, a.logger)
		if err != nil {
			fmt.Printf("restoring game: %v\n", err)
			return
		}
		a.playYahtzee(ctx, m)
	default:
		fmt.Printf("unknown game type %q\n", save.GameType)
	}
}

func (a *app) showHistory(ctx context.Context) {
	if a.stores.History == nil {
		fmt.Println("no history storage configured")
		return
	}
	entries, err := a.stores.History.List(ctx)
	if err != nil {
		fmt.Printf("listing history: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Println("no finished matches yet")
		return
	}
	for _, e := range entries {
		var parts []string
		for _, p := range e.Players {
			mark := ""
			if p.IsWinner {
				mark = "*"
			}
			parts = append(parts, fmt.Sprintf("%s%s %d", mark, p.Name, p.FinalScore))
		}
		fmt.Printf("  %s  %-7s  %s  (%s)\n",
			e.Date.Format("2006-01-02 15:04"), e.GameType,
			strings.Join(parts, " | "), e.Duration.Round(time.Second))
	}
}

func (a *app) showProfiles(ctx context.Context) {
	if a.stores.Profiles == nil {
		fmt.Println("no profile storage configured")
		return
	}
	profiles, err := a.stores.Profiles.List(ctx)
	if err != nil {
		fmt.Printf("listing profiles: %v\n", err)
		return
	}
	if len(profiles) == 0 {
		fmt.Println("no player profiles yet")
		return
	}
	fmt.Printf("  %-16s %6s %5s %9s %7s %8s\n", "name", "games", "wins", "avg", "best", "yahtzees")
	for _, p := range profiles {
		fmt.Printf("  %-16s %6d %5d %9.1f %7d %8d\n",
			p.Name, p.Stats.GamesPlayed, p.Stats.Wins,
			p.Stats.AvgScore, p.Stats.BestScore, p.Stats.YahtzeeCount)
	}
}

// animateRoll is the staged roll delay: values are already computed, the
// roll-finished signal fires after the configured pause.
func (a *app) animateRoll() {
	fmt.Print("rolling")
	steps := 3
	for i := 0; i < steps; i++ {
		time.Sleep(a.cfg.Game.RollDelay / time.Duration(steps))
		fmt.Print(".")
	}
	fmt.Println()
}

func (a *app) banner(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
	time.Sleep(a.cfg.Game.BannerDelay)
}

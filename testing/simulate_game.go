package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/tatianab/ripple-realms/internal/autoplay"
	"github.com/tatianab/ripple-realms/internal/config"
	"github.com/tatianab/ripple-realms/internal/engine"
	"github.com/tatianab/ripple-realms/internal/logging"
	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/services"
	"github.com/tatianab/ripple-realms/internal/zones"
)

func main() {
	player := flag.String("player", "random", "random or gemini")
	email := flag.String("email", "simulated@ripple.local", "account to play as")
	realmType := flag.String("realm", "Mystic", "realm type for a new realm")
	traits := flag.String("traits", "kind,curious,clever", "three starting traits for a new realm")
	maxTurns := flag.Int("turns", autoplay.DefaultMaxTurns, "maximum turns to play")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	level, _ := cfg.LogLevel()
	logger := logging.Setup(os.Stderr, level, cfg.Log.Format)

	svc, err := services.New(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create services: %v", err)
	}
	defer svc.Close()

	rt, err := models.ParseRealmType(*realmType)
	if err != nil {
		log.Fatalf("Bad realm type: %v", err)
	}

	var p autoplay.Player = autoplay.NewRandomPlayer(nil)
	if *player == "gemini" {
		if cfg.GeminiAPIKey == "" {
			log.Fatalf("GEMINI_API_KEY environment variable is not set")
		}
		gp, err := autoplay.NewGeminiPlayer(ctx, cfg.GeminiAPIKey, nil)
		if err != nil {
			log.Fatalf("Failed to create player client: %v", err)
		}
		defer gp.Close()
		p = gp
	}

	game := &autoplay.Game{
		Engine:   svc.Engine,
		Accounts: svc.Accounts,
		Player:   p,
		MaxTurns: *maxTurns,
		Log:      logger,
		OnStep: func(s autoplay.Step) {
			fmt.Printf("--- %s: %s ---\n", zones.Title(s.Zone), s.QuestID)
			if s.Choice != "" {
				fmt.Printf("Player Choice: %s\n", s.Choice)
			}
			fmt.Printf("Outcome (%s): %s\n\n", s.Kind, s.Message)
		},
	}

	fmt.Printf("--- Playing as %s with a %s player ---\n\n", *email, *player)
	rep, err := game.Play(ctx, autoplay.Signup{
		Email:       *email,
		DisplayName: "Simulated Player",
		AgeMode:     models.AgeAdult,
		RealmType:   rt,
		Traits:      strings.Split(*traits, ","),
	})
	if err != nil {
		log.Fatalf("Simulation stopped: %s", engine.Explain(err))
	}

	r := rep.Realm
	fmt.Printf("Zone: %s\n", zones.Title(r.Zone()))
	fmt.Printf("Traits: %s\n", strings.Join(r.TraitList(), ", "))
	fmt.Printf("Companions: %d, quests completed: %d\n", len(r.Companions()), len(r.CompletedQuests()))
	if rep.Finished {
		fmt.Println("Game Ended: every zone is complete!")
	} else {
		fmt.Printf("Stopped after %d turns.\n", *maxTurns)
	}
}

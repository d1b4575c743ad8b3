package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/stormhall/qw-bot-discord/internal/config"
	"github.com/stormhall/qw-bot-discord/internal/dice"
	"github.com/stormhall/qw-bot-discord/internal/events"
	discordhandler "github.com/stormhall/qw-bot-discord/internal/handlers/discord"
	contestrepo "github.com/stormhall/qw-bot-discord/internal/repositories/contests"
	storypointrepo "github.com/stormhall/qw-bot-discord/internal/repositories/storypoints"
	"github.com/stormhall/qw-bot-discord/internal/services/arbiter"
	contestsvc "github.com/stormhall/qw-bot-discord/internal/services/contest"
	"github.com/stormhall/qw-bot-discord/internal/services/storypoints"
	"github.com/stormhall/qw-bot-discord/internal/uuid"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Application ID: %s", cfg.Discord.AppID)
	log.Printf("Difficulty table: %s", cfg.Rules.DifficultyTable)
	if cfg.Discord.GuildID != "" {
		log.Printf("Guild ID: %s", cfg.Discord.GuildID)
	}

	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}

	// Repositories: Redis when reachable, in-memory otherwise
	contestRepository := contestrepo.NewInMemoryRepository()
	storyPointRepository := storypointrepo.NewInMemoryRepository()

	var redisClient *redis.Client
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		log.Printf("Connecting to Redis at: %s", redisURL)

		opts, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			log.Printf("Failed to parse Redis URL: %v", parseErr)
			log.Println("Falling back to in-memory repositories")
		} else {
			redisClient = redis.NewClient(opts)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if pingErr := redisClient.Ping(ctx).Err(); pingErr != nil {
				cancel()
				log.Printf("Failed to connect to Redis: %v", pingErr)
				log.Println("Falling back to in-memory repositories")
				redisClient = nil
			} else {
				cancel()
				log.Println("Using Redis for persistence")
				contestRepository = contestrepo.NewRedis(redisClient, nil)
				storyPointRepository = storypointrepo.NewRedis(redisClient)
			}
		}
	} else {
		log.Println("No REDIS_URL found, using in-memory repositories")
	}

	bus := events.NewBus()
	renderer := discordhandler.NewCardRenderer(cfg.Rules)
	feed := discordhandler.NewFeed(&discordhandler.FeedConfig{
		Session:  dg,
		Renderer: renderer,
	})

	channel := arbiter.New(&arbiter.Config{
		Repository: contestRepository,
		Feed:       feed,
		Bus:        bus,
	})
	defer channel.Shutdown()

	storyPointService := storypoints.NewService(&storypoints.ServiceConfig{
		Repository: storyPointRepository,
		Channel:    channel,
		Bus:        bus,
		Individual: cfg.Rules.IndividualStoryPoints,
	})

	contestService := contestsvc.NewService(&contestsvc.ServiceConfig{
		Engine:        contestsvc.NewEngine(cfg.Rules, dice.NewRandomRoller()),
		Channel:       channel,
		Repository:    contestRepository,
		StoryPoints:   storyPointService,
		UUIDGenerator: uuid.NewGoogleUUIDGenerator(),
		Rules:         cfg.Rules,
	})

	handler := discordhandler.NewHandler(&discordhandler.HandlerConfig{
		ContestService:    contestService,
		StoryPointService: storyPointService,
		Channel:           channel,
		DifficultyTable:   cfg.Rules.DifficultyTable,
	})

	dg.AddHandler(handler.HandleInteraction)

	if err := dg.Open(); err != nil {
		log.Printf("Failed to open Discord connection: %v", err)
		return
	}
	defer func() {
		if clientErr := dg.Close(); clientErr != nil {
			log.Printf("Failed to close Discord connection: %v", clientErr)
		}
	}()

	if err := handler.RegisterCommands(dg, cfg.Discord.AppID, cfg.Discord.GuildID); err != nil {
		log.Printf("Failed to register commands: %v", err)
		return
	}

	if cfg.Discord.GuildID != "" {
		log.Printf("Registered commands for guild: %s", cfg.Discord.GuildID)
	} else {
		log.Println("Registered global commands (may take up to 1 hour to propagate)")
	}

	fmt.Println("Bot is now running. Press CTRL-C to exit.")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	fmt.Println("Shutting down...")

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		} else {
			log.Println("Closed Redis connection")
		}
	}
}

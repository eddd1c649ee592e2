package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"discord-giveaway-notify/handlers"
	"discord-giveaway-notify/models"
	"discord-giveaway-notify/services"
)

func main() {
	// .envファイルから環境変数を読み込む（ローカル開発用）
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found. using environment variables")
	}

	token := os.Getenv("DISCORD_BOT_TOKEN")
	if token == "" {
		log.Fatal("DISCORD_BOT_TOKEN is not set")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "giveaway_notify.db"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	err = db.AutoMigrate(
		&models.ReactionTrigger{},
		&models.Announcement{},
		&models.CalendarMonitor{},
		&models.GuildConfig{},
		&models.NotifiedEvent{},
		&models.Giveaway{},
		&models.ScheduledGiveaway{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	cache := services.NewSettingsCache(db)
	if err := cache.Refresh(); err != nil {
		log.Fatalf("failed to load settings cache: %v", err)
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Fatalf("failed to create discord session: %v", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentMessageContent

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	interval := services.DefaultSweepInterval
	if v := os.Getenv("SWEEP_INTERVAL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes < 1 {
			log.Fatalf("invalid SWEEP_INTERVAL_MINUTES: %s", v)
		}
		interval = time.Duration(minutes) * time.Minute
	}

	deps := &handlers.Deps{
		DB:       db,
		Cache:    cache,
		Prefix:   os.Getenv("COMMAND_PREFIX"),
		Interval: interval,
	}
	if deps.Prefix == "" {
		deps.Prefix = "!"
	}

	// Google APIキーが無い環境でもカレンダー連携以外は動かせるようにする
	var calendarAPI services.CalendarAPI
	if apiKey := os.Getenv("GOOGLE_API_KEY"); apiKey != "" {
		calendarService, err := calendar.NewService(ctx, option.WithAPIKey(apiKey))
		if err != nil {
			log.Fatalf("failed to create calendar service: %v", err)
		}
		calendarAPI = services.NewGoogleCalendarAPI(calendarService)

		if spreadsheetID := os.Getenv("SPREADSHEET_ID"); spreadsheetID != "" {
			sheetsService, err := sheets.NewService(ctx, option.WithAPIKey(apiKey))
			if err != nil {
				log.Fatalf("failed to create sheets service: %v", err)
			}
			deps.Exporter = services.NewGoogleSheetWriter(sheetsService, spreadsheetID)
		}
	} else {
		log.Println("⚠️ GOOGLE_API_KEY is not set. calendar monitoring is disabled")
	}

	session.AddHandler(handlers.HandleMessageCreate(deps))
	session.AddHandler(handlers.HandleInteractionCreate(deps))
	session.AddHandler(handlers.HandleReactionAdd(deps))
	session.AddHandler(handlers.HandleReactionRemove(deps))

	if err := session.Open(); err != nil {
		log.Fatalf("failed to open discord session: %v", err)
	}
	defer session.Close()
	log.Printf("✅ bot logged in as %s", session.State.User.Username)

	sweeper := &services.Sweeper{
		DB:       db,
		Cache:    cache,
		Session:  session,
		Calendar: calendarAPI,
		Interval: interval,
	}
	go sweeper.Run(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	router := handlers.NewHealthRouter(deps)
	go func() {
		if err := router.Run(":" + port); err != nil {
			log.Printf("health server stopped: %v", err)
		}
	}()

	log.Printf("sweep scheduler started (interval: %s)", interval)
	<-ctx.Done()
	log.Println("shutting down")
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/teamscout/teamscout-api/internal/cache"
	"github.com/teamscout/teamscout-api/internal/config"
	"github.com/teamscout/teamscout-api/internal/database"
	"github.com/teamscout/teamscout-api/internal/handlers"
	"github.com/teamscout/teamscout-api/internal/hub"
	authmw "github.com/teamscout/teamscout-api/internal/middleware"
	"github.com/teamscout/teamscout-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var snapshotCache services.SnapshotCache
	if cfg.RedisURL != "" {
		redisClient, err := cache.New(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		snapshotCache = redisClient
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry)
	userService := services.NewUserService(db)
	teamService := services.NewTeamService(db)

	eventHub := hub.NewHub()
	go eventHub.Run()

	locks := services.NewChatLocks()
	messageService := services.NewMessageService(db, eventHub, locks)
	tryoutService := services.NewTryoutService(db, eventHub, teamService, locks)
	applicationService := services.NewApplicationService(db, teamService, messageService, eventHub)
	conversationService := services.NewConversationService(db, userService, snapshotCache)

	messageHandler := handlers.NewMessageHandler(messageService, eventHub)
	tryoutHandler := handlers.NewTryoutHandler(tryoutService, teamService)
	applicationHandler := handlers.NewApplicationHandler(applicationService, teamService)
	conversationHandler := handlers.NewConversationHandler(conversationService)
	realtimeHandler := handlers.NewRealtimeHandler(eventHub, tryoutService, teamService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Get("/conversations", conversationHandler.List)

	protected.Post("/messages", messageHandler.SendDirect)
	protected.Get("/messages/:peerId", messageHandler.DirectHistory)

	protected.Get("/chats", tryoutHandler.List)
	protected.Get("/chats/:chatId", tryoutHandler.Get)
	protected.Get("/chats/:chatId/messages", messageHandler.ChatHistory)
	protected.Post("/chats/:chatId/messages", messageHandler.SendGroup)
	protected.Post("/chats/:chatId/typing", messageHandler.Typing)
	protected.Post("/chats/:chatId/end", tryoutHandler.End)
	protected.Post("/chats/:chatId/offer", tryoutHandler.SendOffer)
	protected.Post("/chats/:chatId/offer/accept", tryoutHandler.AcceptOffer)
	protected.Post("/chats/:chatId/offer/reject", tryoutHandler.RejectOffer)

	protected.Post("/applications", applicationHandler.Create)
	protected.Get("/applications", applicationHandler.ListMine)
	protected.Post("/applications/:id/withdraw", applicationHandler.Withdraw)
	protected.Post("/applications/:id/reject", applicationHandler.Reject)
	protected.Post("/applications/:id/tryout", tryoutHandler.StartFromApplication)
	protected.Get("/teams/:id/applications", applicationHandler.ListForTeam)

	protected.Post("/approaches", applicationHandler.CreateApproach)
	protected.Get("/approaches", applicationHandler.ListApproaches)
	protected.Post("/approaches/:id/accept", tryoutHandler.AcceptApproach)
	protected.Post("/approaches/:id/reject", applicationHandler.RejectApproach)

	protected.Get("/events", realtimeHandler.Connect)
	protected.Post("/realtime/:clientId/chats/:chatId/join", realtimeHandler.JoinChat)
	protected.Post("/realtime/:clientId/chats/:chatId/leave", realtimeHandler.LeaveChat)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/benbeisheim/chess-backend/internal/config"
	"github.com/benbeisheim/chess-backend/internal/controller"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(cfg.LogLevel)

	store, err := storage.Open(cfg.DataDir, cfg.InMemory)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	// Initialize services
	gameManager := service.NewGameManager(store, cfg.MatchmakingInterval)
	gameService := service.NewGameService(gameManager)

	app := fiber.New(fiber.Config{
		AppName:               "chess-backend",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))

	controller.RegisterRoutes(app, gameService, cfg.Origins())

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	log.Infow("listening", "addr", cfg.Addr, "inMemory", cfg.InMemory, "dataDir", cfg.DataDir)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Errorf("listen: %v", err)
	}

	gameManager.Close()
	if err := store.Close(); err != nil {
		log.Errorf("close storage: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-pos-ws/internal/config"
	"go-pos-ws/internal/handler"
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"
	"go-pos-ws/internal/telemetry"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/database"
	"go-pos-ws/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Telemetry
	inst, shutdownTelemetry, err := telemetry.Setup(ctx, &cfg)
	if err != nil {
		log.Fatalf("Failed to set up telemetry: %v", err)
	}

	// 3. Setup Database
	db := database.ConnectDB(cfg.DatabaseURL)
	if err := database.Migrate(db, model.All()...); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	// 4. Repositories and seed data
	productRepo := repository.NewProductRepo(db)
	historyRepo := repository.NewStockHistoryRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	reportRepo := repository.NewReportRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	companyRepo := repository.NewCompanyRepo(db)

	if err := service.Bootstrap(privilegeRepo, roleRepo, userRepo, cfg.AdminEmail, cfg.AdminPasswd); err != nil {
		log.Fatalf("Failed to seed roles and admin: %v", err)
	}

	// 5. Setup WebSocket Hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	wsHub := ws.NewHub()
	go wsHub.Run(hubCtx)

	// 6. Dependency Injection (Wiring Layers)
	signer := jwt.NewSigner(cfg.JWTSecret, cfg.JWTExpiry, cfg.JWTIssuer)
	routes := handler.Routes{
		Signer:   signer,
		UserRepo: userRepo,
		Auth:     handler.NewAuthHandler(service.NewAuthService(userRepo, signer)),
		Inventory: handler.NewInventoryHandler(
			service.NewInventoryService(db, productRepo, historyRepo, wsHub),
			service.NewStockService(db, productRepo, historyRepo, wsHub, inst),
		),
		Transaction: handler.NewTransactionHandler(service.NewTransactionService(db, productRepo, historyRepo, txRepo, wsHub, inst)),
		Report:      handler.NewReportHandler(service.NewReportService(reportRepo)),
		User:        handler.NewUserHandler(service.NewUserService(userRepo, privilegeRepo, roleRepo)),
		Role:        handler.NewRoleHandler(roleRepo, privilegeRepo),
		Company:     handler.NewCompanyHandler(service.NewCompanyService(companyRepo)),
	}

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	if cfg.PrometheusEnabled {
		metrics := telemetry.NewHTTPMetrics(wsHub.ClientCount)
		app.Use(metrics.Middleware())
		app.Get("/metrics", metrics.Handler())
		log.Println("Prometheus metrics enabled at /metrics")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"success": false, "message": "database unavailable"})
		}
		return c.JSON(fiber.Map{"success": true, "status": "ok", "clients": wsHub.ClientCount()})
	})

	routes.Mount(app)

	// WebSocket Route. Browsers pass the JWT as ?token=.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}, middleware.RequireAuth(signer, userRepo))
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		companyID, _ := c.Locals(middleware.LocalCompanyID).(*uuid.UUID)
		if role, _ := c.Locals(middleware.LocalRoleCode).(string); role == model.RoleAdmin {
			companyID = nil
		}
		wsHub.Register(c, companyID)
		defer wsHub.Unregister(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Println("Server forced to shutdown:", err)
	}
	stopHub()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTelemetry(flushCtx); err != nil {
		log.Printf("Telemetry shutdown: %v", err)
	}

	log.Println("Server exited")
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Govind-619/PaySphere/config"
	"github.com/Govind-619/PaySphere/controllers"
	"github.com/Govind-619/PaySphere/gateway"
	"github.com/Govind-619/PaySphere/repository"
	"github.com/Govind-619/PaySphere/routes"
	"github.com/Govind-619/PaySphere/services"
	"github.com/Govind-619/PaySphere/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	adminEmail := flag.String("admin-token", "", "print an admin API token for this email and exit")
	flag.Parse()

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Error loading config:", err)
	}

	if *adminEmail != "" {
		ttl, _ := time.ParseDuration(utils.AdminTokenExpiration)
		token, err := utils.GenerateAdminToken(cfg.JWTSecret, *adminEmail, ttl)
		if err != nil {
			log.Fatal("Failed to generate admin token:", err)
		}
		fmt.Println(token)
		return
	}

	// Initialize logger
	if err := utils.InitLogger(cfg.LogDir); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.LogError("Database initialization failed: %v", err)
		log.Fatal("Database initialization failed:", err)
	}

	registry := gateway.NewRegistry(gateway.NewRazorpay(cfg.RazorpayKey, cfg.RazorpaySecret), gateway.CashOnDelivery{})
	payments := repository.NewPaymentRepository(db)
	orders := repository.NewOrderRepository(db)
	events := repository.NewWebhookEventRepository(db)

	var notifier services.Notifier = services.NopNotifier{}
	if cfg.SMTPEnabled() {
		notifier = services.NewEmailNotifier(utils.NewMailer(utils.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}))
		utils.LogInfo("Email receipts enabled via %s", cfg.SMTPHost)
	}
	if cfg.RazorpayWebhookSecret == "" && cfg.WebhookInsecureMode {
		utils.LogError("RAZORPAY_WEBHOOK_SECRET is not set and WEBHOOK_INSECURE_MODE is on; webhooks are accepted unsigned")
	}

	paymentService := services.NewPaymentService(cfg, registry, payments, orders, notifier)
	webhookService := services.NewWebhookService(cfg.RazorpayWebhookSecret, cfg.WebhookInsecureMode, payments, events, notifier)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	routes.SetupRoutes(router, controllers.NewController(paymentService, webhookService), cfg.JWTSecret)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.LogInfo("Server starting on port %s", cfg.Port)
		log.Printf("%s listening on :%s", utils.AppName, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError("Error starting server: %v", err)
			log.Fatal("Error starting server:", err)
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutting down server")

	// let in-flight confirmations and refunds finish their transactions
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GatewayTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError("Server shutdown failed: %v", err)
	}
}

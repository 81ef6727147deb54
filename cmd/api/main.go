package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "nextmove-cargo/api/swagger" // swagger docs
	"nextmove-cargo/internal/config"
	"nextmove-cargo/internal/database"
	"nextmove-cargo/internal/events"
	"nextmove-cargo/internal/handler"
	"nextmove-cargo/internal/logging"
	"nextmove-cargo/internal/middleware"
	"nextmove-cargo/internal/notify"
	"nextmove-cargo/internal/payment"
	"nextmove-cargo/internal/repository"
	"nextmove-cargo/internal/retry"
	"nextmove-cargo/internal/service"
	"nextmove-cargo/internal/storage"
	"nextmove-cargo/internal/websocket"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           NextMove Cargo API
// @version         1.0
// @description     Freight marketplace: offers, shipments, proofs of delivery, payments and POS.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load("configs")
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}
	middleware.SetJWTSecret(cfg.JWT.Secret)
	middleware.SetSecureCookies(cfg.Server.GinMode == gin.ReleaseMode)

	db, err := database.NewConnection(cfg.Database.DSN(), cfg.Server.GinMode == gin.DebugMode)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		log.Fatalf("AWS config load failed: %v", err)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Broker != "" {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Broker, cfg.Kafka.Topic)
	}
	defer publisher.Close()

	dispatcher := notify.NewDispatcher(outboundChannels(cfg, awsCfg)...)
	documents := storage.NewS3Store(awsCfg, cfg.AWS.S3Bucket, cfg.AWS.CloudFrontDomain)
	gateways := payment.NewRegistry(paymentGateways(cfg)...)
	policy := retry.Policy{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
	}

	// Repositories
	txManager := repository.NewTransactionManager(db)
	profileRepo := repository.NewProfileRepository(db)
	rfqRepo := repository.NewRFQRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	podRepo := repository.NewPODRepository(db)
	posRepo := repository.NewPOSSessionRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Services
	notificationService := service.NewNotificationService(notificationRepo, profileRepo, wsHub, dispatcher)
	automationService := service.NewAutomationService(service.AutomationDeps{
		TxManager:     txManager,
		Offers:        offerRepo,
		RFQs:          rfqRepo,
		Shipments:     shipmentRepo,
		Profiles:      profileRepo,
		Audit:         auditRepo,
		Notifications: notificationService,
		Events:        publisher,
		Pusher:        wsHub,
		Retry:         policy,
	})
	shipmentService := service.NewShipmentService(txManager, shipmentRepo, auditRepo, automationService, notificationService, publisher, wsHub, policy)
	podService := service.NewPODService(txManager, podRepo, shipmentRepo, profileRepo, auditRepo, documents, shipmentService, notificationService, publisher)
	posService := service.NewPOSService(txManager, posRepo, auditRepo)
	couponService := service.NewCouponService(txManager, couponRepo, auditRepo)
	paymentService := service.NewPaymentService(txManager, transactionRepo, shipmentRepo, couponRepo, profileRepo, auditRepo,
		couponService, gateways, notificationService, publisher, service.NewPaymentURLs(cfg.Server.PublicURL, cfg.Server.APIURL))
	authService := service.NewAuthService(profileRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	auditService := service.NewAuditService(auditRepo)

	// Set up Gin Router
	router := gin.New()
	router.Use(gin.Recovery(), logging.JSONLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	api := router.Group("")
	handler.NewAuthHandler(authService).RegisterRoutes(api)
	handler.NewOfferHandler(automationService).RegisterRoutes(api)
	handler.NewShipmentHandler(shipmentService).RegisterRoutes(api)
	handler.NewPODHandler(podService).RegisterRoutes(api)
	handler.NewPOSHandler(posService).RegisterRoutes(api)
	handler.NewCouponHandler(couponService).RegisterRoutes(api)
	handler.NewPaymentHandler(paymentService).RegisterRoutes(api)
	handler.NewNotificationHandler(notificationService).RegisterRoutes(api)
	handler.NewAuditHandler(auditService).RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}

// outboundChannels returns the notification channels that have credentials configured.
func outboundChannels(cfg config.Config, awsCfg aws.Config) []notify.Channel {
	var channels []notify.Channel
	if cfg.AWS.SNSSenderID != "" {
		channels = append(channels, notify.NewSMSChannel(awsCfg, cfg.AWS.SNSSenderID))
	}
	if cfg.AWS.SESFromEmail != "" {
		channels = append(channels, notify.NewEmailChannel(awsCfg, cfg.AWS.SESFromEmail))
	}
	if cfg.WhatsApp.AccessToken != "" {
		channels = append(channels, notify.NewWhatsAppChannel(cfg.WhatsApp.BaseURL, cfg.WhatsApp.PhoneNumberID, cfg.WhatsApp.AccessToken))
	}
	if len(channels) == 0 {
		log.Println("No outbound notification channels configured; in-app notifications only")
	}
	return channels
}

func paymentGateways(cfg config.Config) []payment.Gateway {
	var gateways []payment.Gateway
	if cfg.Stripe.SecretKey != "" {
		gateways = append(gateways, payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret))
	}
	if cfg.Flutterwave.SecretKey != "" {
		gateways = append(gateways, payment.NewFlutterwaveGateway(cfg.Flutterwave.BaseURL, cfg.Flutterwave.SecretKey, cfg.Flutterwave.SecretHash))
	}
	if cfg.CinetPay.APIKey != "" {
		gateways = append(gateways, payment.NewCinetPayGateway(cfg.CinetPay.BaseURL, cfg.CinetPay.APIKey, cfg.CinetPay.SiteID))
	}
	return gateways
}

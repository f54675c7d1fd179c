package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bagerileve/storefront/internal/analytics"
	"github.com/bagerileve/storefront/internal/cart"
	"github.com/bagerileve/storefront/internal/catalog"
	"github.com/bagerileve/storefront/internal/config"
	"github.com/bagerileve/storefront/internal/confirmation"
	h "github.com/bagerileve/storefront/internal/http"
	"github.com/bagerileve/storefront/internal/notify"
	"github.com/bagerileve/storefront/internal/openinghours"
	"github.com/bagerileve/storefront/internal/orders"
	"github.com/bagerileve/storefront/internal/pickup"
	"github.com/bagerileve/storefront/internal/publisher"
	"github.com/bagerileve/storefront/internal/service"
	"github.com/bagerileve/storefront/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catalog: sqlite with a Redis read-through cache
	catalogRepo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatal("failed to open catalog", zap.Error(err))
	}
	defer catalogRepo.Close()
	if err := catalogRepo.RunMigrations(); err != nil {
		log.Fatal("failed to migrate catalog", zap.Error(err))
	}
	seeded, err := catalogRepo.ListProducts(ctx)
	if err != nil {
		log.Fatal("failed to read catalog", zap.Error(err))
	}
	log.Info("catalog ready", zap.String("path", cfg.CatalogDBPath), zap.Int("products", len(seeded)))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("redis connection failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	products := catalog.NewCachedCatalog(catalogRepo, catalog.NewRedisCache(redisClient, cfg.CatalogCacheTTL), log)

	// Opening hours: MongoDB
	mongoDB, err := openinghours.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoDB.Client().Disconnect(context.Background())
	hoursStore := openinghours.NewMongoStore(mongoDB)
	if err := hoursStore.CreateIndexes(ctx); err != nil {
		log.Fatal("failed to create opening hours indexes", zap.Error(err))
	}
	if err := hoursStore.Seed(ctx, openinghours.DefaultHours()); err != nil {
		log.Fatal("failed to seed opening hours", zap.Error(err))
	}
	hours := openinghours.NewService(hoursStore, cfg.OpeningHoursSet, cfg.Location)
	log.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	// Orders: PostgreSQL with outbox
	orderRepo, err := orders.NewRepository(&orders.Credentials{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.DBName,
		SSLMode:  cfg.Postgres.SSLMode,
	}, cfg.Location)
	if err != nil {
		log.Fatal("failed to connect to order database", zap.Error(err))
	}
	defer orderRepo.Close()
	if err := orderRepo.RunMigrations(); err != nil {
		log.Fatal("failed to migrate order database", zap.Error(err))
	}

	issuer, err := confirmation.NewIssuer(cfg.OrderConfirmationSecret, cfg.ShopPath)
	if err != nil {
		log.Fatal("failed to create confirmation issuer", zap.Error(err))
	}

	siteURL, err := url.Parse(cfg.SiteURL)
	if err != nil {
		log.Fatal("invalid SITE_URL", zap.String("url", cfg.SiteURL), zap.Error(err))
	}
	notifier := notify.NewOrderNotifier(notify.NewMailerSend(cfg.MailerSendAPIKey, log), notify.Config{
		Sender:   notify.Address{Name: cfg.SiteTitle, Email: cfg.AdminEmail},
		Hostname: siteURL.Hostname(),
		Location: cfg.Location,
	})

	var tracker service.Analytics = analytics.Noop{}
	if cfg.PostHogAPIKey != "" {
		ph, err := analytics.NewPostHog(cfg.PostHogAPIKey, cfg.PostHogEndpoint)
		if err != nil {
			log.Fatal("failed to create PostHog client", zap.Error(err))
		}
		defer ph.Close()
		tracker = ph
	} else {
		log.Info("analytics disabled, POSTHOG_PROJECT_API_KEY not set")
	}

	resolver := pickup.NewResolver(hours, cfg.PickupMinOffset, cfg.PickupMaxOffset, cfg.Location)
	snapshots := service.NewSnapshotBuilder(products, resolver)
	carts := service.NewCartService(products, log)
	checkout := service.NewCheckoutService(snapshots, orderRepo, issuer, notifier, tracker, service.CheckoutConfig{
		SiteURL:      cfg.SiteURL,
		AdminEmail:   cfg.AdminEmail,
		PrinterEmail: cfg.PrinterEmail,
	}, log)
	confirmations := service.NewConfirmationService(orderRepo, issuer, log)

	cookies := cart.NewCookieStore([]byte(cfg.CartCookieSecret), cfg.CookieSecure, log)
	router := h.NewRouter(h.Handlers{
		Cart:         h.NewCartHandler(cookies, carts, cfg.RequestTimeout, log),
		Checkout:     h.NewCheckoutHandler(cookies, checkout, snapshots, cfg.RequestTimeout),
		Orders:       h.NewOrdersHandler(confirmations, issuer.ShopURL(), cfg.RequestTimeout),
		OpeningHours: h.NewOpeningHoursHandler(hours, cfg.RequestTimeout, log),
	}, log, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// gRPC health endpoint for the orchestrator
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen", zap.String("port", cfg.GRPCPort), zap.Error(err))
	}
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	poller := publisher.NewOutboxPoller(orderRepo, cfg.KafkaTopic, log, cfg.KafkaBrokers...)
	defer poller.Close()
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		poller.Run(ctx)
	}()

	go func() {
		log.Info("grpc health server listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("grpc server error", zap.Error(err))
		}
	}()
	go func() {
		log.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	<-ctx.Done()

	log.Info("shutting down server...")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	<-pollerDone

	log.Info("server exited")
}

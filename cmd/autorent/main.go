package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	appoutbox "autorent/internal/app/outbox"
	authsvc "autorent/internal/app/services/auth"
	"autorent/internal/app/services/availability"
	carssvc "autorent/internal/app/services/cars"
	rentalssvc "autorent/internal/app/services/rentals"
	reviewssvc "autorent/internal/app/services/reviews"
	userssvc "autorent/internal/app/services/users"
	domainauth "autorent/internal/domain/auth"
	domaincar "autorent/internal/domain/car"
	domainrental "autorent/internal/domain/rental"
	domainreview "autorent/internal/domain/review"
	"autorent/internal/domain/shared/money"
	domainuser "autorent/internal/domain/user"
	"autorent/internal/infra/broker/kafka"
	"autorent/internal/infra/config"
	mongodb "autorent/internal/infra/db/mongo"
	ginserver "autorent/internal/infra/http/gin"
	"autorent/internal/infra/obs"
	infraoutbox "autorent/internal/infra/outbox"
	"autorent/internal/infra/security"
	"autorent/internal/infra/storage/memory"
	"autorent/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, cleanup, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := app.bootstrapAdmin(ctx, cfg); err != nil {
		logger.Warn("admin bootstrap failed", "error", err)
	}
	if cfg.StorageMode == config.StorageMemory && cfg.CarFixturesPath != "" {
		if err := app.loadCarFixtures(ctx, cfg); err != nil {
			logger.Warn("car fixtures load failed", "error", err, "path", cfg.CarFixturesPath)
		}
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: app.ready}, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	auth     *authsvc.Service
	cars     *carssvc.Service
	ready    func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, func(), error) {
	var (
		rentalRepo domainrental.Repository
		carRepo    domaincar.Repository
		userRepo   domainuser.Repository
		reviewRepo domainreview.Repository
		sessions   domainauth.SessionStore
		box        appoutbox.Outbox
		ready      = func() error { return nil }
		cleanup    = func() {}
	)

	switch cfg.StorageMode {
	case config.StorageMongo:
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, nil, fmt.Errorf("connect mongo: %w", err)
		}
		rentalRepo = mongodb.NewRentalRepository(client.DB)
		carRepo = mongodb.NewCarRepository(client.DB)
		userRepo = mongodb.NewUserRepository(client.DB)
		reviewRepo = mongodb.NewReviewRepository(client.DB)
		sessions = mongodb.NewSessionStore(client.DB)
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		cleanup = func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Close(closeCtx)
		}

		if len(cfg.KafkaBrokers) > 0 {
			store := infraoutbox.NewStore(client.DB)
			box = store
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, nil, fmt.Errorf("connect kafka: %w", err)
			}
			worker := &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Logger:      logger,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				ID:          uuid.NewString(),
				Backoff:     cfg.RetryBackoff,
			}
			go func() {
				if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("outbox worker stopped", "error", err)
				}
				_ = producer.Close()
			}()
		}
	case config.StorageMemory:
		rentalRepo = memory.NewRentalRepository()
		carRepo = memory.NewCarRepository()
		userRepo = memory.NewUserRepository()
		reviewRepo = memory.NewReviewRepository()
		sessions = memory.NewSessionStore()
		box = memory.NewOutbox()
	default:
		return application{}, nil, fmt.Errorf("unknown storage mode %q", cfg.StorageMode)
	}

	hasher := security.PasswordHasher{}
	tokens := security.OpaqueTokenGenerator{}

	authService := &authsvc.Service{
		Users:      userRepo,
		Sessions:   sessions,
		Passwords:  hasher,
		Tokens:     tokens,
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	var photos carssvc.Uploader
	if cfg.S3Endpoint != "" {
		uploader, err := s3.NewClient(s3.Options{
			Endpoint:      cfg.S3Endpoint,
			UseSSL:        cfg.S3UseSSL,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.S3PublicEndpoint,
		}, logger)
		if err != nil {
			logger.Warn("photo storage unavailable", "error", err)
		} else {
			photos = uploader
		}
	}

	carService := &carssvc.Service{Cars: carRepo, Photos: photos, Logger: logger}
	rentalService := &rentalssvc.Service{
		Rentals:      rentalRepo,
		Cars:         carRepo,
		Availability: &availability.Checker{Rentals: rentalRepo},
		Outbox:       box,
		Encoder:      appoutbox.JSONEventEncoder{},
		Logger:       logger,
	}
	userService := &userssvc.Service{Users: userRepo, Passwords: hasher, Sessions: sessions, Logger: logger}
	reviewService := &reviewssvc.Service{Reviews: reviewRepo, Cars: carRepo}

	authMW := ginserver.AuthMiddleware{Service: authService, Logger: logger}

	return application{
		handlers: ginserver.Handlers{
			Auth:           ginserver.AuthHandler{Service: authService, Users: userService, Logger: logger},
			Rental:         ginserver.RentalHandler{Service: rentalService, Users: userService, Logger: logger},
			Car:            ginserver.CarHandler{Service: carService, DefaultCurrency: cfg.Currency, Logger: logger},
			User:           ginserver.UserHandler{Users: userService, Auth: authService, Logger: logger},
			Review:         ginserver.ReviewHandler{Service: reviewService, Logger: logger},
			AuthMiddleware: authMW.Handle,
		},
		auth:  authService,
		cars:  carService,
		ready: ready,
	}, cleanup, nil
}

// bootstrapAdmin provisions the first admin account from the environment.
// A second boot with the same email is a no-op.
func (a application) bootstrapAdmin(ctx context.Context, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	_, err := a.auth.SignUp(ctx, "", authsvc.SignUpParams{
		Email:    cfg.AdminEmail,
		FullName: cfg.AdminFullName,
		Password: cfg.AdminPassword,
		Role:     domainuser.RoleAdmin,
	})
	if errors.Is(err, domainuser.ErrEmailAlreadyUsed) {
		return nil
	}
	return err
}

type carFixture struct {
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	Type        string `json:"type"`
	PricePerDay int64  `json:"price_per_day"`
	Currency    string `json:"currency"`
	State       string `json:"state"`
}

// loadCarFixtures seeds the in-memory fleet from a JSON file for local
// development.
func (a application) loadCarFixtures(ctx context.Context, cfg config.Config) error {
	data, err := os.ReadFile(cfg.CarFixturesPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []carFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	for _, fx := range fixtures {
		currency := fx.Currency
		if currency == "" {
			currency = cfg.Currency
		}
		params := domaincar.CreateParams{
			Brand:       fx.Brand,
			Model:       fx.Model,
			Year:        fx.Year,
			PricePerDay: money.Money{Amount: fx.PricePerDay, Currency: currency},
		}
		if fx.Type != "" {
			typ, err := domaincar.ParseType(fx.Type)
			if err != nil {
				return err
			}
			params.Type = typ
		}
		if fx.State != "" {
			state, err := domaincar.ParseState(fx.State)
			if err != nil {
				return err
			}
			params.State = state
		}
		if _, err := a.cars.Add(ctx, "fixtures", params); err != nil {
			return err
		}
	}
	return nil
}

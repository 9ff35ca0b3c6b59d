package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"moviecatalog/auth"
	"moviecatalog/dynamodb"
	"moviecatalog/httpserver"
	"moviecatalog/movie"
	"moviecatalog/mongodb"
	"moviecatalog/person"
	"moviecatalog/pkg/config"
	"moviecatalog/pkg/hasher"
	"moviecatalog/pkg/jwt"
	"moviecatalog/pkg/logger"
	"moviecatalog/pkg/oauth/google"
	"moviecatalog/pkg/sentry"
	"moviecatalog/postgres"
	"moviecatalog/provider/omdb"
	"moviecatalog/provider/tmdb"
	"moviecatalog/user"
)

// @title Movie Catalog API
// @version 1.0
// @description Movies, actors and producers merged with OMDb and TMDB.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot load config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot build logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Errorw("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.SugaredLogger) error {
	err := sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}
	defer sentrygo.Flush(sentry.FlushTime)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := mongodb.NewDatabase(ctx, mongodb.Options{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		ConnectTimeout: time.Duration(cfg.Mongo.ConnectTimeout) * time.Second,
	})
	if err != nil {
		return err
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	users, attempts, err := accountStore(ctx, cfg, db)
	if err != nil {
		return err
	}

	bcrypt := hasher.NewBcrypt()
	userService := user.NewUsecase(users, bcrypt)
	tokens := jwt.NewJWTProvider(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTL)*time.Second,
		time.Duration(cfg.Auth.RefreshTTL)*time.Second,
	)

	var googleProvider auth.GoogleOAuthProvider
	if p := google.NewProvider(google.Config{
		ClientID:     cfg.Auth.GoogleClientID,
		ClientSecret: cfg.Auth.GoogleClientSecret,
		RedirectURL:  cfg.Auth.GoogleRedirectURL,
	}); p != nil {
		googleProvider = p
	}

	omdbClient := omdb.New(cfg.OMDB.BaseURL, cfg.OMDB.APIKey, time.Duration(cfg.OMDB.Timeout)*time.Second, nil)
	tmdbClient := tmdb.New(tmdb.Config{
		BaseURL:  cfg.TMDB.BaseURL,
		ImageURL: cfg.TMDB.ImageURL,
		APIKey:   cfg.TMDB.APIKey,
		Timeout:  time.Duration(cfg.TMDB.Timeout) * time.Second,
	}, nil)

	server, err := httpserver.New(httpserver.WithConfig(cfg), httpserver.WithLogger(log))
	if err != nil {
		return err
	}
	server.UserService = userService
	server.AuthService = auth.NewUsecase(userService, attempts, bcrypt, tokens, googleProvider)
	server.MovieService = movie.NewUsecase(
		mongodb.NewMovieRepository(db),
		omdbClient,
		mongodb.NewReferenceResolver(db),
		cfg.Catalog.MovieSeeds,
	)
	server.ActorService = person.NewUsecase(
		person.RoleActor,
		mongodb.NewActorRepository(db),
		tmdbClient.ForRole(person.RoleActor),
		cfg.Catalog.ActorSeeds,
	)
	server.ProducerService = person.NewUsecase(
		person.RoleProducer,
		mongodb.NewProducerRepository(db),
		tmdbClient.ForRole(person.RoleProducer),
		cfg.Catalog.ProducerSeeds,
	)

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server started", "addr", server.Addr, "account_store", cfg.AccountStore)
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// accountStore picks the user and login attempt repositories named by
// ACCOUNT_STORE.
func accountStore(ctx context.Context, cfg *config.Config, db *mongo.Database) (user.Repository, auth.LoginAttemptRepository, error) {
	switch cfg.AccountStore {
	case "", "mongodb":
		return mongodb.NewUserRepository(db), mongodb.NewLoginAttemptRepository(db), nil
	case "postgres":
		gdb, err := postgres.NewConnection(postgres.Options{
			DBName:   cfg.DB.Name,
			DBUser:   cfg.DB.User,
			Password: cfg.DB.Pass,
			Host:     cfg.DB.Host,
			Port:     strconv.Itoa(cfg.DB.Port),
			SSLMode:  cfg.DB.EnableSSL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres connection: %w", err)
		}
		return postgres.NewUserRepository(gdb), postgres.NewLoginAttemptRepository(gdb), nil
	case "dynamodb":
		store, err := dynamodb.OpenAccountStore(ctx, dynamodb.Options{
			Region:             cfg.DynamoDB.Region,
			Endpoint:           cfg.DynamoDB.Endpoint,
			AccessKey:          cfg.DynamoDB.AccessKey,
			SecretKey:          cfg.DynamoDB.SecretKey,
			SessionToken:       cfg.DynamoDB.SessionToken,
			UsersTable:         cfg.DynamoDB.UsersTable,
			LoginAttemptsTable: cfg.DynamoDB.LoginAttemptsTable,
		})
		if err != nil {
			return nil, nil, err
		}
		return store.Users, store.LoginAttempts, nil
	}
	return nil, nil, fmt.Errorf("unknown account store %q", cfg.AccountStore)
}

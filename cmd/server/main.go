package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-dashboard/internal/config"
	"github.com/jrsteele09/go-dashboard/organisations"
	"github.com/jrsteele09/go-dashboard/projects"
	"github.com/jrsteele09/go-dashboard/resources"
	"github.com/jrsteele09/go-dashboard/server"
	"github.com/jrsteele09/go-dashboard/server/authflowrepo"
	"github.com/jrsteele09/go-dashboard/store/pg"
	"github.com/jrsteele09/go-dashboard/token"
	"github.com/jrsteele09/go-dashboard/token/keys"
	"github.com/jrsteele09/go-dashboard/users"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, health, closeStore, err := openRepos(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	keyPair, generated, err := keys.LoadOrGenerate(c.GetSessionKeyID(), c.GetSessionKeyPEM())
	if err != nil {
		return fmt.Errorf("session key: %w", err)
	}
	if generated {
		log.Warn().Msg("SESSION_KEY_PEM not set, using an ephemeral signing key; sessions will not survive a restart")
	}

	revoked := token.NewInMemoryRevokedTokenCache()
	token.StartCleanup(ctx, revoked, 10*time.Minute)
	issuer := token.NewIssuer(keys.NewKeyPairSigner(keyPair), c.GetBaseURL(), c.GetSessionMaxAge(), revoked)

	handler, err := server.New(c, repos, issuer, authflowrepo.NewInMemoryRepo(), server.WithHealthCheck(health))
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		errs <- listenAndServe(httpServer)
	}()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// openRepos connects to Postgres when DATABASE_URL is set and falls back to the
// in-memory stores otherwise
func openRepos(ctx context.Context, c config.Config) (server.Repos, server.HealthCheck, func(), error) {
	dsn := c.GetDatabaseURL()
	if dsn == "" {
		log.Warn().Msg("DATABASE_URL not set, data is kept in memory")
		return server.Repos{
			Users:         users.NewInMemoryRepo(),
			Organisations: organisations.NewInMemoryRepo(),
			Projects:      projects.NewInMemoryRepo(),
			Resources:     resources.NewInMemoryRepo(),
		}, nil, func() {}, nil
	}

	store, err := pg.Open(dsn)
	if err != nil {
		return server.Repos{}, nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return server.Repos{}, nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			log.Err(err).Msg("failed to close database")
		}
	}
	return server.Repos{
		Users:         store.Users(),
		Organisations: store.Organisations(),
		Projects:      store.Projects(),
		Resources:     store.Resources(),
	}, store.Ping, closeStore, nil
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

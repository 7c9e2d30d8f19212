package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Balaji0706816/nurseproject/internal/api"
	"github.com/Balaji0706816/nurseproject/internal/content"
	"github.com/Balaji0706816/nurseproject/internal/flow"
	"github.com/Balaji0706816/nurseproject/internal/lockfile"
	"github.com/Balaji0706816/nurseproject/internal/messaging"
	"github.com/Balaji0706816/nurseproject/internal/store"
	"github.com/Balaji0706816/nurseproject/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for service state data
	DefaultStateDir = "/var/lib/nurseproject"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "nurseproject.db"
)

func main() {
	// Load environment configuration
	config := loadEnvironmentConfig()

	// Initialize structured logger
	initializeLogger(config.Debug)

	// Parse command line flags
	flags, err := parseCommandLineFlags(config, os.Args[1:])
	if err != nil {
		slog.Error("Failed to parse flags", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("Bootstrapping nurse content service")
	slog.Debug("Final configuration", "state_dir", flags.StateDir, "dsn_set", flags.DBDSN != "", "in_memory", flags.InMemory,
		"library", flags.Library, "api_addr", flags.APIAddr)
	if err := run(ctx, flags); err != nil {
		slog.Error("Service failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Service exited successfully")
}

// Config holds environment configuration
type Config struct {
	StateDir         string
	DatabaseURL      string
	ScriptLibrary    string
	APIAddr          string
	AllowedOrigins   []string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	Debug            bool
}

// Flags holds command line flag values
type Flags struct {
	StateDir       string
	DBDSN          string
	InMemory       bool
	Library        string
	APIAddr        string
	AllowedOrigins []string
	Twilio         twilioConfig
}

type twilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

func (c twilioConfig) configured() bool {
	return c.AccountSID != "" || c.AuthToken != "" || c.FromNumber != ""
}

// initializeLogger sets up structured logging, at debug level when requested
func initializeLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	envErr := godotenv.Load()

	config := Config{
		StateDir:         util.GetEnv("NURSE_STATE_DIR", DefaultStateDir),
		DatabaseURL:      util.GetEnv("DATABASE_URL", ""),
		ScriptLibrary:    util.GetEnv("SCRIPT_LIBRARY", ""),
		APIAddr:          util.GetEnv("API_ADDR", api.DefaultAddr),
		AllowedOrigins:   util.ParseListEnv("CORS_ALLOWED_ORIGINS"),
		TwilioAccountSID: util.GetEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  util.GetEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: util.GetEnv("TWILIO_FROM_NUMBER", ""),
		Debug:            util.ParseBoolEnv("NURSE_DEBUG", false),
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
	}

	if envErr != nil {
		slog.Debug("failed to load .env file", "error", envErr)
	}
	slog.Debug("environment variables loaded",
		"NURSE_STATE_DIR", config.StateDir,
		"DATABASE_URL_SET", os.Getenv("DATABASE_URL") != "",
		"SCRIPT_LIBRARY", config.ScriptLibrary,
		"API_ADDR", config.APIAddr,
		"CORS_ALLOWED_ORIGINS", len(config.AllowedOrigins),
		"TWILIO_FROM_NUMBER_SET", config.TwilioFromNumber != "")

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config, args []string) (Flags, error) {
	fs := flag.NewFlagSet("nurseproject", flag.ContinueOnError)
	stateDir := fs.String("state-dir", config.StateDir, "state directory for service data (overrides $NURSE_STATE_DIR)")
	dbDSN := fs.String("db-dsn", config.DatabaseURL, "check-in store DSN, a Postgres URL or SQLite path (overrides $DATABASE_URL)")
	inMemory := fs.Bool("in-memory", false, "keep check-ins in memory instead of a database")
	library := fs.String("library", config.ScriptLibrary, "path to a YAML or JSON script library (overrides $SCRIPT_LIBRARY)")
	apiAddr := fs.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)")
	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	flags := Flags{
		StateDir:       *stateDir,
		DBDSN:          *dbDSN,
		InMemory:       *inMemory,
		Library:        *library,
		APIAddr:        *apiAddr,
		AllowedOrigins: config.AllowedOrigins,
		Twilio: twilioConfig{
			AccountSID: config.TwilioAccountSID,
			AuthToken:  config.TwilioAuthToken,
			FromNumber: config.TwilioFromNumber,
		},
	}

	// Follow a changed state directory when the DSN is still the derived default
	if flags.DBDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && flags.StateDir != config.StateDir {
		flags.DBDSN = filepath.Join(flags.StateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "old_state_dir", config.StateDir, "new_state_dir", flags.StateDir)
	}
	if flags.InMemory {
		flags.DBDSN = ""
	}
	return flags, nil
}

// loadLibrary loads the configured script library, or the embedded one when no path is set.
func loadLibrary(path string) (*content.Library, error) {
	var (
		lib *content.Library
		err error
	)
	if path == "" {
		lib, err = content.Default()
	} else {
		lib, err = content.LoadFile(path)
	}
	var loadErr *content.LoadError
	if errors.As(err, &loadErr) {
		for _, issue := range loadErr.Issues {
			slog.Error("Script library issue", "source", loadErr.Source, "issue", issue.String())
		}
	}
	if err != nil {
		return nil, err
	}
	slog.Info("Script library loaded", "source", lib.Source(), "rows", lib.Len(), "domains", lib.Domains())
	return lib, nil
}

// buildMessaging returns the Twilio service when any Twilio setting is present
func buildMessaging(cfg twilioConfig) (messaging.Service, error) {
	if !cfg.configured() {
		slog.Debug("No Twilio configuration, nudges disabled")
		return nil, nil
	}
	svc, err := messaging.NewTwilioService(
		messaging.WithAccountSID(cfg.AccountSID),
		messaging.WithAuthToken(cfg.AuthToken),
		messaging.WithFromNumber(cfg.FromNumber),
	)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if flags.APIAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(flags.APIAddr))
	}
	if len(flags.AllowedOrigins) > 0 {
		apiOpts = append(apiOpts, api.WithAllowedOrigins(flags.AllowedOrigins...))
	}
	return apiOpts
}

// newServer wires library, store, messaging and conversation into an API server.
// The returned store must be closed by the caller.
func newServer(flags Flags) (*api.Server, store.Store, error) {
	lib, err := loadLibrary(flags.Library)
	if err != nil {
		return nil, nil, fmt.Errorf("load script library: %w", err)
	}
	st, err := store.New(flags.DBDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	var flowOpts []flow.Option
	svc, err := buildMessaging(flags.Twilio)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("configure messaging: %w", err)
	}
	if svc != nil {
		flowOpts = append(flowOpts, flow.WithMessaging(svc))
	}

	conv, err := flow.NewConversation(lib, st, flowOpts...)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	srv, err := api.NewServer(conv, buildAPIOptions(flags)...)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return srv, st, nil
}

// acquireStateLock locks the state directory when a SQLite file lives under it.
// In-memory and PostgreSQL runs share no local state and return a nil lock.
func acquireStateLock(flags Flags) (*lockfile.Lock, error) {
	if flags.InMemory || flags.DBDSN == "" || store.DetectDSNType(flags.DBDSN) == "postgres" {
		return nil, nil
	}
	return lockfile.Acquire(flags.StateDir)
}

func run(ctx context.Context, flags Flags) error {
	lock, err := acquireStateLock(flags)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			slog.Warn("Failed to release state directory lock", "error", err)
		}
	}()

	srv, st, err := newServer(flags)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Warn("Failed to close store", "error", err)
		}
	}()
	return srv.Run(ctx)
}

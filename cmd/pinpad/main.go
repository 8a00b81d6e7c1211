// Gray Logic PIN Pad
//
// Entry point for the PIN pad controller. A 12-key keypad fills a four digit
// buffer; the PIN is checked against an FNV-1a word in non-volatile storage
// and the result is shown on a 16x2 LCD, the feedback LEDs and the serial
// log. Three consecutive failures lock the pad for ten seconds.
//
// Commands:
//
//	pinpad [-config path] [run]        run the controller (default)
//	pinpad audit [flags]               list the authentication trail
//	pinpad migrate status|up|down      manage the database schema
//	pinpad version                     print build information
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/config"
	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/database"
	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/logging"
	_ "github.com/nerrad567/graylogic-pinpad/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// A missing .env is normal; PINPAD_* variables may come from the service manager.
	_ = godotenv.Load() //nolint:errcheck // Optional file

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses the command line and dispatches to a command.
//
// Parameters:
//   - ctx: Cancelled on SIGINT/SIGTERM
//   - args: Command line without the program name
//   - stdin: Simulator key input when it is not a terminal
//   - stdout: Destination for command output and the simulator screen
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("pinpad", flag.ContinueOnError)
	configPath := fs.String("config", getConfigPath(), "path to config.yaml (env PINPAD_CONFIG)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd, rest := "run", fs.Args()
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}

	if cmd == "version" {
		fmt.Fprintf(stdout, "pinpad %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, version).With("device_id", cfg.Device.ID)
	log.Debug("configuration loaded", "path", *configPath, "command", cmd)

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	switch cmd {
	case "run":
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		return serve(ctx, cfg, db, log, stdin, stdout)
	case "audit":
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		return runAudit(ctx, db, rest, stdout)
	case "migrate":
		return runMigrate(ctx, db, rest, stdout)
	default:
		return fmt.Errorf("unknown command %q (want run, audit, migrate or version)", cmd)
	}
}

// getConfigPath returns the configuration file path.
// Uses PINPAD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("PINPAD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

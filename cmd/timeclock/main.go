package main

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alexanderramin/timeclock/internal/cli"
	"github.com/alexanderramin/timeclock/internal/db"
	"github.com/alexanderramin/timeclock/internal/location"
	"github.com/alexanderramin/timeclock/internal/netmon"
	"github.com/alexanderramin/timeclock/internal/remote"
	"github.com/alexanderramin/timeclock/internal/repository"
	"github.com/alexanderramin/timeclock/internal/service"
	"github.com/mattn/go-isatty"
)

const (
	defaultPollInterval  = 5 * time.Minute
	defaultProbeInterval = 30 * time.Second
	defaultDrainInterval = time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.timeclock/timeclock.db
	dbPath := os.Getenv("TIMECLOCK_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".timeclock", "timeclock.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	entryRepo := repository.NewSQLiteTimeEntryRepo(database)
	queueRepo := repository.NewSQLiteQueueRepo(database)
	siteRepo := repository.NewSQLiteWorksiteRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	// Remote time store client. Call logging goes to stderr when enabled.
	remoteCfg := remote.LoadConfig()
	var remoteObs remote.Observer = remote.NoopObserver{}
	if os.Getenv("TIMECLOCK_LOG_CALLS") == "true" {
		remoteObs = remote.NewLogObserver(os.Stderr)
	}
	client := remote.NewHTTPClient(remoteCfg, remoteObs)

	// Connectivity: probe the store's health endpoint in the background
	// for the duration of the process.
	monitor := netmon.NewMonitor(client.Ping, defaultProbeInterval)
	monitor.Start()
	defer monitor.Close()

	// Location agent is optional; without one, entries simply carry no
	// location and geofence checks are skipped.
	locCfg := location.LoadConfig()
	var provider location.Provider
	var tracker location.BackgroundTracker = location.NoopTracker{}
	if os.Getenv("TIMECLOCK_NO_LOCATION") != "true" {
		provider = location.NewAgentProvider(locCfg)
		tracker = location.NewAgentTracker(locCfg)
	}

	syncSvc := service.NewSyncService(queueRepo, entryRepo, client, monitor, uow, defaultDrainInterval)
	syncSvc.StartAutoDrain()
	defer syncSvc.StopAutoDrain()

	clockSvc := service.NewClockService(
		entryRepo, siteRepo, syncSvc, provider, tracker, uow,
		resolveUserID(), pollInterval(),
	)

	app := &cli.App{
		Clock: clockSvc,
		Sync:  syncSvc,
		Sites: service.NewWorksiteService(siteRepo),
	}

	// Detect interactive terminal for prompting commands and watch mode.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}

// resolveUserID picks the identity reported to the remote store: env
// override first, then the OS account name.
func resolveUserID() string {
	if v := os.Getenv("TIMECLOCK_USER"); v != "" {
		return v
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "default"
}

func pollInterval() time.Duration {
	if v := os.Getenv("TIMECLOCK_POLL_INTERVAL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return defaultPollInterval
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
	"github.com/matheuskafuri/attendwatch/internal/config"
	"github.com/matheuskafuri/attendwatch/internal/holiday"
	"github.com/matheuskafuri/attendwatch/internal/ingest"
	"github.com/matheuskafuri/attendwatch/internal/logging"
	"github.com/matheuskafuri/attendwatch/internal/notify"
	"github.com/matheuskafuri/attendwatch/internal/portal"
	"github.com/matheuskafuri/attendwatch/internal/progress"
	"github.com/matheuskafuri/attendwatch/internal/schedule"
	"github.com/matheuskafuri/attendwatch/internal/store"
)

// demoCounters feed the mock portal.
var demoCounters = attendance.Counters{WorkingDays: 20, Present: 18, Absent: 1, Leave: 1}

// deps is everything a command needs, built from the loaded config.
type deps struct {
	cfg       *config.Holder
	log       *logging.StdLogger
	store     store.Store
	progress  *progress.File
	broker    *progress.Broker
	holidays  *holiday.Store
	ingest    *ingest.Orchestrator
	scheduler *schedule.Scheduler
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.DefaultConfigPath()
}

// setup wires the app. Log output goes to w.
func setup(ctx context.Context, w io.Writer) (*deps, error) {
	path := configPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	logger := logging.New(log.New(w, "", log.LstdFlags), logging.Options{
		RollbarToken: cfg.RollbarToken,
		Environment:  "production",
		CodeVersion:  version,
		Debug:        flagDebug,
	})

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	scraper, err := newScraper(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	d := &deps{
		cfg:      config.NewHolder(path, cfg),
		log:      logger,
		store:    st,
		progress: progress.NewFile(cfg.ProgressPath()),
		broker:   progress.NewBroker(),
		holidays: holiday.NewStore(cfg.HolidaysPath()),
	}

	reporter := progress.NewReporter(d.progress, d.broker, logger)
	d.ingest = ingest.New(scraper, st, reporter, newNotifier(cfg, logger), d.settings,
		ingest.WithLocation(cfg.Location()),
		ingest.WithLogger(logger),
		ingest.WithLockFile(cfg.LockPath()),
	)

	policy := schedule.Policy{Hour: cfg.AutoFetchHour, Location: cfg.Location(), Weekend: cfg.WeekendDays()}
	d.scheduler = schedule.New(policy, st, d.holidays, d.ingest, logger)
	return d, nil
}

// settings reads the current credentials on every run, so updates made
// through the API apply without a restart.
func (d *deps) settings() (ingest.Settings, error) {
	cfg := d.cfg.Get()
	creds, err := cfg.Credentials()
	if err != nil {
		return ingest.Settings{}, err
	}
	return ingest.Settings{Credentials: creds, Notifications: cfg.Notifications}, nil
}

func (d *deps) Close() {
	if err := d.store.Close(); err != nil {
		d.log.Warn("closing store", err)
	}
	d.log.Flush()
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	opts := store.Options{Driver: cfg.Storage.Driver, DSN: cfg.Storage.DSN}
	switch cfg.Storage.Driver {
	case "sqlite":
		opts.Path = cfg.DBPath()
	default:
		opts.Path = cfg.AttendancePath()
	}
	return store.Open(ctx, opts)
}

func newScraper(cfg *config.Config) (portal.Scraper, error) {
	if cfg.Portal.Mock {
		return &portal.Mock{
			Name:     "Demo Student",
			Counters: demoCounters,
		}, nil
	}
	c, err := portal.NewHTTPClient(cfg.Portal.BaseURL, cfg.PortalTimeout())
	if err != nil {
		return nil, fmt.Errorf("portal client: %w", err)
	}
	return c, nil
}

func newNotifier(cfg *config.Config, logger logging.Logger) notify.Notifier {
	n := notify.Multi{notify.Log{Logger: logger}}
	if cfg.Notify.Desktop {
		if d := notify.NewDesktop(); d.Available() {
			n = append(n, d)
		} else {
			logger.Debug("desktop notifications unavailable on this host")
		}
	}
	if cfg.EmailEnabled() {
		n = append(n, notify.NewEmail(cfg.SendgridKey(), cfg.Notify.Email.From, cfg.Notify.Email.To))
	}
	return n
}

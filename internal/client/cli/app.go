package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/devconnector/internal/client/alerts"
	"github.com/dmitrijs2005/devconnector/internal/client/client"
	"github.com/dmitrijs2005/devconnector/internal/client/config"
	"github.com/dmitrijs2005/devconnector/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/devconnector/internal/client/session"
	"github.com/dmitrijs2005/devconnector/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

type App struct {
	config  *config.Config
	api     client.Client
	session *session.Session
	alerts  *alerts.Channel
	db      *sql.DB
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer

	modeMu sync.Mutex
	mode   Mode
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	return newApp(c, api, db, logger, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, api client.Client, db *sql.DB, logger logging.Logger, in io.Reader, out io.Writer) *App {
	logger = logger.With("module", "cli")
	ch := alerts.New(c.AlertTimeout)
	store := metadata.NewSQLiteRepository(db)

	return &App{
		config:  c,
		api:     api,
		session: session.New(api, store, ch, session.WithLogger(logger)),
		alerts:  ch,
		db:      db,
		logger:  logger,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

// Run restores the previous session, starts the connectivity watcher and
// blocks in the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to devconnector CLI (type 'help' for commands)")

	if err := a.session.Start(ctx); err != nil {
		a.logger.Warn(ctx, "session restore failed", "error", err)
		a.report(err)
	}
	a.checkOnline(ctx)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.status, a.reader)
	return nil
}

func (a *App) Close() {
	a.alerts.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Error(context.Background(), "closing database", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Current().LoggedIn()
}

func (a *App) status() string {
	s := ""
	if st := a.session.Current(); st.LoggedIn() {
		s = st.User.Email + " "
	}
	s += string(a.Mode())
	return fmt.Sprintf("(%s)", s)
}

func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if !changed {
		return
	}
	if mode == ModeOffline {
		a.logger.Warn(ctx, "server unreachable", "mode", mode)
		return
	}
	a.logger.Info(ctx, "server reachable", "mode", mode)
}

// checkOnline pings the server once and records the resulting mode.
func (a *App) checkOnline(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := a.api.Health(ctx)
	if err != nil {
		a.setMode(ctx, ModeOffline)
		return err
	}
	a.setMode(ctx, ModeOnline)
	return nil
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

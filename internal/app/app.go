package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"golang.org/x/sync/errgroup"

	"eastereggs/internal/achievements"
	"eastereggs/internal/engine"
	"eastereggs/internal/hub"
	"eastereggs/internal/input"
	"eastereggs/internal/notify"
	"eastereggs/internal/sched"
	"eastereggs/internal/state"
	"eastereggs/internal/telemetry"
	"eastereggs/internal/triggers"
	"eastereggs/internal/ui"
	"eastereggs/internal/viewer"
)

type App struct {
	cfg Config

	logger  *telemetry.JSONLogger
	store   state.Store
	metrics *telemetry.Metrics
	clock   sched.Scheduler
	engine  *engine.Engine
	viewer  *viewer.Viewer
	view    Page

	startTime time.Time

	devMu     sync.Mutex
	devServer *http.Server
	devAddr   string

	closeOnce sync.Once
	closeErr  error
}

func New(ctx context.Context, cfg Config) (*App, error) {
	return newApp(ctx, cfg, nil)
}

// newApp wires the app around page, or a terminal page when page is nil.
func newApp(ctx context.Context, cfg Config, page Page) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}

	logger, err := telemetry.NewJSONLogger(cfg.LogPath)
	if err != nil {
		return nil, err
	}

	defs, err := loadCatalog(cfg)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	store, err := state.Open(ctx, cfg.Store, cfg.DataDir, logger)
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}

	if page == nil {
		page = ui.New(ui.Options{ASCIIOnly: cfg.ASCIIOnly, Debug: cfg.Debug, StyleVariant: cfg.Style})
	}

	clock := sched.NewReal()
	metrics := telemetry.NewMetrics()
	eng, err := engine.New(ctx, engine.Options{
		Catalog: defs,
		Store:   store,
		Clock:   clock,
		Sink:    page,
		Logger:  logger,
		Metrics: metrics,
		Settings: triggers.Settings{
			IdleTimeout:      cfg.IdleTimeout,
			SessionMilestone: cfg.SessionMilestone,
		},
		MaxToasts: cfg.MaxToasts,
	})
	if err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		metrics:   metrics,
		clock:     clock,
		engine:    eng,
		viewer:    viewer.New(eng, clock.Now),
		view:      page,
		startTime: clock.Now(),
	}
	page.SetController(a)
	return a, nil
}

func loadCatalog(cfg Config) ([]achievements.Definition, error) {
	if cfg.CatalogPath == "" {
		return achievements.DefaultCatalog(), nil
	}
	defs, err := achievements.LoadCatalogFile(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", cfg.CatalogPath, err)
	}
	return defs, nil
}

// Run shows the page until the visitor quits or ctx is canceled. In dev mode
// the dev HTTP surface runs alongside and shares the same lifetime.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("app.start", map[string]any{
		"session": a.engine.SessionID(),
		"store":   a.cfg.Store,
		"dev":     a.cfg.Dev,
	})
	a.engine.Start()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if a.cfg.Dev {
		ln, err := net.Listen("tcp", a.cfg.DevHTTP)
		if err != nil {
			return fmt.Errorf("dev http listen %s: %w", a.cfg.DevHTTP, err)
		}
		srv := a.newDevServer()
		a.devMu.Lock()
		a.devServer = srv
		a.devAddr = ln.Addr().String()
		a.devMu.Unlock()
		a.logger.Info("dev_http.listening", map[string]any{"addr": a.devAddr})
		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("dev_http.serve_failed", map[string]any{"error": err.Error(), "addr": a.cfg.DevHTTP})
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		defer cancel()
		return a.view.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		a.view.Stop()
		a.shutdownDev()
		return nil
	})

	err := g.Wait()
	a.logger.Info("app.stop", map[string]any{"session": a.engine.SessionID(), "unlocked": len(a.engine.Unlocked())})
	return err
}

// DevAddr returns the bound dev HTTP address once Run has started it.
func (a *App) DevAddr() string {
	a.devMu.Lock()
	defer a.devMu.Unlock()
	return a.devAddr
}

func (a *App) shutdownDev() {
	a.devMu.Lock()
	srv := a.devServer
	a.devServer = nil
	a.devMu.Unlock()
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

func (a *App) Close() error {
	a.closeOnce.Do(func() {
		a.shutdownDev()
		a.view.Close()
		a.closeErr = errors.Join(a.engine.Close(), a.store.Close())
		_ = a.logger.Close()
	})
	return a.closeErr
}

func (a *App) OnSignal(sig input.Signal) {
	a.engine.Dispatch(sig)
}

func (a *App) OnOpenProject(id string) {
	a.logger.Info("viewer.open", map[string]any{"project": id})
	a.viewer.Open(id)
}

func (a *App) OnCloseProject() {
	a.viewer.Close()
}

func (a *App) OnProjectImageClick() {
	a.viewer.ImageClick()
}

func (a *App) OnQuit() {
	a.view.Stop()
}

func (a *App) Snapshot() ui.Snapshot {
	return ui.Snapshot{
		Hub:           a.engine.Hub(),
		Notifications: a.engine.Notifications(),
		IdleOverlay:   a.engine.Overlay(notify.OverlayIdle),
		APIOverlay:    a.engine.Overlay(notify.OverlayAPI),
	}
}

// withEngine opens the configured store and runs fn against an engine with
// no matchers, for one-shot commands outside the page.
func withEngine(ctx context.Context, cfg Config, fn func(*engine.Engine) error) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}
	logger, err := telemetry.NewJSONLogger(cfg.LogPath)
	if err != nil {
		return err
	}
	defer logger.Close()

	defs, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	store, err := state.Open(ctx, cfg.Store, cfg.DataDir, logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	eng, err := engine.New(ctx, engine.Options{
		Catalog:  defs,
		Store:    store,
		Logger:   logger,
		Matchers: []triggers.Matcher{triggers.External{}},
	})
	if err != nil {
		_ = store.Close()
		return err
	}
	runErr := fn(eng)
	return errors.Join(runErr, eng.Close(), store.Close())
}

// PrintHub renders the persisted achievement hub to w.
func PrintHub(ctx context.Context, cfg Config, w io.Writer) error {
	return withEngine(ctx, cfg, func(eng *engine.Engine) error {
		md := hub.Markdown(eng.Hub(), cfg.ASCIIOnly)
		style := "dark"
		if cfg.ASCIIOnly {
			style = "ascii"
		}
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(78),
		)
		if err != nil {
			_, err = io.WriteString(w, md)
			return err
		}
		out, err := renderer.Render(md)
		if err != nil {
			return fmt.Errorf("render hub: %w", err)
		}
		_, err = io.WriteString(w, out)
		return err
	})
}

// Trigger reports id on the external channel against the persisted set.
// newly is false when it was already unlocked.
func Trigger(ctx context.Context, cfg Config, id string) (newly bool, err error) {
	err = withEngine(ctx, cfg, func(eng *engine.Engine) error {
		if _, ok := eng.Definition(id); !ok {
			return fmt.Errorf("%w: %q", achievements.ErrUnknownID, id)
		}
		before := len(eng.Unlocked())
		eng.ReportTrigger(id)
		newly = len(eng.Unlocked()) > before
		return nil
	})
	return newly, err
}

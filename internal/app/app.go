package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc"

	"github.com/lcalzada-xor/campaign-heatmap/internal/adapters/live"
	"github.com/lcalzada-xor/campaign-heatmap/internal/adapters/reporting"
	"github.com/lcalzada-xor/campaign-heatmap/internal/adapters/storage"
	"github.com/lcalzada-xor/campaign-heatmap/internal/adapters/upstream"
	"github.com/lcalzada-xor/campaign-heatmap/internal/adapters/web/display"
	"github.com/lcalzada-xor/campaign-heatmap/internal/adapters/web/handlers"
	webserver "github.com/lcalzada-xor/campaign-heatmap/internal/adapters/web/server"
	web "github.com/lcalzada-xor/campaign-heatmap/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/campaign-heatmap/internal/config"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/ports"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/services/dashboard"
	grpcserver "github.com/lcalzada-xor/campaign-heatmap/internal/core/services/grpc"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/services/heatlayer"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/services/persistence"
	coverage "github.com/lcalzada-xor/campaign-heatmap/internal/core/services/reporting"
	"github.com/lcalzada-xor/campaign-heatmap/internal/mock"
	"github.com/lcalzada-xor/campaign-heatmap/internal/telemetry"
)

const (
	// DefaultMockVisits is the history generated for the mock campaign API.
	DefaultMockVisits = 200
	// snapshotBuffer bounds the queue in front of the snapshot store.
	snapshotBuffer = 16
	// staleAfterPolls is how many poll intervals may pass without an applied
	// change before /health reports degraded.
	staleAfterPolls = 3
)

// Application holds the core components of the application.
// It acts as the Facade for the entire system, orchestrating services and infrastructure.
type Application struct {
	Config     *config.Config
	Dashboard  *dashboard.Service
	WebServer  *webserver.Server
	GrpcServer *grpc.Server
	Health     *grpcserver.HealthReporter
	Store      *storage.SQLiteAdapter
	Recorder   *persistence.Recorder
	Mock       *mock.MockIntegration
	mockLis    net.Listener
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	if err := app.bootstrap(); err != nil {
		app.release()
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation & Infrastructure
	telemetry.InitMetrics()
	display.InitIcons(app.Config.IconBase)

	loc, err := display.LoadLocation(app.Config.TimeZone)
	if err != nil {
		slog.Warn("Unknown time zone, falling back to UTC", "tz", app.Config.TimeZone, "error", err)
	}

	if err := app.initStorage(); err != nil {
		return err
	}

	// 2. Upstream
	apiURL := app.Config.APIURL
	if app.Config.MockMode {
		if apiURL, err = app.initMock(); err != nil {
			return err
		}
	}

	api, err := upstream.NewClient(apiURL, app.Config.RequestTimeout)
	if err != nil {
		return fmt.Errorf("invalid API URL: %w", err)
	}
	feed, err := live.NewClient(apiURL, live.Options{
		Path:       app.Config.FeedPath,
		Reconnect:  app.Config.Reconnect,
		MinBackoff: app.Config.ReconnectMin,
		MaxBackoff: app.Config.ReconnectMax,
	})
	if err != nil {
		return fmt.Errorf("invalid feed URL: %w", err)
	}

	// 3. Domain Services
	wsManager := web.NewWSManager(loc)
	app.Dashboard = dashboard.New(api, feed, heatlayer.NewBinder(wsManager), dashboard.Options{
		PollInterval: app.Config.PollInterval,
		DedupeLive:   app.Config.Dedupe,
	})

	var store ports.SnapshotStore
	if app.Store != nil {
		store = app.Store
		app.Recorder = persistence.NewRecorder(app.Store, snapshotBuffer, app.Config.HistoryKeep)
		app.Dashboard.SetStore(app.Store)
		app.Dashboard.SetRecorder(app.Recorder)
	}

	app.Health = grpcserver.NewHealthReporter()
	app.Dashboard.AddListener(wsManager)
	app.Dashboard.AddListener(app.Health)

	// 4. Servers
	app.initServers(wsManager, store, loc)
	return nil
}

func (app *Application) initStorage() error {
	if app.Config.DBPath == "" {
		slog.Info("History disabled: no database path configured")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(app.Config.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create DB directory: %w", err)
	}

	store, err := storage.NewSQLiteAdapter(app.Config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to init snapshot storage: %w", err)
	}
	app.Store = store
	return nil
}

// initMock binds the in-process campaign API and returns its base URL, so
// the first poll after Mount already finds it listening.
func (app *Application) initMock() (string, error) {
	lis, err := net.Listen("tcp", app.Config.MockAddr)
	if err != nil {
		return "", fmt.Errorf("mock listen error: %w", err)
	}
	app.mockLis = lis
	app.Mock = mock.NewMockIntegration(mock.Options{
		Addr:          app.Config.MockAddr,
		SeedVisits:    DefaultMockVisits,
		SimulateEvery: mock.DefaultSimulateEvery,
	})

	log.Println("Mock Mode Active: serving a simulated campaign API")
	return mockBaseURL(lis.Addr()), nil
}

func mockBaseURL(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return fmt.Sprintf("http://127.0.0.1:%d", tcp.Port)
	}
	return "http://" + addr.String()
}

func (app *Application) initServers(wsManager *web.WSManager, store ports.SnapshotStore, loc *time.Location) {
	dashboardHandler := handlers.NewDashboardHandler(app.Dashboard, loc)
	dashboardHandler.StaleAfter = staleAfterPolls * app.Config.PollInterval
	reports := handlers.NewReportHandler(
		coverage.NewCoverageReportGenerator(app.Dashboard, store, loc),
		reporting.NewPDFExporter(),
	)

	app.WebServer = webserver.NewServer(webserver.Options{
		Addr:         app.Config.Addr,
		PasswordHash: app.Config.PasswordHash,
	}, wsManager, dashboardHandler, store, reports)

	if app.Config.GRPCPort > 0 {
		app.GrpcServer = grpcserver.NewGrpcServer(app.Health)
	}
}

// Run starts the application components and manages their execution lifecycle.
func (app *Application) Run(ctx context.Context) error {
	slog.Info("Starting campaign heatmap components...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 4)

	// 1. Auxiliary Loops
	if app.Recorder != nil {
		app.Recorder.Start(ctx)
	}

	if app.Mock != nil {
		lis := app.mockLis
		app.mockLis = nil
		go func() {
			if err := app.Mock.Serve(ctx, lis); err != nil {
				errChan <- fmt.Errorf("mock server error: %w", err)
			}
		}()
	}

	// 2. Servers
	go func() {
		log.Printf("Web Server listening on %s", app.Config.Addr)
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	if app.GrpcServer != nil {
		go func() {
			log.Printf("gRPC Server listening on :%d", app.Config.GRPCPort)
			lis, err := net.Listen("tcp", fmt.Sprintf(":%d", app.Config.GRPCPort))
			if err != nil {
				errChan <- fmt.Errorf("grpc listen error: %w", err)
				return
			}

			go func() {
				<-ctx.Done()
				app.Health.Shutdown()
				app.GrpcServer.GracefulStop()
			}()

			if err := app.GrpcServer.Serve(lis); err != nil {
				errChan <- fmt.Errorf("grpc server error: %w", err)
			}
		}()
	}

	// 3. Dashboard
	if err := app.Dashboard.Mount(ctx); err != nil {
		cancel()
		return errors.Join(fmt.Errorf("mount dashboard: %w", err), app.cleanup())
	}

	slog.Info("Heatmap Ready. Press Ctrl+C to terminate.")

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Termination signal received")
	case runErr = <-errChan:
	}
	cancel()

	return errors.Join(runErr, app.cleanup())
}

func (app *Application) cleanup() error {
	slog.Info("Cleaning up resources...")

	var errs []error
	if app.Dashboard != nil && app.Dashboard.Mounted() {
		if err := app.Dashboard.Unmount(); err != nil {
			errs = append(errs, fmt.Errorf("unmount dashboard: %w", err))
		}
	}
	if app.Recorder != nil {
		app.Recorder.Wait()
	}
	if err := app.release(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// release closes what bootstrap opened.
func (app *Application) release() error {
	var errs []error
	if app.mockLis != nil {
		app.mockLis.Close()
		app.mockLis = nil
	}
	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
		app.Store = nil
	}
	return errors.Join(errs...)
}

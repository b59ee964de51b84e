package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/config"
	"github.com/grocerydesk/grocery-console/pkg/console"
	"github.com/grocerydesk/grocery-console/pkg/database"
	"github.com/grocerydesk/grocery-console/pkg/email"
	"github.com/grocerydesk/grocery-console/pkg/handlers"
	"github.com/grocerydesk/grocery-console/pkg/logging"
	"github.com/grocerydesk/grocery-console/pkg/mcp"
	"github.com/grocerydesk/grocery-console/pkg/powerbi"
	"github.com/grocerydesk/grocery-console/pkg/repositories"
	"github.com/grocerydesk/grocery-console/pkg/services"
	"github.com/grocerydesk/grocery-console/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

const usage = `Usage: grocery-console [command] [flags]

Commands:
  console   interactive menu (default)
  serve     report viewer, health and MCP over HTTP
  mcp       MCP server on stdin/stdout
  report    generate one CSV report
  graph     chart one report
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	command := "console"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}

	cfg, err := config.Load(Version)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Log.Level, cfg.IsDevelopment())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("Configuration loaded",
		zap.String("command", command),
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("powerbi_configured", cfg.PowerBI.IsConfigured()),
		zap.Bool("email_configured", cfg.Email.IsConfigured()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	switch command {
	case "console":
		return app.console(ctx)
	case "serve":
		return app.serve(ctx)
	case "mcp":
		return app.mcpStdio(ctx)
	case "report":
		return app.report(ctx, args)
	case "graph":
		return app.graph(ctx, args)
	case "help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	connect services.ConnectFunc
	reports services.ReportService
	publish services.PublishService
	store   services.StoreService
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	connect := services.NewConnectFunc(&cfg.Database, logger)
	reportService := services.NewReportService(connect, cfg.Reports, logger)

	// Interfaces stay nil when a service is not configured so the publish
	// service reports ErrNotConfigured.
	var bi services.BIClient
	if cfg.PowerBI.IsConfigured() {
		cred, err := powerbi.NewCredential(&cfg.PowerBI)
		if err != nil {
			return nil, err
		}
		bi = powerbi.NewClient(&cfg.PowerBI, cred, logger)
	}

	var sender email.Sender
	if cfg.Email.IsConfigured() {
		s, err := email.NewSendGridSender(&cfg.Email, logger)
		if err != nil {
			return nil, err
		}
		sender = s
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		connect: connect,
		reports: reportService,
		publish: services.NewPublishService(reportService, bi, sender, cfg.PowerBI, cfg.BaseURL, logger),
		store: services.NewStoreService(connect,
			repositories.NewSupplierRepository(),
			repositories.NewProductRepository(),
			repositories.NewCustomerRepository(),
			repositories.NewOrderRepository(),
			logger),
	}, nil
}

func (a *app) console(ctx context.Context) error {
	c := console.New(os.Stdin, os.Stdout, console.Deps{
		Reports: a.reports,
		Publish: a.publish,
		Store:   a.store,
	}, a.logger)

	err := c.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) serve(ctx context.Context) error {
	viewer, err := handlers.NewViewerHandler(ui.TemplatesFS(), a.logger)
	if err != nil {
		return err
	}
	mcpServer := mcp.NewReportServer(a.cfg.Version, a.reports, a.logger)

	router := handlers.NewRouter(a.logger,
		handlers.NewHealthHandler(a.cfg, a.checkDatabase, a.logger),
		viewer,
		handlers.NewMCPHandler(mcpServer, a.logger),
	)

	srv := &http.Server{
		Addr:              net.JoinHostPort(a.cfg.BindAddr, a.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting grocery-console server",
			zap.String("addr", srv.Addr),
			zap.String("version", a.cfg.Version))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// checkDatabase opens and pings one connection.
func (a *app) checkDatabase(ctx context.Context) error {
	return a.connect(ctx, func(context.Context, *database.DB) error { return nil })
}

func (a *app) mcpStdio(ctx context.Context) error {
	s := mcp.NewReportServer(a.cfg.Version, a.reports, a.logger)
	err := s.ServeStdio(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) report(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	reportType := fs.String("type", "", "report type: earnings, spending, product_performance, least_selling")
	period := fs.String("period", "", "time period label used in the file name")
	out := fs.String("out", "", "output CSV path (default reports/csv/<type>_<period>.csv)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := a.reports.GenerateReport(ctx, *reportType, *period, *out)
	if err != nil {
		return err
	}
	fmt.Printf("Report saved to %s (%d rows).\n", result.Path, result.Rows)
	return nil
}

func (a *app) graph(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("graph", flag.ContinueOnError)
	graphType := fs.String("type", "", "graph type: earnings, spending, product_performance, least_selling")
	period := fs.String("period", "", "time period label used in the file names")
	csvPath := fs.String("csv", "", "source CSV path (default reports/csv/<type>_<period>.csv)")
	out := fs.String("out", "", "output PNG path (default reports/graphs/<type>_<period>.png)")
	live := fs.Bool("live", false, "chart the current query result instead of a CSV")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		result *services.GraphOutput
		err    error
	)
	if *live {
		result, err = a.reports.GenerateGraphLive(ctx, *graphType, *period, *out)
	} else {
		result, err = a.reports.GenerateGraph(ctx, *graphType, *period, *csvPath, *out)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Graph saved to %s (%d bars).\n", result.Path, result.Bars)
	return nil
}

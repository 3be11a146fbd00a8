package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"newslens/internal/artifacts"
	"newslens/internal/config"
	cronrunner "newslens/internal/cron"
	"newslens/internal/db"
	"newslens/internal/handler"
	"newslens/internal/logger"
	"newslens/internal/pipeline"
	"newslens/internal/prices"
	gormrepository "newslens/internal/repository/gorm"
	"newslens/internal/sentiment"
)

func usage(out *os.File) {
	fmt.Fprint(out, `newslens [flags] <task>

Tasks:
  correlate    headline sentiment vs daily returns per ticker (default)
  eda          descriptive/temporal exploration of the news table
  indicators   technical indicators (SMA/RSI/MACD/Sharpe) per ticker
  serve        read-only HTTP API over the stored run history

Flags:
  -config      config file path (env: NL_CONFIG, default config/config.yaml)
  -news        news CSV path (overrides news.csv)
  -tickers     comma-separated tickers (overrides correlation.tickers)
  -window      price history window, e.g. 6mo/1y/2y (overrides prices.window)
  -out         output directory (overrides output.dir)
  -lag         lag in trading days, >= 0 (overrides correlation.lag_days)
`)
}

func main() {
	var (
		cfgFlag     = flag.String("config", "", "config file path (env: NL_CONFIG)")
		newsFlag    = flag.String("news", "", "news CSV path")
		tickersFlag = flag.String("tickers", "", "comma-separated ticker list, e.g. AAPL,MSFT")
		windowFlag  = flag.String("window", "", "price history window (e.g. 6mo, 1y, 2y)")
		outFlag     = flag.String("out", "", "output directory")
		lagFlag     = flag.Int("lag", -1, "lag in trading days (>= 0)")
	)
	flag.Usage = func() { usage(os.Stderr) }
	flag.Parse()

	task := "correlate"
	if args := flag.Args(); len(args) > 0 {
		task = args[0]
	}
	if task == "help" {
		usage(os.Stdout)
		return
	}

	cfgPath := strings.TrimSpace(*cfgFlag)
	if cfgPath == "" {
		cfgPath = os.Getenv("NL_CONFIG")
	}
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	envOnly := false
	if raw := os.Getenv("NL_ENV_ONLY"); raw != "" {
		envOnly = strings.EqualFold(raw, "true") || raw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	applyOverrides(&cfg, *newsFlag, *tickersFlag, *windowFlag, *outFlag, *lagFlag)

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(1)
	}
	defer log.Sync()

	var store *gormrepository.Store
	var dbConn *db.DB
	if strings.TrimSpace(cfg.DB.DSN) != "" {
		dbConn, err = db.Open(cfg.DB)
		if err != nil {
			log.Fatal("db open failed", zap.Error(err))
		}
		defer db.Close(dbConn)
		if err := db.AutoMigrate(dbConn); err != nil {
			log.Fatal("auto-migrate failed", zap.Error(err))
		}
		store = gormrepository.New(dbConn.Gorm)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch task {
	case "correlate":
		err = runCorrelate(ctx, cfg, log, store)
	case "eda":
		err = runEDA(ctx, cfg, log, store)
	case "indicators":
		err = runIndicators(ctx, cfg, log, store)
	case "serve":
		err = runServe(ctx, cfg, log, store, dbConn)
	default:
		usage(os.Stderr)
		err = fmt.Errorf("unknown task: %s", task)
	}
	if err != nil {
		log.Error("task failed", zap.String("task", task), zap.Error(err))
		os.Exit(1)
	}
}

func applyOverrides(cfg *config.Config, news, tickers, window, out string, lag int) {
	if strings.TrimSpace(news) != "" {
		cfg.News.CSV = strings.TrimSpace(news)
	}
	if strings.TrimSpace(tickers) != "" {
		cfg.Correlation.Tickers = tickers
		cfg.Indicators.Tickers = tickers
	}
	if strings.TrimSpace(window) != "" {
		cfg.Prices.Window = strings.TrimSpace(window)
		cfg.Indicators.Window = strings.TrimSpace(window)
	}
	if strings.TrimSpace(out) != "" {
		cfg.Output.Dir = strings.TrimSpace(out)
	}
	if lag >= 0 {
		cfg.Correlation.LagDays = lag
	}
}

func newFetcher(cfg config.Config, log *zap.Logger) prices.Fetcher {
	client := prices.NewClient(&http.Client{Timeout: cfg.Prices.Timeout}, cfg.Prices.BaseURL)
	return &prices.CachedFetcher{
		Fetcher:      client,
		Logger:       log,
		RetryMax:     cfg.Prices.RetryMax,
		RetryBackoff: cfg.Prices.RetryBackoff,
	}
}

func correlationPipeline(cfg config.Config, log *zap.Logger, store *gormrepository.Store) (*pipeline.Correlation, pipeline.CorrelationParams) {
	p := &pipeline.Correlation{
		Logger:  log,
		Scorer:  sentiment.NewScorer(),
		Fetcher: newFetcher(cfg, log),
		Writer:  &artifacts.Writer{Dir: cfg.Output.Dir},
	}
	if store != nil {
		p.Repo = store
	}
	params := pipeline.CorrelationParams{
		NewsCSV: cfg.News.CSV,
		Tickers: config.SplitTickers(cfg.Correlation.Tickers),
		Window:  cfg.Prices.Window,
		LagDays: cfg.Correlation.LagDays,
		OutDir:  cfg.Output.Dir,
	}
	return p, params
}

func runCorrelate(ctx context.Context, cfg config.Config, log *zap.Logger, store *gormrepository.Store) error {
	p, params := correlationPipeline(cfg, log, store)
	if len(params.Tickers) == 0 {
		return errors.New("no tickers configured (set -tickers or correlation.tickers)")
	}
	return p.Run(ctx, params)
}

func runEDA(ctx context.Context, cfg config.Config, log *zap.Logger, store *gormrepository.Store) error {
	p := &pipeline.EDA{
		Logger: log,
		Writer: &artifacts.Writer{Dir: cfg.Output.Dir},
	}
	if store != nil {
		p.Repo = store
	}
	return p.Run(ctx, pipeline.EDAParams{NewsCSV: cfg.News.CSV, OutDir: cfg.Output.Dir})
}

func runIndicators(ctx context.Context, cfg config.Config, log *zap.Logger, store *gormrepository.Store) error {
	p := &pipeline.Indicators{
		Logger:  log,
		Fetcher: newFetcher(cfg, log),
		Writer:  &artifacts.Writer{Dir: cfg.Output.Dir},
	}
	if store != nil {
		p.Repo = store
	}
	params := pipeline.IndicatorsParams{
		Tickers: config.SplitTickers(cfg.Indicators.Tickers),
		Window:  cfg.Indicators.Window,
		OutDir:  cfg.Output.Dir,
	}
	if len(params.Tickers) == 0 {
		return errors.New("no tickers configured (set -tickers or indicators.tickers)")
	}
	return p.Run(ctx, params)
}

func runServe(ctx context.Context, cfg config.Config, log *zap.Logger, store *gormrepository.Store, dbConn *db.DB) error {
	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	healthHandler := &handler.HealthHandler{Started: time.Now()}
	if dbConn != nil {
		healthHandler.DB = dbConn.Gorm
	}
	healthHandler.Register(engine)
	resultsHandler := &handler.ResultsHandler{}
	if store != nil {
		resultsHandler.Repo = store
	}
	resultsHandler.Register(engine)

	var runner *cronrunner.Runner
	if cfg.Cron.Enabled {
		runner = cronrunner.New(log, ctx)
		p, params := correlationPipeline(cfg, log, store)
		if len(params.Tickers) > 0 {
			if _, err := runner.Add(cfg.Cron.Correlate, "correlate", func(jobCtx context.Context) error {
				return p.Run(jobCtx, params)
			}); err != nil {
				return fmt.Errorf("schedule correlate: %w", err)
			}
			runner.Start()
			defer runner.Stop()
		} else {
			log.Warn("cron enabled but no tickers configured, nothing scheduled")
		}
	}

	srv := &http.Server{Addr: cfg.Server.HTTPAddr, Handler: engine}
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server started", zap.String("addr", cfg.Server.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("http server stopped")
	return nil
}

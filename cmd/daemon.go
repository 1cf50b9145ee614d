package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"reflect"
	"syscall"

	"github.com/grafana/dskit/services"
	"github.com/traefik/yaegi/interp"

	"github.com/hashmap-kz/quantd/config"
	"github.com/hashmap-kz/quantd/internal/boot"
	"github.com/hashmap-kz/quantd/internal/dashpipe"
	"github.com/hashmap-kz/quantd/internal/dataeng"
	"github.com/hashmap-kz/quantd/internal/httpsrv"
	"github.com/hashmap-kz/quantd/internal/jobq"
	"github.com/hashmap-kz/quantd/internal/paper"
	"github.com/hashmap-kz/quantd/internal/quant/strategy"
	"github.com/hashmap-kz/quantd/internal/quant/universe"
	"github.com/hashmap-kz/quantd/internal/scansuperv"
	"github.com/hashmap-kz/quantd/internal/snapshot"
	"github.com/hashmap-kz/quantd/internal/version"
)

type DaemonOpts struct {
	// EntryFile overrides the file the script directory is derived from
	// (defaults to the running executable).
	EntryFile string
}

func RunDaemon(opts *DaemonOpts) {
	cfg := config.Cfg()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if cfg.IsLocalStor() && cfg.Main.Directory == "" {
		log.Fatal("main.directory is required for localfs storage")
	}

	registry := defaultRegistry()
	client := dataeng.NewClient(&cfg.Data, nil)
	store := mustSetupStore(cfg)

	scanner := scansuperv.NewScanner(cfg, &scansuperv.ScannerOpts{
		Client: client,
		Store:  store,
	})
	queue := jobq.NewJobQueue(8)
	superv := scansuperv.NewSupervisor(cfg, &scansuperv.SupervisorOpts{
		Scanner: scanner,
		Store:   store,
		Queue:   queue,
	})

	loader, err := boot.NewLoader(&boot.LoaderOpts{
		EntryFile: opts.EntryFile,
		Exports:   hostExports(registry),
	})
	if err != nil {
		log.Fatal(err)
	}

	trading := setupTrading(ctx, cfg, client)

	pipeline := dashpipe.NewDashPipelineService(cfg, loader, superv, queue)
	if err := services.StartAndAwaitRunning(ctx, pipeline); err != nil {
		log.Fatal(err)
	}

	svc := httpsrv.NewDashboardService(cfg, &httpsrv.DashboardServiceOpts{
		Loader:   loader,
		Scanner:  scanner,
		Store:    store,
		Registry: registry,
		Client:   client,
		Trading:  trading,
		Pipeline: pipeline,
	})
	srv := httpsrv.NewHTTPServer(fmt.Sprintf(":%d", cfg.Main.ListenPort), httpsrv.NewController(svc))
	srv.Start(ctx)

	<-ctx.Done()
	slog.Info("shutting down")

	srv.Shutdown(context.Background())
	if err := services.StopAndAwaitTerminated(context.Background(), pipeline); err != nil {
		slog.Error("pipeline shutdown", slog.Any("err", err))
	}
}

func defaultRegistry() *strategy.Registry {
	return strategy.NewRegistry()
}

func mustSetupStore(cfg *config.Config) *snapshot.Store {
	stor, err := snapshot.SetupStorage(&snapshot.SetupStorageOpts{
		BaseDir: cfg.Main.Directory,
		SubPath: snapshot.SubPath,
	})
	if err != nil {
		log.Fatal(err)
	}
	return snapshot.NewStore(stor)
}

func setupTrading(ctx context.Context, cfg *config.Config, quoter paper.PriceQuoter) *paper.Engine {
	var repo paper.Repository
	if cfg.Paper.ConnString != "" {
		pg, err := paper.NewPGRepo(ctx, cfg.Paper.ConnString)
		if err != nil {
			log.Fatal(err)
		}
		repo = pg
	} else {
		slog.Warn("paper trading runs in-memory, positions are lost on restart")
		repo = paper.NewMemRepo()
	}
	return paper.NewEngine(repo, quoter, cfg.Paper.InitialCash)
}

// hostExports is the API visible to loaded dashboard scripts under
// import "quantd/host".
func hostExports(registry *strategy.Registry) interp.Exports {
	logf := func(format string, args ...any) {
		slog.Info(fmt.Sprintf(format, args...), slog.String("component", "dashboard-script"))
	}
	return interp.Exports{
		"quantd/host/host": {
			"Version":       reflect.ValueOf(version.Version),
			"Logf":          reflect.ValueOf(logf),
			"Sectors":       reflect.ValueOf(universe.Sectors),
			"SectorTickers": reflect.ValueOf(universe.Sector),
			"StrategyKeys":  reflect.ValueOf(registry.Keys),
		},
	}
}

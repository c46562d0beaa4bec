package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/drill.report/internal/api"
	"github.com/banshee-data/drill.report/internal/config"
	"github.com/banshee-data/drill.report/internal/hole"
	"github.com/banshee-data/drill.report/internal/monitoring"
	"github.com/banshee-data/drill.report/internal/sim"
	"github.com/banshee-data/drill.report/internal/store"
	"github.com/banshee-data/drill.report/internal/version"
)

var (
	listen     = flag.String("listen", ":8080", "Listen address")
	dbFile     = flag.String("db", "inspection_data.db", "Path to the sqlite database")
	configPath = flag.String("config", config.DefaultConfigPath, "Path to the tuning config JSON")
	devMode    = flag.Bool("dev", false, "Run in dev mode (verbose logging)")
)

func main() {
	flag.Parse()
	monitoring.Verbose = *devMode
	log.Printf("drill.report %s starting", version.String())

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	tuning := loadTuning(*configPath)

	st, err := store.Open(*dbFile)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	reg := hole.NewRegistry()
	if holes, err := st.LoadHoles(); err != nil {
		log.Printf("failed to preload holes: %v", err)
	} else if len(holes) > 0 {
		if err := reg.Replace(holes); err != nil {
			log.Printf("failed to preload registry: %v", err)
		} else {
			log.Printf("preloaded %d holes from %s", len(holes), *dbFile)
		}
	}

	broker := api.NewEventBroker()

	// The store sink and completion handler need the engine's run ID, so
	// the engine variable is captured before construction.
	var eng *sim.Engine
	storeSink := sim.StatusSinkFunc(func(holeID string, s hole.Status) {
		if err := st.RecordStatusEvent(eng.RunID(), holeID, s); err != nil {
			monitoring.Logf("failed to record status event for %s: %v", holeID, err)
		}
	})
	onDone := func(runID string) {
		completed, _ := eng.Progress()
		if err := st.FinishRun(runID, completed); err != nil {
			monitoring.Logf("failed to finish run %s: %v", runID, err)
		}
		broker.PublishCompletion(runID)
	}

	eng, err = sim.NewEngine(reg, tuning.EngineConfig(),
		sim.WithStatusSink(sim.MultiSink{broker.StatusSink(), storeSink}),
		sim.WithSectorNotifier(broker.SectorNotifier()),
		sim.WithCompletionHandler(onDone),
	)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := api.NewServer(eng, reg, st, tuning, broker).ServeMux()
	server := &http.Server{
		Addr:    *listen,
		Handler: mux,
	}

	go func() {
		log.Printf("listening on %s", *listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	// A stop mid-Detecting finalizes the in-flight unit before halting, so
	// no hole is left in-progress by a shutdown either.
	if eng.Running() {
		if err := eng.Stop(); err != nil {
			log.Printf("failed to stop engine: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
}

// loadTuning reads the tuning config, tolerating a missing file at the
// default path (hard defaults apply). An explicitly-given path must load.
func loadTuning(path string) *config.TuningConfig {
	cfg, err := config.LoadTuningConfig(path)
	if err != nil {
		if os.IsNotExist(errors.Unwrap(err)) && path == config.DefaultConfigPath {
			log.Printf("no tuning config at %s; using built-in defaults", path)
			return config.EmptyTuningConfig()
		}
		log.Fatalf("Failed to load tuning config: %v", err)
	}
	return cfg
}

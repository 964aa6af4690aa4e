// Package main is the entry point for the Complot authoritative game server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/avidal-games/complot/internal/catalog"
	"github.com/avidal-games/complot/internal/domain/state"
	"github.com/avidal-games/complot/internal/engine"
	"github.com/avidal-games/complot/internal/journal"
	"github.com/avidal-games/complot/internal/network"
	"github.com/avidal-games/complot/internal/platform/config"
	"github.com/avidal-games/complot/internal/platform/logger"
	"github.com/avidal-games/complot/internal/platform/metrics"
	"github.com/avidal-games/complot/internal/session"
	"github.com/avidal-games/complot/internal/storage"
)

func main() {
	log.Println("[COMPLOT-SERVER] Initializing authoritative game server...")

	appLogger := logger.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		appLogger.Error("Failed to load configuration: " + err.Error())
		os.Exit(1)
	}

	appLogger.Info("Loading content catalog...")
	cat, err := catalog.Load(cfg.CatalogDir)
	if err != nil {
		appLogger.Error("Failed to load catalog: " + err.Error())
		os.Exit(1)
	}
	if err := cat.Validate(); err != nil {
		appLogger.Error("Catalog validation failed: " + err.Error())
		os.Exit(1)
	}

	appLogger.Info("Opening database " + cfg.DBPath + "...")
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to open database: " + err.Error())
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rng := engine.DefaultRNG()
	if cfg.Seed != 0 {
		appLogger.Warn("Running with fixed RNG seed " + strconv.FormatUint(cfg.Seed, 10))
		rng = engine.NewSeededRNG(cfg.Seed)
		_ = store.SaveMeta(ctx, "seed", strconv.FormatUint(cfg.Seed, 10))
	}

	eng := engine.New(cat, appLogger)
	initial, offline := loadOrNewGame(ctx, store, eng, cat, appLogger)

	jrnl := journal.New(store)
	if history, err := store.JournalEntries(ctx, 0); err != nil {
		appLogger.Warn("Persisted journal unreadable, recap starts empty: " + err.Error())
	} else if len(history) > 0 {
		jrnl.Preload(history)
		appLogger.Info("Restored " + strconv.Itoa(len(history)) + " journal entries.")
	}
	sess := session.New(eng, initial, rng, engine.SystemClock(), jrnl, appLogger)

	saver := storage.NewAutosaver(store, cat.Version, cfg.AutosaveDebounce, appLogger)
	sess.OnResult(func(act engine.Action, res engine.Result) {
		if act.Type == engine.ActionNewGame {
			// A fresh playthrough invalidates the old snapshot and journal.
			if err := store.Reset(ctx); err != nil {
				appLogger.Error("Failed to reset persisted playthrough: " + err.Error())
			}
		}
		saver.Notify(res.State)
	})

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(sess, cat, network.Options{
		SendBuffer:        cfg.ClientSendBuffer,
		MinActionInterval: cfg.MinActionInterval,
	}, appLogger)
	sess.OnResult(hub.BroadcastResult)

	go sess.Run(ctx)
	go saver.Run(ctx)
	go hub.Run(ctx)

	scheduler := session.NewScheduler(sess, engine.SystemClock(), cfg.TickInterval, appLogger)
	go scheduler.Run(ctx)

	// Credit the time the server was down as one catch-up tick.
	if offline > 0 {
		appLogger.Info("Crediting " + offline.Round(time.Second).String() + " of offline progress.")
		sess.Dispatch(engine.Action{Type: engine.ActionTick, DeltaTime: offline.Seconds()})
	}

	api := network.NewAPI(sess, cat, jrnl, appLogger)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		network.ServeWS(hub, w, r)
	})
	mux.HandleFunc("/api/state", api.HandleState)
	mux.HandleFunc("/api/recap", api.HandleRecap)
	mux.HandleFunc("/metrics", metrics.Handler())
	mux.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		log.Println("[COMPLOT-SERVER] HTTP API & WS server listening on " + cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[COMPLOT-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[COMPLOT-SERVER] Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	// Stopping the autosaver flushes the final snapshot before cancel tears
	// the rest down.
	saver.Stop()
	scheduler.Stop()
	sess.Stop()
}

// loadOrNewGame restores the persisted playthrough, reconciled against the
// current catalog, or starts fresh. Also returns how long the server was
// offline so the session can credit it as elapsed time.
func loadOrNewGame(ctx context.Context, store *storage.Store, eng *engine.Engine, cat *catalog.Catalog, appLogger *logger.Logger) (*state.GameState, time.Duration) {
	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		appLogger.Warn("Saved snapshot unusable, starting a new game: " + err.Error())
		return eng.NewGame(), 0
	}
	if snap == nil {
		appLogger.Info("No saved game found. Starting a new playthrough.")
		return eng.NewGame(), 0
	}

	st, err := snap.Decode()
	if err != nil {
		appLogger.Warn("Saved snapshot rejected, starting a new game: " + err.Error())
		return eng.NewGame(), 0
	}

	st = storage.Reconcile(st, cat)
	eng.RefreshDerived(st)

	if snap.CatalogVersion != cat.Version {
		appLogger.Info("Snapshot reconciled from catalog " + snap.CatalogVersion + " to " + cat.Version + ".")
	}
	appLogger.Info("Restored playthrough from " + snap.SavedAt.Format(time.RFC3339) + ".")

	offline := time.Since(snap.SavedAt)
	if offline < 0 {
		offline = 0
	}
	return st, offline
}

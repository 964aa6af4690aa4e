// Package metrics provides observability for the game engine server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Transition metrics
	TransitionCount      int64
	TransitionLatencySum int64 // nanoseconds
	TransitionLatencyMax int64
	RejectedActions      int64

	// Tick metrics
	TickCount    int64
	LastTickTime time.Time

	// Achievement metrics
	AchievementsUnlocked int64

	// Persistence metrics
	SnapshotsWritten    int64
	SnapshotWriteLatSum int64
	SnapshotWriteErrors int64
	JournalAppends      int64
	JournalWriteErrors  int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTransition records one state transition and whether it was a no-op rejection.
func (c *Collector) RecordTransition(latency time.Duration, rejected bool) {
	atomic.AddInt64(&c.TransitionCount, 1)
	atomic.AddInt64(&c.TransitionLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TransitionLatencyMax) {
		atomic.StoreInt64(&c.TransitionLatencyMax, int64(latency))
	}

	if rejected {
		atomic.AddInt64(&c.RejectedActions, 1)
	}
}

// RecordTick records a scheduler tick dispatch.
func (c *Collector) RecordTick() {
	atomic.AddInt64(&c.TickCount, 1)

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordAchievements records newly unlocked achievements.
func (c *Collector) RecordAchievements(n int) {
	atomic.AddInt64(&c.AchievementsUnlocked, int64(n))
}

// RecordSnapshotWrite records a snapshot write to the database.
func (c *Collector) RecordSnapshotWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.SnapshotsWritten, 1)
	atomic.AddInt64(&c.SnapshotWriteLatSum, int64(latency))
	if err != nil {
		atomic.AddInt64(&c.SnapshotWriteErrors, 1)
	}
}

// RecordJournalAppend records a journal write to the database.
func (c *Collector) RecordJournalAppend(err error) {
	atomic.AddInt64(&c.JournalAppends, 1)
	if err != nil {
		atomic.AddInt64(&c.JournalWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	transitions := atomic.LoadInt64(&c.TransitionCount)
	snapshots := atomic.LoadInt64(&c.SnapshotsWritten)

	var transitionAvg, snapshotAvg float64
	if transitions > 0 {
		transitionAvg = float64(atomic.LoadInt64(&c.TransitionLatencySum)) / float64(transitions) / 1e6 // ms
	}
	if snapshots > 0 {
		snapshotAvg = float64(atomic.LoadInt64(&c.SnapshotWriteLatSum)) / float64(snapshots) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"transitions": map[string]interface{}{
			"count":          transitions,
			"rejected":       atomic.LoadInt64(&c.RejectedActions),
			"avg_latency_ms": transitionAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TransitionLatencyMax)) / 1e6,
		},

		"ticks": map[string]interface{}{
			"count":     atomic.LoadInt64(&c.TickCount),
			"last_tick": c.LastTickTime.Format(time.RFC3339),
		},

		"achievements": map[string]interface{}{
			"unlocked": atomic.LoadInt64(&c.AchievementsUnlocked),
		},

		"persistence": map[string]interface{}{
			"snapshots_written":    snapshots,
			"snapshot_avg_lat_ms":  snapshotAvg,
			"snapshot_errors":      atomic.LoadInt64(&c.SnapshotWriteErrors),
			"journal_appends":      atomic.LoadInt64(&c.JournalAppends),
			"journal_write_errors": atomic.LoadInt64(&c.JournalWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP complot_transitions_total Total state transitions\n")
		fmt.Fprintf(w, "# TYPE complot_transitions_total counter\n")
		fmt.Fprintf(w, "complot_transitions_total %d\n\n", atomic.LoadInt64(&c.TransitionCount))

		fmt.Fprintf(w, "# HELP complot_rejected_actions_total Actions rejected as silent no-ops\n")
		fmt.Fprintf(w, "# TYPE complot_rejected_actions_total counter\n")
		fmt.Fprintf(w, "complot_rejected_actions_total %d\n\n", atomic.LoadInt64(&c.RejectedActions))

		fmt.Fprintf(w, "# HELP complot_transition_latency_max_ms Maximum transition latency\n")
		fmt.Fprintf(w, "# TYPE complot_transition_latency_max_ms gauge\n")
		fmt.Fprintf(w, "complot_transition_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TransitionLatencyMax))/1e6)

		fmt.Fprintf(w, "# HELP complot_ticks_total Total scheduler ticks\n")
		fmt.Fprintf(w, "# TYPE complot_ticks_total counter\n")
		fmt.Fprintf(w, "complot_ticks_total %d\n\n", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP complot_achievements_unlocked_total Total achievements unlocked\n")
		fmt.Fprintf(w, "# TYPE complot_achievements_unlocked_total counter\n")
		fmt.Fprintf(w, "complot_achievements_unlocked_total %d\n\n", atomic.LoadInt64(&c.AchievementsUnlocked))

		fmt.Fprintf(w, "# HELP complot_snapshots_written_total Total snapshots written\n")
		fmt.Fprintf(w, "# TYPE complot_snapshots_written_total counter\n")
		fmt.Fprintf(w, "complot_snapshots_written_total %d\n\n", atomic.LoadInt64(&c.SnapshotsWritten))

		fmt.Fprintf(w, "# HELP complot_snapshot_write_errors_total Snapshot writes that failed\n")
		fmt.Fprintf(w, "# TYPE complot_snapshot_write_errors_total counter\n")
		fmt.Fprintf(w, "complot_snapshot_write_errors_total %d\n\n", atomic.LoadInt64(&c.SnapshotWriteErrors))

		fmt.Fprintf(w, "# HELP complot_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE complot_ws_connections gauge\n")
		fmt.Fprintf(w, "complot_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP complot_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE complot_ws_messages_total counter\n")
		fmt.Fprintf(w, "complot_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "complot_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}

package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/avidal-games/complot/internal/catalog"
	"github.com/avidal-games/complot/internal/journal"
	"github.com/avidal-games/complot/internal/platform/logger"
)

// API serves the read-only HTTP endpoints next to the WebSocket.
type API struct {
	session Dispatcher
	catalog *catalog.Catalog
	journal *journal.Journal
	logger  *logger.Logger
}

// NewAPI bundles the REST handlers.
func NewAPI(session Dispatcher, cat *catalog.Catalog, jrnl *journal.Journal, log *logger.Logger) *API {
	return &API{session: session, catalog: cat, journal: jrnl, logger: log}
}

// HandleState serves the current state projection as JSON.
func (a *API) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, BuildStateView(a.session.State(), a.catalog))
}

// RecapEntry is one journal line in the recap.
type RecapEntry struct {
	Seq       int       `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	TargetID  string    `json:"target_id,omitempty"`
	Unlocked  []string  `json:"unlocked,omitempty"`
}

// Recap summarizes the playthrough so far.
type Recap struct {
	State   *StateView   `json:"state"`
	Actions int          `json:"actions"`
	Recent  []RecapEntry `json:"recent"`
}

// HandleRecap serves a playthrough summary: the state projection plus the
// most recent journal entries (?limit=N, default 25).
func (a *API) HandleRecap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 25
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			http.Error(w, "limit must be 1..500", http.StatusBadRequest)
			return
		}
		limit = n
	}

	recap := Recap{
		State:   BuildStateView(a.session.State(), a.catalog),
		Actions: a.journal.Len(),
	}
	for _, e := range a.journal.Tail(limit) {
		recap.Recent = append(recap.Recent, RecapEntry{
			Seq:       e.Seq,
			Timestamp: e.Timestamp,
			Action:    string(e.Action.Type),
			TargetID:  e.Action.TargetID,
			Unlocked:  e.Unlocked,
		})
	}
	writeJSON(w, recap)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	json.NewEncoder(w).Encode(v)
}

package storage

import (
	"testing"
	"time"

	"github.com/avidal-games/complot/internal/catalog"
	"github.com/avidal-games/complot/internal/domain/ledger"
	"github.com/avidal-games/complot/internal/domain/state"
)

func TestSnapshotRoundTripKeepsProgress(t *testing.T) {
	// Setup: a mid-game state
	cat := catalog.Default()
	st := newGameState(t, cat)
	st.Ledger = st.Ledger.Credit(ledger.ManipulationPoints, 123.5)
	st.Upgrades["persuasive_rhetoric"] = state.UpgradeStatus{ID: "persuasive_rhetoric", Purchased: true}
	st.EthicalScore = 37
	st.Counters[state.CounterManipulate] = 42
	st.Flags["lore_link_clicked"] = true
	savedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	// Act: encode, serialize, parse, decode
	data, err := Encode(st, cat.Version, savedAt).Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	snap, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	got, err := snap.Decode()
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	// Assert
	if bal := got.Ledger.Balance(ledger.ManipulationPoints); bal != 123.5 {
		t.Errorf("Expected balance 123.5, got %v", bal)
	}
	if !got.Upgrades["persuasive_rhetoric"].Purchased {
		t.Error("Expected purchased flag to survive the round trip")
	}
	if got.EthicalScore != 37 {
		t.Errorf("Expected ethical score 37, got %d", got.EthicalScore)
	}
	if got.Counter(state.CounterManipulate) != 42 {
		t.Errorf("Expected counter 42, got %d", got.Counter(state.CounterManipulate))
	}
	if !got.Flag("lore_link_clicked") {
		t.Error("Expected flag to survive the round trip")
	}
	if snap.CatalogVersion != cat.Version || snap.SavedAt != savedAt {
		t.Errorf("Expected snapshot metadata preserved, got %+v", snap)
	}
}

func TestCorruptSnapshotIsAnError(t *testing.T) {
	if _, err := UnmarshalSnapshot([]byte("{not json")); err == nil {
		t.Error("Expected corrupt payload to fail parsing")
	}
}

func TestDecodeSanitizesTamperedValues(t *testing.T) {
	// Setup: hand-edited save with out-of-range values
	snap := &Snapshot{
		SchemaVersion: state.SchemaVersion,
		Balances:      map[ledger.Resource]float64{ledger.ManipulationPoints: -500},
		EthicalScore:  900,
		Mode:          "god_mode",
	}

	// Act
	st, err := snap.Decode()
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	// Assert
	if bal := st.Ledger.Balance(ledger.ManipulationPoints); bal != 0 {
		t.Errorf("Expected negative balance clamped to 0, got %v", bal)
	}
	if st.EthicalScore != 100 {
		t.Errorf("Expected score clamped to 100, got %d", st.EthicalScore)
	}
	if st.Mode != state.ModeManipulation {
		t.Errorf("Expected unknown mode reset, got %s", st.Mode)
	}
}

func TestDecodeRefusesNewerSchema(t *testing.T) {
	snap := &Snapshot{SchemaVersion: state.SchemaVersion + 1}

	if _, err := snap.Decode(); err == nil {
		t.Error("Expected snapshot from a newer schema to be refused")
	}
}

package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avidal-games/complot/internal/domain/ledger"
)

func TestDefaultCatalogValidates(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("builtin catalog failed validation: %v", err)
	}
	if c.Era(c.StartingEraID) == nil {
		t.Fatalf("starting era %q missing from catalog", c.StartingEraID)
	}
	if c.Era(c.StartingEraID).UnlockCost != 0 {
		t.Errorf("starting era must be free to unlock")
	}
}

func TestLoadWithoutDirReturnsBuiltins(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Version != "builtin-1" {
		t.Errorf("expected builtin catalog, got version %q", c.Version)
	}
}

func TestOverlayRetunesExistingTheory(t *testing.T) {
	dir := t.TempDir()
	overlay := `
version: tuned-1
theories:
  - id: flat_earth
    cost: 9999
    success_rate: 0.25
`
	if err := os.WriteFile(filepath.Join(dir, "tuning.yaml"), []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Version != "tuned-1" {
		t.Errorf("version not overridden: %q", c.Version)
	}

	th := c.Theory("flat_earth")
	if th == nil {
		t.Fatalf("theory disappeared after overlay")
	}
	if th.Cost != 9999 || th.SuccessRate != 0.25 {
		t.Errorf("overlay not applied: cost=%v rate=%v", th.Cost, th.SuccessRate)
	}
	// Untouched fields keep builtin values.
	if th.EraID != "digital" || th.EthicalImpact != -10 {
		t.Errorf("overlay clobbered unrelated fields: era=%q impact=%d", th.EraID, th.EthicalImpact)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("tuned catalog failed validation: %v", err)
	}
}

func TestOverlayAppendsNewUpgrade(t *testing.T) {
	dir := t.TempDir()
	overlay := `
upgrades:
  - id: carrier_pigeons
    era: antiquity
    name: Carrier Pigeons
    cost:
      manipulation_points: 30
    effect:
      kind: passive
      resource: networks
      rate: 0.2
`
	if err := os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	u := c.Upgrade("carrier_pigeons")
	if u == nil {
		t.Fatalf("appended upgrade not found")
	}
	if u.Effect.Kind != EffectPassive || u.Effect.Resource != ledger.Networks {
		t.Errorf("upgrade effect not parsed: %+v", u.Effect)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("catalog with appended upgrade failed validation: %v", err)
	}
}

func TestValidateSuggestsNearestEra(t *testing.T) {
	c := Default()
	c.Upgrades = append(c.Upgrades, Upgrade{
		ID: "typo_upgrade", EraID: "digtal", Name: "Typo",
		Cost:   ledger.Cost{ledger.Influence: 1},
		Effect: UpgradeEffect{Kind: EffectFeature, Feature: "x"},
	})
	c.buildIndex()

	err := c.Validate()
	if err == nil {
		t.Fatalf("expected validation error for unknown era")
	}
	if !strings.Contains(err.Error(), `did you mean "digital"`) {
		t.Errorf("expected nearest-era hint, got: %v", err)
	}
}

func TestValidateRejectsOutOfRangeSuccessRate(t *testing.T) {
	c := Default()
	c.Theories[0].SuccessRate = 1.5
	if err := c.Validate(); err == nil {
		t.Errorf("expected validation error for success rate above 1")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/wlproxy/proxystate"
)

func TestLoadMissingFileReturnsZeroValueConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaselineName != "" || len(cfg.Rules) != 0 {
		t.Errorf("Load of a missing file should return the zero Config, got %+v", cfg)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
baseline: stable
socket: wayland-9
trace_wire: true
log_level: debug
command: ["foot"]
rules:
  wl_output:
    kind: ignore
  zwlr_layer_shell_v1:
    kind: rewrite
    rewrite_to: zwlr_layer_shell_v1_shim
synthetic:
  - name: 1000
    interface: zwlr_layer_shell_v1
    version: 4
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaselineName != "stable" {
		t.Errorf("BaselineName = %q, want stable", cfg.BaselineName)
	}
	if cfg.Socket != "wayland-9" {
		t.Errorf("Socket = %q, want wayland-9", cfg.Socket)
	}
	if !cfg.TraceWire {
		t.Error("TraceWire = false, want true")
	}
	if len(cfg.Command) != 1 || cfg.Command[0] != "foot" {
		t.Errorf("Command = %v, want [foot]", cfg.Command)
	}
	if len(cfg.Rules) != 2 {
		t.Fatalf("Rules has %d entries, want 2", len(cfg.Rules))
	}
	if cfg.Rules["wl_output"].Kind != "ignore" {
		t.Errorf("wl_output rule kind = %q, want ignore", cfg.Rules["wl_output"].Kind)
	}
	if len(cfg.Synthetic) != 1 || cfg.Synthetic[0].Interface != "zwlr_layer_shell_v1" {
		t.Errorf("Synthetic = %+v", cfg.Synthetic)
	}
}

func TestBaselineDefaultsToV1Unstable(t *testing.T) {
	cfg := &Config{}
	got, err := cfg.Baseline()
	if err != nil {
		t.Fatalf("Baseline: %v", err)
	}
	if got.Name() != proxystate.BaselineV1Unstable().Name() {
		t.Errorf("Baseline().Name() = %q, want the v1-unstable baseline", got.Name())
	}
}

func TestBaselineRejectsUnknownName(t *testing.T) {
	cfg := &Config{BaselineName: "nightly"}
	if _, err := cfg.Baseline(); err == nil {
		t.Error("Baseline() with an unknown name should error")
	}
}

func TestMapperRejectsRewriteRuleWithoutTarget(t *testing.T) {
	cfg := &Config{Rules: map[string]Rule{
		"wl_output": {Kind: "rewrite"},
	}}
	baseline, _ := cfg.Baseline()
	if _, err := cfg.Mapper(baseline); err == nil {
		t.Error("a rewrite rule with no rewrite_to should be rejected")
	}
}

func TestMapperBuildsRulesAndSynthetics(t *testing.T) {
	cfg := &Config{
		Rules: map[string]Rule{
			"wl_output": {Kind: "ignore"},
		},
		Synthetic: []SyntheticGlobal{
			{Name: 1000, Interface: "zwlr_layer_shell_v1", Version: 4},
		},
	}
	baseline, _ := cfg.Baseline()
	mapper, err := cfg.Mapper(baseline)
	if err != nil {
		t.Fatalf("Mapper: %v", err)
	}
	decision, synthetics := mapper.HandleGlobal(1, "wl_output", 4)
	if decision.Forward {
		t.Error("wl_output should be ignored per the configured rule")
	}
	if len(synthetics) != 1 || synthetics[0].Name != 1000 {
		t.Errorf("first HandleGlobal call should return the configured synthetic globals, got %+v", synthetics)
	}
}

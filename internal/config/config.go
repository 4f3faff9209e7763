// Package config loads the proxy's on-disk configuration: which
// Baseline to clamp globals against, the per-interface forward/ignore/
// rewrite rules and synthetic globals a Mapper is built from, and the
// child command this process spawns once its listening socket is up.
//
// Shape and load path are grounded on thiagojdb-adoctl's own
// pkg/config/config.go (os.UserConfigDir-rooted YAML file, a Load
// that reads-and-unmarshals in one step), trimmed down to the fields
// this proxy actually needs.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/wlproxy/internal/errlog"
	"github.com/gogpu/wlproxy/proxystate"
)

// Rule is config's on-disk mirror of proxystate.Rule: a RuleKind
// spelled as a YAML-friendly string instead of an int constant.
type Rule struct {
	Kind      string `yaml:"kind"` // "forward" (default), "ignore", or "rewrite"
	RewriteTo string `yaml:"rewrite_to,omitempty"`
}

// SyntheticGlobal mirrors proxystate.SyntheticGlobal field for field;
// it exists separately only so the YAML tags live outside proxystate.
type SyntheticGlobal struct {
	Name      uint32 `yaml:"name"`
	Interface string `yaml:"interface"`
	Version   uint32 `yaml:"version"`
}

// Config is the complete on-disk shape of wlproxyd's configuration
// file.
type Config struct {
	// BaselineName selects the advertised-version ceiling:
	// "v1-unstable" (default) or "stable".
	BaselineName string `yaml:"baseline,omitempty"`
	// Rules maps an upstream interface name to how its globals are
	// treated; an interface absent here is forwarded unchanged.
	Rules map[string]Rule `yaml:"rules,omitempty"`
	// Synthetic lists globals the Mapper presents to every downstream
	// client even though the upstream compositor never advertised
	// them.
	Synthetic []SyntheticGlobal `yaml:"synthetic,omitempty"`
	// Socket is the display name (e.g. "wayland-1") this proxy listens
	// under; empty means the run command uses "wayland-1".
	Socket string `yaml:"socket,omitempty"`
	// TraceWire turns on the teacher-style wire tracer over every
	// connection.
	TraceWire bool `yaml:"trace_wire,omitempty"`
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level,omitempty"`
	// Command is the child process to spawn once the proxy's own
	// socket is listening, argv[0] first.
	Command []string `yaml:"command,omitempty"`
}

// GetConfigPath returns $XDG_CONFIG_HOME (or its OS-specific
// equivalent via os.UserConfigDir)/wlproxy/config.yaml.
func GetConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "wlproxy", "config.yaml"), nil
}

// Load reads and parses the config file at path. A missing file is
// not an error: it returns the zero Config, which Baseline() and
// Mapper() both treat as "use every default".
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, errlog.WrapWithCode(errlog.ExitCodeConfig, "read config file", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errlog.WrapWithCode(errlog.ExitCodeConfig, "parse config file", err)
	}
	return &cfg, nil
}

// Baseline resolves the configured Baseline name to the concrete
// proxystate.Baseline, defaulting to BaselineV1Unstable.
func (c *Config) Baseline() (proxystate.Baseline, error) {
	switch c.BaselineName {
	case "", "v1-unstable":
		return proxystate.BaselineV1Unstable(), nil
	case "stable":
		return proxystate.BaselineStable(), nil
	default:
		return proxystate.Baseline{}, fmt.Errorf("config: unknown baseline %q", c.BaselineName)
	}
}

// Mapper builds a proxystate.Mapper from the configured rules and
// synthetic globals, clamped against the given Baseline.
func (c *Config) Mapper(baseline proxystate.Baseline) (*proxystate.Mapper, error) {
	rules := make(map[string]proxystate.Rule, len(c.Rules))
	for iface, r := range c.Rules {
		kind, err := parseRuleKind(r.Kind)
		if err != nil {
			return nil, fmt.Errorf("config: rule for %q: %w", iface, err)
		}
		if kind == proxystate.RuleRewrite && r.RewriteTo == "" {
			return nil, fmt.Errorf("config: rule for %q: kind rewrite requires rewrite_to", iface)
		}
		rules[iface] = proxystate.Rule{Kind: kind, RewriteTo: r.RewriteTo}
	}

	synthetic := make([]proxystate.SyntheticGlobal, len(c.Synthetic))
	for i, s := range c.Synthetic {
		synthetic[i] = proxystate.SyntheticGlobal{Name: s.Name, Interface: s.Interface, Version: s.Version}
	}

	return proxystate.NewMapper(baseline, rules, synthetic), nil
}

func parseRuleKind(kind string) (proxystate.RuleKind, error) {
	switch kind {
	case "", "forward":
		return proxystate.RuleForward, nil
	case "ignore":
		return proxystate.RuleIgnore, nil
	case "rewrite":
		return proxystate.RuleRewrite, nil
	default:
		return 0, fmt.Errorf("unknown rule kind %q", kind)
	}
}

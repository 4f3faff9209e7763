package proxystate

import "github.com/gogpu/wlproxy/proxyobj"

// RuleKind is the action a Mapper rule takes for one upstream global.
type RuleKind int

const (
	// RuleForward passes the global through unchanged (besides
	// Baseline version clamping).
	RuleForward RuleKind = iota
	// RuleIgnore hides the global from every downstream client.
	RuleIgnore
	// RuleRewrite passes the global through under a different
	// interface name than the upstream advertised.
	RuleRewrite
)

// Rule configures how the Mapper treats globals of one upstream
// interface name.
type Rule struct {
	Kind          RuleKind
	RewriteTo     string // only consulted when Kind == RuleRewrite
}

// SyntheticGlobal is a global the Mapper invents locally: the upstream
// compositor never advertised it, but the Mapper presents it to every
// downstream client as though it had, and binds against it are
// resolved locally instead of being forwarded.
type SyntheticGlobal struct {
	Name      uint32
	Interface string
	Version   uint32
}

// upstreamGlobal is the Mapper's record of one name the upstream
// compositor currently advertises.
type upstreamGlobal struct {
	name      uint32
	iface     string
	version   uint32
}

// Mapper is the registry filter of spec.md §4.5: it decides, per
// upstream wl_registry.global event, whether to forward, ignore, or
// rewrite it, and it injects a fixed set of synthetic globals the
// upstream never advertises. It has no direct teacher analogue (the
// teacher is a Wayland client, never a registry-filtering proxy); the
// shape here generalizes gogpu-gogpu's registry.go event handling into
// a filter-then-forward pipeline.
type Mapper struct {
	baseline   Baseline
	rules      map[string]Rule
	synthetic  []SyntheticGlobal

	upstreamByName map[uint32]upstreamGlobal
	initialized    bool
}

// NewMapper builds a Mapper against the given Baseline, rule set (by
// upstream interface name), and synthetic global list.
func NewMapper(baseline Baseline, rules map[string]Rule, synthetic []SyntheticGlobal) *Mapper {
	return &Mapper{
		baseline:       baseline,
		rules:          rules,
		synthetic:      synthetic,
		upstreamByName: make(map[uint32]upstreamGlobal),
	}
}

// GlobalDecision is what the Mapper decided to do with one upstream
// wl_registry.global event.
type GlobalDecision struct {
	// Forward is true iff a wl_registry.global event should be sent
	// downstream at all.
	Forward bool
	// Interface and Version are what to advertise downstream — after
	// rewrite and Baseline clamping — when Forward is true.
	Interface string
	Version   uint32
}

// HandleGlobal processes one upstream wl_registry.global(name,
// interface, version) event, recording it for later Bind/Remove
// lookups and returning the downstream-facing decision.
//
// On the very first call, HandleGlobal also returns the synthetic
// globals to emit before this real one, satisfying spec.md §4.5's
// ordering guarantee that synthetics appear before the downstream ever
// sees a coherent (i.e. any) real global.
func (m *Mapper) HandleGlobal(name uint32, iface string, version uint32) (decision GlobalDecision, synthetics []SyntheticGlobal) {
	m.upstreamByName[name] = upstreamGlobal{name: name, iface: iface, version: version}

	if !m.initialized {
		m.initialized = true
		synthetics = m.synthetic
	}

	rule, ok := m.rules[iface]
	if !ok {
		rule = Rule{Kind: RuleForward}
	}

	switch rule.Kind {
	case RuleIgnore:
		return GlobalDecision{Forward: false}, synthetics
	case RuleRewrite:
		iface = rule.RewriteTo
	}

	ifaceTag, known := proxyobj.InterfaceFromName(iface)
	if !known {
		return GlobalDecision{Forward: false}, synthetics
	}
	clamped := m.baseline.Clamp(ifaceTag, version)
	if clamped == 0 {
		return GlobalDecision{Forward: false}, synthetics
	}
	return GlobalDecision{Forward: true, Interface: iface, Version: clamped}, synthetics
}

// HandleGlobalRemove processes an upstream wl_registry.global_remove
// for name. It reports whether the removal should be forwarded
// downstream (false for a name this Mapper never exposed, or — per
// the decided Open Question — for a synthetic name, which is dropped
// with a warning rather than forwarded or silently ignored).
func (m *Mapper) HandleGlobalRemove(name uint32) (forward bool, isSyntheticMisuse bool) {
	if m.isSynthetic(name) {
		return false, true
	}
	if _, ok := m.upstreamByName[name]; !ok {
		return false, false
	}
	delete(m.upstreamByName, name)
	return true, false
}

func (m *Mapper) isSynthetic(name uint32) bool {
	for _, s := range m.synthetic {
		if s.Name == name {
			return true
		}
	}
	return false
}

// ResolveBind reports how a downstream wl_registry.bind(name, ...)
// should be handled: whether it targets a synthetic global (handled
// locally, nothing forwarded) and, if not, the upstream name and
// interface to forward the bind under.
type BindResolution struct {
	Synthetic       bool
	SyntheticGlobal SyntheticGlobal

	UpstreamName uint32
	Interface    string
}

// ResolveBind looks up how to satisfy a downstream bind against name.
// ok is false if name is not currently a known global at all, or names
// a global whose interface the Baseline caps at 0 (client error: stale,
// invalid, or filtered registry name).
func (m *Mapper) ResolveBind(name uint32) (res BindResolution, ok bool) {
	for _, s := range m.synthetic {
		if s.Name == name {
			return BindResolution{Synthetic: true, SyntheticGlobal: s}, true
		}
	}
	g, known := m.upstreamByName[name]
	if !known {
		return BindResolution{}, false
	}
	iface := g.iface
	if rule, has := m.rules[iface]; has && rule.Kind == RuleRewrite {
		iface = rule.RewriteTo
	}
	if tag, known := proxyobj.InterfaceFromName(iface); known && m.baseline.Cap(tag) == 0 {
		return BindResolution{}, false
	}
	return BindResolution{UpstreamName: name, Interface: iface}, true
}

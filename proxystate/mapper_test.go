package proxystate

import "testing"

// TestMapperS2RegistryFilter reproduces spec.md's literal scenario S2:
// the upstream advertises wl_compositor@6 and
// zxdg_decoration_manager_v1@1; the Mapper is configured to ignore the
// decoration manager upstream and synthesize it locally under name
// 0xDEAD0001.
func TestMapperS2RegistryFilter(t *testing.T) {
	baseline := BaselineV1Unstable()
	rules := map[string]Rule{
		"zxdg_decoration_manager_v1": {Kind: RuleIgnore},
	}
	synthetic := []SyntheticGlobal{
		{Name: 0xDEAD0001, Interface: "zxdg_decoration_manager_v1", Version: 1},
	}
	m := NewMapper(baseline, rules, synthetic)

	decision, synthetics := m.HandleGlobal(1, "wl_compositor", 6)
	if !decision.Forward || decision.Interface != "wl_compositor" || decision.Version != 6 {
		t.Fatalf("HandleGlobal(wl_compositor) = %+v, want forwarded @6", decision)
	}
	if len(synthetics) != 1 || synthetics[0].Name != 0xDEAD0001 {
		t.Fatalf("first HandleGlobal call returned synthetics = %+v, want the decoration manager", synthetics)
	}

	decision2, synthetics2 := m.HandleGlobal(2, "zxdg_decoration_manager_v1", 1)
	if decision2.Forward {
		t.Fatalf("HandleGlobal(zxdg_decoration_manager_v1) forwarded, want ignored")
	}
	if len(synthetics2) != 0 {
		t.Fatalf("second HandleGlobal call re-emitted synthetics: %+v", synthetics2)
	}

	bindCompositor, ok := m.ResolveBind(1)
	if !ok || bindCompositor.Synthetic || bindCompositor.Interface != "wl_compositor" {
		t.Fatalf("ResolveBind(1) = %+v, %v; want forwarded wl_compositor bind", bindCompositor, ok)
	}

	bindSynthetic, ok := m.ResolveBind(0xDEAD0001)
	if !ok || !bindSynthetic.Synthetic || bindSynthetic.SyntheticGlobal.Interface != "zxdg_decoration_manager_v1" {
		t.Fatalf("ResolveBind(0xDEAD0001) = %+v, %v; want local synthetic bind", bindSynthetic, ok)
	}
}

func TestMapperRewriteRule(t *testing.T) {
	baseline := BaselineV1Unstable()
	rules := map[string]Rule{
		"wl_shm": {Kind: RuleRewrite, RewriteTo: "wl_shm"},
	}
	m := NewMapper(baseline, rules, nil)
	decision, _ := m.HandleGlobal(3, "wl_shm", 1)
	if !decision.Forward || decision.Interface != "wl_shm" {
		t.Fatalf("HandleGlobal with rewrite rule = %+v", decision)
	}
}

func TestMapperGlobalRemoveForwardsKnownName(t *testing.T) {
	m := NewMapper(BaselineV1Unstable(), nil, nil)
	m.HandleGlobal(1, "wl_compositor", 6)
	forward, synthMisuse := m.HandleGlobalRemove(1)
	if !forward || synthMisuse {
		t.Fatalf("HandleGlobalRemove(known) = forward=%v synthMisuse=%v, want true,false", forward, synthMisuse)
	}
}

func TestMapperGlobalRemoveOnSyntheticIsDroppedWithWarning(t *testing.T) {
	synthetic := []SyntheticGlobal{{Name: 0xDEAD0001, Interface: "zxdg_decoration_manager_v1", Version: 1}}
	m := NewMapper(BaselineV1Unstable(), nil, synthetic)
	forward, synthMisuse := m.HandleGlobalRemove(0xDEAD0001)
	if forward {
		t.Error("HandleGlobalRemove on a synthetic name should never forward")
	}
	if !synthMisuse {
		t.Error("HandleGlobalRemove on a synthetic name should report isSyntheticMisuse so the caller can warn")
	}
}

func TestMapperGlobalRemoveUnknownNameIsNoop(t *testing.T) {
	m := NewMapper(BaselineV1Unstable(), nil, nil)
	forward, synthMisuse := m.HandleGlobalRemove(99)
	if forward || synthMisuse {
		t.Errorf("HandleGlobalRemove(unknown) = forward=%v synthMisuse=%v, want false,false", forward, synthMisuse)
	}
}

func TestMapperHandleGlobalDropsAtZeroClamp(t *testing.T) {
	// BaselineStable leaves ext_data_control_manager_v1 at cap 0.
	m := NewMapper(BaselineStable(), nil, nil)
	decision, _ := m.HandleGlobal(1, "ext_data_control_manager_v1", 1)
	if decision.Forward {
		t.Error("HandleGlobal forwarded a global with a zero Baseline cap")
	}
}

func TestMapperResolveBindUnknownName(t *testing.T) {
	m := NewMapper(BaselineV1Unstable(), nil, nil)
	if _, ok := m.ResolveBind(12345); ok {
		t.Error("ResolveBind succeeded for a name that was never advertised")
	}
}

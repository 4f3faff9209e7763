package proxystate

import (
	"testing"

	"github.com/gogpu/wlproxy/proxyobj"
)

func TestBaselineV1UnstableKnowsEveryInterface(t *testing.T) {
	b := BaselineV1Unstable()
	for _, iface := range []proxyobj.Interface{
		proxyobj.InterfaceWlCompositor,
		proxyobj.InterfaceZwlrLayerShellV1,
		proxyobj.InterfaceExtDataControlManagerV1,
	} {
		if b.Cap(iface) == 0 {
			t.Errorf("BaselineV1Unstable has no cap for %s", iface.Name())
		}
	}
}

func TestBaselineStableOmitsDataControl(t *testing.T) {
	b := BaselineStable()
	if got := b.Cap(proxyobj.InterfaceExtDataControlManagerV1); got != 0 {
		t.Errorf("BaselineStable cap for ext_data_control_manager_v1 = %d, want 0", got)
	}
}

// TestBaselineClampS4 reproduces spec.md's literal scenario S4: a
// Baseline capping zwlr_layer_shell_v1 at 5 while the upstream
// advertises version 6 must clamp to 5.
func TestBaselineClampS4(t *testing.T) {
	b := BaselineV1Unstable()
	if got := b.Clamp(proxyobj.InterfaceZwlrLayerShellV1, 6); got != 5 {
		t.Errorf("Clamp(zwlr_layer_shell_v1, 6) = %d, want 5", got)
	}
}

func TestBaselineClampBelowUpstream(t *testing.T) {
	b := BaselineV1Unstable()
	if got := b.Clamp(proxyobj.InterfaceWlCompositor, 2); got != 2 {
		t.Errorf("Clamp(wl_compositor, 2) = %d, want 2 (upstream offers less than cap)", got)
	}
}

func TestBaselineClampUnknownInterface(t *testing.T) {
	b := BaselineStable()
	if got := b.Clamp(proxyobj.InterfaceExtDataControlSourceV1, 1); got != 0 {
		t.Errorf("Clamp on a zero-cap interface = %d, want 0", got)
	}
}

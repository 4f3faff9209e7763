package proxystate

import "github.com/gogpu/wlproxy/proxyobj"

// Baseline is an immutable interface → maximum-advertised-version
// table, selected once at proxy startup (spec.md §4.7). A cap of 0
// means the interface is treated as entirely unknown to this proxy
// instance: globals for it are filtered out by the Mapper, and a bind
// against it is an error.
type Baseline struct {
	name string
	caps [proxyobj.InterfaceCount]uint32
}

// Name returns the flavor name, e.g. "v1-unstable" or "stable", for
// startup logging.
func (b Baseline) Name() string { return b.name }

// Cap returns the maximum version this Baseline permits for iface, or
// 0 if the interface is not recognized at all.
func (b Baseline) Cap(iface proxyobj.Interface) uint32 {
	if iface < 0 || int(iface) >= len(b.caps) {
		return 0
	}
	return b.caps[iface]
}

// Clamp returns the version this Baseline permits advertising for a
// global of the given interface and upstream-advertised version: the
// minimum of the Baseline cap and whatever the upstream offered. A
// return of 0 means the global must not be advertised downstream at
// all.
func (b Baseline) Clamp(iface proxyobj.Interface, upstreamVersion uint32) uint32 {
	max := b.Cap(iface)
	if max == 0 {
		return 0
	}
	if upstreamVersion < max {
		return upstreamVersion
	}
	return max
}

func newBaseline(name string, caps map[proxyobj.Interface]uint32) Baseline {
	b := Baseline{name: name}
	for iface, v := range caps {
		if int(iface) < len(b.caps) {
			b.caps[iface] = v
		}
	}
	return b
}

// BaselineV1Unstable tracks the newest version this proxy's generated
// code understands for every interface — appropriate for applications
// that need bleeding-edge protocol features and accept that a new
// compositor release may require a proxy rebuild.
func BaselineV1Unstable() Baseline {
	return newBaseline("v1-unstable", map[proxyobj.Interface]uint32{
		proxyobj.InterfaceWlDisplay:                1,
		proxyobj.InterfaceWlRegistry:                1,
		proxyobj.InterfaceWlCallback:                1,
		proxyobj.InterfaceWlCompositor:              6,
		proxyobj.InterfaceWlSurface:                 6,
		proxyobj.InterfaceWlOutput:                  4,
		proxyobj.InterfaceWlSeat:                    9,
		proxyobj.InterfaceWlShm:                     2,
		proxyobj.InterfaceWlShmPool:                 2,
		proxyobj.InterfaceWlBuffer:                   1,
		proxyobj.InterfaceXdgWmBase:                  6,
		proxyobj.InterfaceXdgSurface:                 6,
		proxyobj.InterfaceXdgToplevel:                6,
		proxyobj.InterfaceZxdgDecorationManagerV1:    1,
		proxyobj.InterfaceZxdgToplevelDecorationV1:   1,
		proxyobj.InterfaceZwlrLayerShellV1:           5,
		proxyobj.InterfaceZwlrLayerSurfaceV1:         5,
		proxyobj.InterfaceExtDataControlManagerV1:    1,
		proxyobj.InterfaceExtDataControlDeviceV1:     1,
		proxyobj.InterfaceExtDataControlSourceV1:     1,
	})
}

// BaselineStable pins every interface to a long-stable version,
// trading newer features for compositors that are slow to update —
// the flavor a distro package would default to.
func BaselineStable() Baseline {
	return newBaseline("stable", map[proxyobj.Interface]uint32{
		proxyobj.InterfaceWlDisplay:                1,
		proxyobj.InterfaceWlRegistry:                1,
		proxyobj.InterfaceWlCallback:                1,
		proxyobj.InterfaceWlCompositor:              4,
		proxyobj.InterfaceWlSurface:                 4,
		proxyobj.InterfaceWlOutput:                  3,
		proxyobj.InterfaceWlSeat:                    7,
		proxyobj.InterfaceWlShm:                     1,
		proxyobj.InterfaceWlShmPool:                 1,
		proxyobj.InterfaceWlBuffer:                   1,
		proxyobj.InterfaceXdgWmBase:                  3,
		proxyobj.InterfaceXdgSurface:                 3,
		proxyobj.InterfaceXdgToplevel:                3,
		proxyobj.InterfaceZxdgDecorationManagerV1:    1,
		proxyobj.InterfaceZxdgToplevelDecorationV1:   1,
		proxyobj.InterfaceZwlrLayerShellV1:           4,
		proxyobj.InterfaceZwlrLayerSurfaceV1:         4,
		// ext_data_control_* left at 0: the stable flavor does not
		// expose clipboard-manager style globals by default.
	})
}

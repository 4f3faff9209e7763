package proxyobj

// Interface tags every known Wayland interface the proxy can create an
// Object for. A real protocol generator would emit one of these per
// interface in the XML database (spec.md §9's "generated code bulk"
// note); this proxy hand-implements the subset in protocols.
type Interface int

const (
	InterfaceUnknown Interface = iota
	InterfaceWlDisplay
	InterfaceWlRegistry
	InterfaceWlCallback
	InterfaceWlCompositor
	InterfaceWlSurface
	InterfaceWlRegion
	InterfaceWlOutput
	InterfaceWlSeat
	InterfaceWlShm
	InterfaceWlShmPool
	InterfaceWlBuffer
	InterfaceXdgWmBase
	InterfaceXdgSurface
	InterfaceXdgToplevel
	InterfaceZxdgDecorationManagerV1
	InterfaceZxdgToplevelDecorationV1
	InterfaceZwlrLayerShellV1
	InterfaceZwlrLayerSurfaceV1
	InterfaceExtDataControlManagerV1
	InterfaceExtDataControlDeviceV1
	InterfaceExtDataControlSourceV1

	interfaceCount
)

// InterfaceCount is the number of Interface values this proxy knows
// about, including InterfaceUnknown — for callers (proxystate.Baseline)
// that need to size a per-interface array without reaching into this
// package's unexported sentinel.
const InterfaceCount = int(interfaceCount)

var interfaceNames = [interfaceCount]string{
	InterfaceUnknown:                  "",
	InterfaceWlDisplay:                "wl_display",
	InterfaceWlRegistry:               "wl_registry",
	InterfaceWlCallback:               "wl_callback",
	InterfaceWlCompositor:             "wl_compositor",
	InterfaceWlSurface:                "wl_surface",
	InterfaceWlRegion:                 "wl_region",
	InterfaceWlOutput:                 "wl_output",
	InterfaceWlSeat:                   "wl_seat",
	InterfaceWlShm:                    "wl_shm",
	InterfaceWlShmPool:                "wl_shm_pool",
	InterfaceWlBuffer:                 "wl_buffer",
	InterfaceXdgWmBase:                "xdg_wm_base",
	InterfaceXdgSurface:               "xdg_surface",
	InterfaceXdgToplevel:              "xdg_toplevel",
	InterfaceZxdgDecorationManagerV1:  "zxdg_decoration_manager_v1",
	InterfaceZxdgToplevelDecorationV1: "zxdg_toplevel_decoration_v1",
	InterfaceZwlrLayerShellV1:         "zwlr_layer_shell_v1",
	InterfaceZwlrLayerSurfaceV1:       "zwlr_layer_surface_v1",
	InterfaceExtDataControlManagerV1:  "ext_data_control_manager_v1",
	InterfaceExtDataControlDeviceV1:   "ext_data_control_device_v1",
	InterfaceExtDataControlSourceV1:   "ext_data_control_source_v1",
}

// XMLVersion is the maximum version defined by the upstream protocol
// XML for each interface, independent of any Baseline cap.
var interfaceXMLVersion = [interfaceCount]uint32{
	InterfaceWlDisplay:                1,
	InterfaceWlRegistry:                1,
	InterfaceWlCallback:                1,
	InterfaceWlCompositor:              6,
	InterfaceWlSurface:                 6,
	InterfaceWlRegion:                  1,
	InterfaceWlOutput:                  4,
	InterfaceWlSeat:                    9,
	InterfaceWlShm:                      2,
	InterfaceWlShmPool:                  2,
	InterfaceWlBuffer:                   1,
	InterfaceXdgWmBase:                  6,
	InterfaceXdgSurface:                 6,
	InterfaceXdgToplevel:                6,
	InterfaceZxdgDecorationManagerV1:    1,
	InterfaceZxdgToplevelDecorationV1:   1,
	InterfaceZwlrLayerShellV1:           5,
	InterfaceZwlrLayerSurfaceV1:         5,
	InterfaceExtDataControlManagerV1:    1,
	InterfaceExtDataControlDeviceV1:     1,
	InterfaceExtDataControlSourceV1:     1,
}

// Name returns the Wayland interface name, e.g. "wl_compositor".
func (i Interface) Name() string {
	if i < 0 || int(i) >= len(interfaceNames) {
		return ""
	}
	return interfaceNames[i]
}

// XMLVersion returns the maximum version this interface's protocol XML
// defines, independent of any Baseline cap.
func (i Interface) XMLVersion() uint32 {
	if i < 0 || int(i) >= len(interfaceXMLVersion) {
		return 0
	}
	return interfaceXMLVersion[i]
}

// InterfaceFromName looks up the Interface tag for a wire interface
// name. It returns (InterfaceUnknown, false) for any interface this
// proxy does not implement — callers must treat that as "filter this
// global out" / "fail this bind", never as a panic-worthy condition,
// since an upstream compositor is free to advertise globals this proxy
// has no generated code for.
func InterfaceFromName(name string) (Interface, bool) {
	for i, n := range interfaceNames {
		if i == int(InterfaceUnknown) {
			continue
		}
		if n == name {
			return Interface(i), true
		}
	}
	return InterfaceUnknown, false
}

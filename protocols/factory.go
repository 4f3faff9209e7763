package protocols

import (
	"fmt"

	"github.com/gogpu/wlproxy/proxyobj"
)

// NewObjectForInterface constructs the proxy object backing a global
// bound via wl_registry.bind, selecting the concrete constructor by
// interface tag. Interfaces only ever reachable as a child of another
// object (wl_surface, wl_buffer, wl_region, wl_callback, xdg_surface,
// xdg_toplevel, zxdg_toplevel_decoration_v1, zwlr_layer_surface_v1,
// ext_data_control_device_v1, ext_data_control_source_v1) are built by
// their owning request handler instead and are not reachable here.
func NewObjectForInterface(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint, iface proxyobj.Interface, version uint32) (proxyobj.Object, error) {
	switch iface {
	case proxyobj.InterfaceWlCompositor:
		return NewWlCompositor(disp, upstream, version), nil
	case proxyobj.InterfaceWlOutput:
		return NewWlOutput(disp, upstream, version), nil
	case proxyobj.InterfaceWlSeat:
		return NewWlSeat(disp, upstream, version), nil
	case proxyobj.InterfaceWlShm:
		return NewWlShm(disp, upstream, version), nil
	case proxyobj.InterfaceXdgWmBase:
		return NewXdgWmBase(disp, upstream, version), nil
	case proxyobj.InterfaceZxdgDecorationManagerV1:
		return NewZxdgDecorationManagerV1(disp, upstream, version), nil
	case proxyobj.InterfaceZwlrLayerShellV1:
		return NewZwlrLayerShellV1(disp, upstream, version), nil
	case proxyobj.InterfaceExtDataControlManagerV1:
		return NewExtDataControlManagerV1(disp, upstream, version), nil
	default:
		return nil, fmt.Errorf("protocols: %s is not bindable as a global", iface.Name())
	}
}

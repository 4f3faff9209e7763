// Package protocols is the hand-written stand-in for what a Wayland
// protocol code generator would emit from wayland.xml and the
// wayland-protocols extension XMLs: one Go type per interface, each
// holding a proxyobj.ObjectCore plus an optional Handler the embedding
// application can install to observe or override individual requests
// and events.
//
// Every generated-style type follows the same shape:
//
//   - TryRequestXxx / TryEventXxx build and send one message toward the
//     server or the client respectively, returning an error the caller
//     can inspect (the "try_send_*" half of the original pattern).
//   - RequestXxx / EventXxx call the Try* variant and log-and-discard
//     any error instead of returning it (the "send_*" half) — the
//     shape a default handler uses when all it wants is "forward this
//     unless told otherwise".
//   - HandleRequest / HandleEvent decode a wire.Message's opcode and
//     arguments and either call the installed Handler's method or fall
//     back to the default (forward) behavior.
//   - A Handler interface names one method per request (for handling
//     client->server direction) or per event (server->client), mirroring
//     the original's per-message handler trait.
//
// This proxy hand-implements a representative ~20-interface subset
// rather than the full wayland-protocols surface: the remaining
// interfaces would be produced by the same pattern, mechanically, from
// the protocol XML, which is out of scope here just as a full protocol
// compiler was out of scope for the system this package reimplements.
// The subset below was chosen to exercise every invariant and
// end-to-end scenario this proxy commits to: display/registry/callback
// (core plumbing and id translation), compositor/surface/output/seat
// (the ordinary application surface-drawing path), shm/shm_pool/buffer
// (fd-bearing requests), xdg_wm_base/xdg_surface/xdg_toplevel (the
// desktop-shell path every windowed app uses), the zxdg decoration and
// zwlr layer-shell globals (registry filter/synthesis targets), and the
// ext_data_control_* trio (the clipboard-relay scenario).
package protocols

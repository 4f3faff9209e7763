// Package harness owns the proxy's process-level concerns: resolving
// and dialing the real compositor's socket, listening on a
// proxy-owned socket for the wrapped application, and spawning that
// application with WAYLAND_DISPLAY rewritten to point at the proxy.
//
// The socket path resolution here is lifted directly from the
// teacher's own Display.Connect/getSocketPath (gogpu-gogpu's
// internal/platform/wayland/display.go), which dials
// $XDG_RUNTIME_DIR/$WAYLAND_DISPLAY (defaulting to "wayland-0",
// short-circuiting on an absolute WAYLAND_DISPLAY). DialUpstream reuses
// that resolution unchanged; Listen inverts it to bind instead of
// dial, since this proxy sits between the real compositor and the
// wrapped application rather than being the application itself.
package harness

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/gogpu/wlproxy/proxyobj"
)

// ErrNoRuntimeDir mirrors the teacher's ErrNoWaylandSocket check: a
// missing XDG_RUNTIME_DIR means there is nowhere to resolve a relative
// display name against.
var ErrNoRuntimeDir = errors.New("harness: XDG_RUNTIME_DIR not set")

func socketPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", ErrNoRuntimeDir
	}
	return filepath.Join(runtimeDir, name), nil
}

// DialUpstream connects to the real compositor, following the same
// $XDG_RUNTIME_DIR/$WAYLAND_DISPLAY resolution (defaulting to
// "wayland-0") the teacher's Display.Connect uses, and wraps the
// connection as the proxy's single upstream Endpoint.
func DialUpstream(id uint64) (*proxyobj.Endpoint, error) {
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		display = "wayland-0"
	}
	path, err := socketPath(display)
	if err != nil {
		return nil, err
	}
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("harness: dial upstream %s: %w", path, err)
	}
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		_ = conn.Close()
		return nil, fmt.Errorf("harness: %s is not a unix socket", path)
	}
	return proxyobj.NewEndpoint(id, proxyobj.RoleUpstream, unixConn)
}

// Listener is the proxy's own downstream-facing socket, the one the
// wrapped application connects to believing it is talking to the real
// compositor.
type Listener struct {
	name   string
	path   string
	ln     *net.UnixListener
	file   *os.File
	nextID uint64
}

// Listen creates (or replaces a stale) listening socket at
// $XDG_RUNTIME_DIR/name, using the same relative/absolute resolution
// DialUpstream uses for the real compositor's own socket.
func Listen(name string) (*Listener, error) {
	path, err := socketPath(name)
	if err != nil {
		return nil, err
	}
	if err := removeStale(path); err != nil {
		return nil, err
	}
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, fmt.Errorf("harness: resolve %s: %w", path, err)
	}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, fmt.Errorf("harness: listen %s: %w", path, err)
	}
	file, err := ln.File()
	if err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("harness: dup listener fd: %w", err)
	}
	return &Listener{name: name, path: path, ln: ln, file: file, nextID: 1}, nil
}

// removeStale unlinks a leftover socket file from a previous run that
// is no longer being served, refusing to clobber one a running proxy
// still owns.
func removeStale(path string) error {
	conn, err := net.Dial("unix", path)
	if err == nil {
		_ = conn.Close()
		return fmt.Errorf("harness: %s is already in use by a running proxy", path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("harness: remove stale socket %s: %w", path, err)
	}
	return nil
}

// Fd returns the duplicated descriptor dispatch.Loop registers with
// epoll; ln.File() dup's it the same way Endpoint dup's a *net.UnixConn
// to get a raw fd for Recvmsg/Sendmsg.
func (l *Listener) Fd() int { return int(l.file.Fd()) }

// Path is the socket file's location on disk.
func (l *Listener) Path() string { return l.path }

// Name is the bare display name (e.g. "wayland-1") a spawned child
// should see in its own WAYLAND_DISPLAY.
func (l *Listener) Name() string { return l.name }

// Accept takes the next pending downstream connection and wraps it as
// a fresh proxyobj.Client. Called by dispatch.Loop when epoll reports
// this listener's fd readable, never from a separate goroutine: the
// whole proxy stays single-threaded.
func (l *Listener) Accept() (*proxyobj.Client, error) {
	conn, err := l.ln.AcceptUnix()
	if err != nil {
		return nil, err
	}
	l.nextID++
	ep, err := proxyobj.NewEndpoint(l.nextID, proxyobj.RoleDownstream, conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return proxyobj.NewClient(ep), nil
}

// Close removes the listening socket and its duplicated fd.
func (l *Listener) Close() error {
	_ = l.file.Close()
	if err := l.ln.Close(); err != nil {
		return err
	}
	return os.Remove(l.path)
}

// SpawnChild launches the application this proxy instance wraps, with
// WAYLAND_DISPLAY rewritten to this proxy's own listening socket name
// instead of the real compositor's, standard streams passed through
// unchanged. The teacher's Display models a single process being the
// Wayland client; here that relationship is inverted, this process
// launches the client and mediates its connection.
func (l *Listener) SpawnChild(name string, args []string) (*exec.Cmd, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), "WAYLAND_DISPLAY="+l.Name())
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("harness: spawn %s: %w", name, err)
	}
	return cmd, nil
}

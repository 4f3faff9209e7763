package harness

import (
	"net"
	"os"
	"path/filepath"
	"testing"
)

func TestSocketPathJoinsRuntimeDirForRelativeName(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	got, err := socketPath("wayland-2")
	if err != nil {
		t.Fatalf("socketPath: %v", err)
	}
	want := "/run/user/1000/wayland-2"
	if got != want {
		t.Errorf("socketPath = %q, want %q", got, want)
	}
}

func TestSocketPathShortCircuitsAbsoluteName(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	got, err := socketPath("/tmp/custom.sock")
	if err != nil {
		t.Fatalf("socketPath: %v", err)
	}
	if got != "/tmp/custom.sock" {
		t.Errorf("socketPath = %q, want the absolute name unchanged", got)
	}
}

func TestSocketPathErrorsWithoutRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	if _, err := socketPath("wayland-0"); err != ErrNoRuntimeDir {
		t.Errorf("socketPath error = %v, want ErrNoRuntimeDir", err)
	}
}

func TestListenAcceptRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)

	ln, err := Listen("wayland-test")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	if ln.Name() != "wayland-test" {
		t.Errorf("Name() = %q, want wayland-test", ln.Name())
	}
	wantPath := filepath.Join(dir, "wayland-test")
	if ln.Path() != wantPath {
		t.Errorf("Path() = %q, want %q", ln.Path(), wantPath)
	}
	if ln.Fd() < 0 {
		t.Fatalf("Fd() = %d, want a valid descriptor", ln.Fd())
	}

	conn, err := net.Dial("unix", wantPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	client, err := ln.Accept()
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if client.Endpoint == nil {
		t.Fatal("accepted client has no Endpoint")
	}
	defer client.Endpoint.Close()
}

func TestListenRefusesToClobberALiveSocket(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)

	first, err := Listen("wayland-test")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer first.Close()

	if _, err := Listen("wayland-test"); err == nil {
		t.Error("second Listen on the same name should refuse to clobber a live socket")
	}
}

func TestListenRemovesStaleSocketFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	path := filepath.Join(dir, "wayland-test")

	// A regular file left at the socket path stands in for a socket a
	// crashed proxy never got to unlink on exit.
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("create stale file: %v", err)
	}

	ln, err := Listen("wayland-test")
	if err != nil {
		t.Fatalf("Listen should clear a stale socket file: %v", err)
	}
	defer ln.Close()
}

func TestSpawnChildSetsWaylandDisplayToProxySocket(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	t.Setenv("WAYLAND_DISPLAY", "wayland-0")

	ln, err := Listen("wayland-test")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	cmd, err := ln.SpawnChild("/usr/bin/env", nil)
	if err != nil {
		t.Fatalf("SpawnChild: %v", err)
	}
	if err := cmd.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	var found bool
	for _, kv := range cmd.Env {
		if kv == "WAYLAND_DISPLAY=wayland-test" {
			found = true
		}
	}
	if !found {
		t.Error("spawned child env does not override WAYLAND_DISPLAY to the proxy's own socket name")
	}
}

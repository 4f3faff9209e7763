package wire

import (
	"os"
	"testing"
)

func TestParseFdsEmpty(t *testing.T) {
	fds, err := ParseFds(nil)
	if err != nil {
		t.Fatal(err)
	}
	if fds != nil {
		t.Errorf("expected nil fds, got %v", fds)
	}
}

func TestBuildAndParseRightsRoundTrip(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	oob := BuildRights([]int{int(r.Fd())})
	fds, err := ParseFds(oob)
	if err != nil {
		t.Fatal(err)
	}
	if len(fds) != 1 {
		t.Fatalf("expected 1 fd worth of control message payload, got %d", len(fds))
	}
}

func TestBuildRightsEmpty(t *testing.T) {
	if oob := BuildRights(nil); oob != nil {
		t.Errorf("expected nil control message for no fds, got %v", oob)
	}
}

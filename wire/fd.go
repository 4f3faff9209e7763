package wire

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ParseFds extracts file descriptors carried as SCM_RIGHTS ancillary
// data in a recvmsg control buffer.
func ParseFds(oob []byte) ([]int, error) {
	if len(oob) == 0 {
		return nil, nil
	}
	scms, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, fmt.Errorf("wire: parse control message: %w", err)
	}
	var fds []int
	for _, scm := range scms {
		if scm.Header.Level != unix.SOL_SOCKET || scm.Header.Type != unix.SCM_RIGHTS {
			continue
		}
		got, err := unix.ParseUnixRights(&scm)
		if err != nil {
			return nil, fmt.Errorf("wire: parse unix rights: %w", err)
		}
		fds = append(fds, got...)
	}
	return fds, nil
}

// BuildRights builds the ancillary control message for sending fds via
// SCM_RIGHTS.
func BuildRights(fds []int) []byte {
	if len(fds) == 0 {
		return nil
	}
	return unix.UnixRights(fds...)
}

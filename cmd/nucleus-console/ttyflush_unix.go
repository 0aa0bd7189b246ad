//go:build !windows

package main

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// flushTTYInput drops unread bytes queued on the controlling terminal, such as
// late OSC/DSR replies to the TUI's capability queries, so they are not read
// as typed input by the console or the shell afterwards. No-op without a tty.
func flushTTYInput() {
	tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
	if err != nil {
		return
	}
	defer func() { _ = tty.Close() }()

	fd := int(tty.Fd())

	// tcflush(fd, TCIFLUSH); TCFLSH is 0x540B on Linux and Darwin.
	const tcflsh = 0x540B
	_, _, _ = unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(tcflsh), uintptr(unix.TCIFLUSH))

	// Replies can arrive right after the flush; drain briefly.
	if err := unix.SetNonblock(fd, true); err != nil {
		return
	}
	defer func() { _ = unix.SetNonblock(fd, false) }()

	buf := make([]byte, 256)
	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		n, err := unix.Read(fd, buf)
		if n <= 0 || err != nil {
			return
		}
		deadline = time.Now().Add(50 * time.Millisecond)
	}
}

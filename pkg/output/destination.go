// Package output decides where hnvm's own diagnostics go.
//
// Diagnostics default to the inherited stderr. HNVM_OUTPUT_DESTINATION may name a file,
// a device, a FIFO or a file descriptor instead. Targets that cannot be written safely
// (sockets, directories, unwritable paths) are replaced by a discarding writer after a
// warning on stderr. The wrapped program's stdout and stderr are never touched.
package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gnodet/hnvm/pkg/util"
	"golang.org/x/term"
)

// DiscardName is how the discarding destination is reported to users
const DiscardName = "/dev/null"

// Destination is the writer diagnostics are sent to, decided once at startup
type Destination struct {
	Writer  io.Writer
	Name    string
	Discard bool

	file  *os.File // the underlying file when known, for terminal detection
	owned bool     // opened by ResolveDestination, closed by Close
}

// Close releases a file opened for the destination
func (d *Destination) Close() error {
	if d.owned && d.file != nil {
		return d.file.Close()
	}
	return nil
}

// IsTerminal reports whether the destination is an interactive terminal
func (d *Destination) IsTerminal() bool {
	if d.file == nil {
		return false
	}
	return term.IsTerminal(int(d.file.Fd()))
}

// ResolveDestination picks the diagnostic destination for override, warning on stderr
// and falling back to a discarding writer when override is unusable.
func ResolveDestination(override string, stderr *os.File) Destination {
	override = strings.TrimSpace(override)
	if override == "" {
		return Destination{Writer: stderr, Name: "stderr", file: stderr}
	}

	dest, err := open(override, stderr)
	if err == nil {
		return dest
	}

	fmt.Fprintln(stderr, "WARNING: Could not find a writable, non-socket stdout redirect target!")
	fmt.Fprintf(stderr, "WARNING: Further HNVM output will be redirected to '%s'\n", DiscardName)
	util.LogVerbose("Output destination %s rejected: %v", override, err)
	return Destination{Writer: io.Discard, Name: DiscardName, Discard: true}
}

func open(target string, stderr *os.File) (Destination, error) {
	switch target {
	case "stderr", "/dev/stderr", "2":
		return probeFile(stderr, "stderr", false)
	case "stdout", "/dev/stdout", "1", "-":
		return probeFile(os.Stdout, "stdout", false)
	}

	if fd, err := strconv.Atoi(target); err == nil {
		if fd < 0 {
			return Destination{}, fmt.Errorf("invalid file descriptor %d", fd)
		}
		f := os.NewFile(uintptr(fd), "fd"+target)
		if f == nil {
			return Destination{}, fmt.Errorf("invalid file descriptor %d", fd)
		}
		return probeFile(f, "fd "+target, false)
	}

	info, err := os.Stat(target)
	switch {
	case os.IsNotExist(err):
		f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return Destination{}, err
		}
		return Destination{Writer: f, Name: target, file: f, owned: true}, nil
	case err != nil:
		return Destination{}, err
	}

	if err := checkMode(info.Mode()); err != nil {
		return Destination{}, err
	}
	flags := os.O_WRONLY
	if info.Mode().IsRegular() {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(target, flags, 0)
	if err != nil {
		return Destination{}, err
	}
	return Destination{Writer: f, Name: target, file: f, owned: true}, nil
}

func probeFile(f *os.File, name string, owned bool) (Destination, error) {
	info, err := f.Stat()
	if err != nil {
		return Destination{}, err
	}
	if err := checkMode(info.Mode()); err != nil {
		return Destination{}, err
	}
	return Destination{Writer: f, Name: name, file: f, owned: owned}, nil
}

// checkMode accepts regular files, character devices and FIFOs
func checkMode(mode os.FileMode) error {
	switch {
	case mode&os.ModeSocket != 0:
		return fmt.Errorf("is a socket")
	case mode.IsDir():
		return fmt.Errorf("is a directory")
	case mode.IsRegular(), mode&os.ModeCharDevice != 0, mode&os.ModeNamedPipe != 0:
		return nil
	}
	return fmt.Errorf("unsupported file type %s", mode.Type())
}

//go:build !windows

package executor

import (
	"errors"
	"os"

	"github.com/gnodet/hnvm/pkg/tools"
	"golang.org/x/sys/unix"
)

// Launch replaces the current process image with binary
func Launch(binary string, argv []string, env []string) error {
	if err := checkLaunchable(binary); err != nil {
		return err
	}
	if err := unix.Exec(binary, argv, env); err != nil {
		return &tools.LaunchError{Binary: binary, Reason: launchReason(err), Err: err}
	}
	return nil
}

// checkLaunchable reports missing or non-executable binaries with the matching reason
func checkLaunchable(binary string) error {
	info, err := os.Stat(binary)
	if err != nil {
		return &tools.LaunchError{Binary: binary, Reason: tools.ReasonNotFound, Err: err}
	}
	if info.IsDir() {
		return &tools.LaunchError{Binary: binary, Reason: tools.ReasonNotExecutable}
	}
	if err := unix.Access(binary, unix.X_OK); err != nil {
		return &tools.LaunchError{Binary: binary, Reason: tools.ReasonNotExecutable, Err: err}
	}
	return nil
}

func launchReason(err error) string {
	if errors.Is(err, unix.ENOENT) {
		return tools.ReasonNotFound
	}
	return tools.ReasonNotExecutable
}

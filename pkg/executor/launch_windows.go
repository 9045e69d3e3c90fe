//go:build windows

package executor

import (
	"errors"
	"os"
	"os/exec"

	"github.com/gnodet/hnvm/pkg/tools"
)

// Launch runs binary as a child with inherited stdio and exits with its status,
// since Windows has no way to replace the current process.
func Launch(binary string, argv []string, env []string) error {
	if _, err := os.Stat(binary); err != nil {
		return &tools.LaunchError{Binary: binary, Reason: tools.ReasonNotFound, Err: err}
	}
	cmd := exec.Command(binary, argv[1:]...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		return &tools.LaunchError{Binary: binary, Reason: tools.ReasonNotExecutable, Err: err}
	}
	os.Exit(0)
	return nil
}

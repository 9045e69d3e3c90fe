package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DirName is the name of the default cache root under the user's home directory
const DirName = ".hnvm"

// homeDirFunc is a function variable that can be overridden for testing
var homeDirFunc = getHomeDirImpl

// getHomeDirImpl is the actual implementation
func getHomeDirImpl() (string, error) {
	var homeDir string
	var err error

	if runtime.GOOS == "windows" {
		homeDir = os.Getenv("USERPROFILE")
		if homeDir == "" {
			homeDir = os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
		}
	} else {
		homeDir, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
	}

	if homeDir == "" {
		return "", fmt.Errorf("unable to determine user home directory")
	}
	return homeDir, nil
}

// DefaultPath returns the default cache root, ~/.hnvm
func DefaultPath() (string, error) {
	home, err := homeDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName), nil
}

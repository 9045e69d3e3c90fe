package tools

import (
	"fmt"
	"strings"

	"github.com/gnodet/hnvm/pkg/util"
)

// logVerbose prints verbose log messages
func logVerbose(format string, args ...interface{}) {
	util.LogVerbose(format, args...)
}

// VariantEnvVar returns the environment variable selecting a build variant of a tool
func VariantEnvVar(toolName string) string {
	return fmt.Sprintf("%s_%s_VARIANT", EnvPrefix, strings.ToUpper(toolName))
}

// VersionOverrideEnvVar returns the environment variable overriding the requested version of a tool
func VersionOverrideEnvVar(toolName string) string {
	return fmt.Sprintf("%s_%s_VERSION", EnvPrefix, strings.ToUpper(toolName))
}

package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Version information, overridden via -ldflags at build time.
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// GetVersion returns the bare version string.
func GetVersion() string {
	return Version
}

// GetFullVersion returns the version with build metadata appended.
func GetFullVersion() string {
	return fmt.Sprintf("%s+%s.%s", Version, Build, GitCommit)
}

// LoadVersionFromFile overrides Version from a .version file, checked
// beside the executable first and then in the working directory. Used by
// deployments that stamp the version at package time rather than build
// time.
func LoadVersionFromFile() string {
	for _, dir := range versionDirs() {
		data, err := os.ReadFile(filepath.Join(dir, ".version"))
		if err != nil {
			continue
		}
		if v := strings.TrimSpace(string(data)); v != "" {
			Version = v
			break
		}
	}
	return Version
}

func versionDirs() []string {
	var dirs []string
	if execPath, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(execPath))
	}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	return dirs
}

package cli

import (
	"os/exec"
	"runtime"

	"github.com/banshee-data/response.report/internal/monitoring"
)

// openBrowser hands path to the platform's default opener.
func openBrowser(path string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{path}
	case "linux":
		cmd = "xdg-open"
		args = []string{path}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", path}
	default:
		monitoring.Logf("cannot open %s: unsupported platform %s", path, runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		monitoring.Logf("failed to open %s: %v", path, err)
	}
}

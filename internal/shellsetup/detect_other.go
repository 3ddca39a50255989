//go:build !windows

package shellsetup

import (
	"os"
	"os/exec"
	"strconv"
)

// DetectParentShellName names the process that started rmill, read from
// /proc where available and from ps otherwise.
func DetectParentShellName() string {
	return processName(os.Getppid())
}

// processName is the command name of pid, or "" when it cannot be read.
func processName(ppid int) string {
	if ppid <= 1 {
		return ""
	}
	pid := strconv.Itoa(ppid)
	data, err := os.ReadFile("/proc/" + pid + "/comm")
	if err != nil {
		if data, err = exec.Command("ps", "-o", "comm=", "-p", pid).Output(); err != nil {
			return ""
		}
	}
	return canonicalShellName(normalizeShellName(string(data)))
}

//go:build windows

package shellsetup

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows"
)

// DetectParentShellName names the executable of the parent process, so
// that running rmill --setup from PowerShell or cmd picks the right script.
func DetectParentShellName() string {
	ppid := os.Getppid()
	if ppid <= 0 {
		return ""
	}
	exe, err := processImage(uint32(ppid))
	if err != nil || exe == "" {
		return ""
	}
	name := strings.TrimSuffix(strings.ToLower(filepath.Base(exe)), ".exe")
	return canonicalShellName(name)
}

// processImage returns the full executable path of pid.
func processImage(pid uint32) (string, error) {
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = windows.CloseHandle(handle)
	}()

	for n := windows.MAX_PATH; n <= 32*1024; n *= 2 {
		buf := make([]uint16, n)
		size := uint32(n)
		err = windows.QueryFullProcessImageName(handle, 0, &buf[0], &size)
		if err == nil {
			return windows.UTF16ToString(buf[:size]), nil
		}
		if !errors.Is(err, windows.ERROR_INSUFFICIENT_BUFFER) {
			return "", err
		}
	}
	return "", err
}

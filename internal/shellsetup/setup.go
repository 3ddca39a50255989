// Package shellsetup prints the shell function that lets the calling shell
// follow rmill: the function passes a temporary file through --choosedir
// and changes into the directory written there.
package shellsetup

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strconv"
	"strings"
)

type ParentShellFunc func() string

type Config struct {
	DetectParent ParentShellFunc
	// Executable overrides the binary path written into the snippet.
	Executable string
}

const posixSetup = `rmill() {
    rmill_tmp="$(mktemp "${TMPDIR:-/tmp}/rmill.XXXXXX")" || return 1
    command {{exe}} --choosedir "$rmill_tmp" "$@"
    rmill_code=$?
    rmill_dest="$(cat -- "$rmill_tmp" 2>/dev/null)"
    rm -f -- "$rmill_tmp"
    if [ -n "$rmill_dest" ] && [ -d "$rmill_dest" ] && [ "$rmill_dest" != "$PWD" ]; then
        cd -- "$rmill_dest" || return
    fi
    unset rmill_tmp rmill_dest
    return $rmill_code
}
`

const fishSetup = `function rmill
    set -l tmp (mktemp (string join / (set -q TMPDIR; and echo $TMPDIR; or echo /tmp) rmill.XXXXXX)); or return 1
    command {{exe}} --choosedir $tmp $argv
    set -l code $status
    set -l dest (cat $tmp 2>/dev/null)
    rm -f $tmp
    if test -n "$dest" -a -d "$dest"
        builtin cd $dest
    end
    return $code
end
`

const pwshSetup = `function rmill {
    $tmp = [System.IO.Path]::GetTempFileName()
    try {
        & {{exe}} --choosedir $tmp @args
        $dest = Get-Content $tmp -Raw -ErrorAction SilentlyContinue
        if ($dest) { $dest = $dest.Trim() }
        if ($dest -and (Test-Path $dest -PathType Container)) {
            Set-Location $dest
        }
    } finally {
        Remove-Item $tmp -ErrorAction SilentlyContinue
    }
}
`

const cmdSetup = `:: Save as rmill.cmd in a directory on PATH.
@echo off
set "rmill_tmp=%TEMP%\rmill_%RANDOM%%RANDOM%.txt"
type nul > "%rmill_tmp%"
{{exe}} --choosedir "%rmill_tmp%" %*
set "rmill_dest="
set /p rmill_dest=<"%rmill_tmp%"
del "%rmill_tmp%" 2>nul
if defined rmill_dest cd /d "%rmill_dest%"
`

const cshSetup = "alias rmill 'set rmill_tmp=`mktemp`; {{exe}} --choosedir $rmill_tmp \\!*; " +
	"set rmill_dest=`cat $rmill_tmp`; rm -f $rmill_tmp; " +
	"if ( \"$rmill_dest\" != \"\" && -d \"$rmill_dest\" ) cd \"$rmill_dest\"'\n"

// PrintSetup writes the integration snippet for shellOverride, or for the
// detected shell when it is empty.
func PrintSetup(w io.Writer, shellOverride string, cfg Config) error {
	parent := cfg.DetectParent
	if parent == nil {
		parent = DetectParentShellName
	}

	shell := normalizeShellName(shellOverride)
	if shell == "" {
		shell = detectShell(parent)
	}
	shell = canonicalShellName(shell)

	exe := cfg.Executable
	if exe == "" {
		var err error
		if exe, err = os.Executable(); err != nil {
			exe = "rmill"
		}
	}

	var template string
	switch shell {
	case "fish":
		template = fishSetup
	case "pwsh":
		template = pwshSetup
	case "cmd":
		template = cmdSetup
	case "tcsh", "csh":
		template = cshSetup
	default:
		template = posixSetup
	}
	_, err := io.WriteString(w, strings.ReplaceAll(template, "{{exe}}", quoteFor(shell, exe)))
	if err != nil {
		return fmt.Errorf("write setup: %w", err)
	}
	return nil
}

// quoteFor quotes exe for the target shell.
func quoteFor(shell, exe string) string {
	switch shell {
	case "pwsh":
		return "'" + strings.ReplaceAll(exe, "'", "''") + "'"
	case "cmd", "tcsh", "csh":
		return `"` + exe + `"`
	default:
		return strconv.Quote(exe)
	}
}

func detectShell(parent ParentShellFunc) string {
	return detectShellInternal(runtime.GOOS, os.Getenv, parent)
}

func detectShellInternal(goos string, getenv func(string) string, parent ParentShellFunc) string {
	if shell := canonicalShellName(normalizeShellName(getenv("SHELL"))); shell != "" {
		return shell
	}

	if parent != nil {
		if shell := canonicalShellName(normalizeShellName(parent())); shell != "" {
			return shell
		}
	}

	if strings.EqualFold(goos, "windows") {
		if shell := canonicalShellName(normalizeShellName(getenv("COMSPEC"))); shell != "" {
			switch shell {
			case "pwsh", "cmd":
				return shell
			}
		}
		return "pwsh"
	}

	return "bash"
}

func canonicalShellName(name string) string {
	switch name {
	case "powershell":
		return "pwsh"
	default:
		return strings.TrimPrefix(name, "-")
	}
}

func normalizeShellName(value string) string {
	value = extractExecutable(strings.TrimSpace(value))
	if value == "" {
		return ""
	}

	value = strings.Trim(value, `"'`)
	value = strings.ReplaceAll(value, "\\", "/")
	base := strings.ToLower(path.Base(value))
	base = strings.TrimSuffix(base, ".exe")
	return strings.TrimSpace(base)
}

func extractExecutable(value string) string {
	if value == "" {
		return ""
	}
	for _, q := range []string{`"`, "'"} {
		if rest, ok := strings.CutPrefix(value, q); ok {
			if idx := strings.Index(rest, q); idx >= 0 {
				return rest[:idx]
			}
			return rest
		}
	}
	if idx := strings.IndexAny(value, " \t"); idx >= 0 {
		return value[:idx]
	}
	return value
}

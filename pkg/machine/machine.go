// Package machine describes the host a link pass runs on. The values are
// detected once and then passed explicitly to override resolution.
package machine

import (
	"os"
	"runtime"
	"strings"

	"github.com/arthur-debert/dotfiles/pkg/errors"
)

// WSL is the OS identifier matched by Windows Subsystem for Linux hosts
const WSL = "WSL"

// Machine identifies the current host for override matching
type Machine struct {
	// Hostname is compared exactly against hostname.<value> overrides
	Hostname string
	// OS is the system name as reported by uname (Linux, Darwin, ...)
	OS string
	// Release is the kernel release, used to detect WSL
	Release string
}

// Detect reads the hostname and OS identifiers of the running system
func Detect() (Machine, error) {
	host, err := os.Hostname()
	if err != nil {
		return Machine{}, errors.Wrap(err, errors.ErrInternal, "failed to read hostname")
	}

	sysname, release := uname()
	if sysname == "" {
		sysname = goosName(runtime.GOOS)
	}

	return Machine{
		Hostname: host,
		OS:       sysname,
		Release:  release,
	}, nil
}

// IsWSL reports whether the kernel release identifies a WSL kernel
func (m Machine) IsWSL() bool {
	r := strings.ToLower(m.Release)
	return strings.Contains(r, "microsoft") || strings.Contains(r, "wsl")
}

// MatchesHostname reports whether value names this host
func (m Machine) MatchesHostname(value string) bool {
	return value != "" && value == m.Hostname
}

// MatchesOS reports whether value names this OS. Comparison ignores case;
// "WSL" matches a Linux host running a WSL kernel.
func (m Machine) MatchesOS(value string) bool {
	if value == "" {
		return false
	}
	if strings.EqualFold(value, WSL) && m.IsWSL() {
		return true
	}
	return strings.EqualFold(value, m.OS)
}

// goosName maps runtime.GOOS to the uname-style system name
func goosName(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	case "freebsd":
		return "FreeBSD"
	case "openbsd":
		return "OpenBSD"
	case "netbsd":
		return "NetBSD"
	default:
		return goos
	}
}

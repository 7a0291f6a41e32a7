package toolchain

import (
	"fmt"
	"runtime"

	"github.com/dontdude/regexbench/internal/domain"
)

// Platform is the host operating system and architecture, using GOOS and
// GOARCH spellings.
type Platform struct {
	OS   string
	Arch string
}

// Current returns the platform the process runs on.
func Current() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

// Family is the compiler dialect used on this platform.
func (p Platform) Family() domain.CompilerFamily {
	if p.OS == "windows" {
		return domain.FamilyMSVC
	}
	return domain.FamilyUnix
}

// LibraryExt is the shared library file extension.
func (p Platform) LibraryExt() string {
	switch p.OS {
	case "windows":
		return ".dll"
	case "darwin", "ios":
		return ".dylib"
	default:
		return ".so"
	}
}

// vcvarsScript names the MSVC environment script for a host architecture.
func (p Platform) vcvarsScript() (string, error) {
	switch p.Arch {
	case "amd64":
		return "vcvars64", nil
	case "arm64":
		return "vcvarsamd64_arm64", nil
	default:
		return "", fmt.Errorf("only amd64 and arm64 hosts are supported, architecture is %q", p.Arch)
	}
}

func (p Platform) String() string {
	return p.OS + "/" + p.Arch
}

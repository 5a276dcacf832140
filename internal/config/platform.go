package config

import (
	"runtime"
	"strings"
)

// Platform identifies the host operating system and machine architecture.
// OS follows runtime.GOOS naming; Arch accepts both Go names ("arm64",
// "amd64") and uname-style names ("aarch64", "x86_64") so that snapshots
// written on other machines still resolve.
type Platform struct {
	OS   string
	Arch string
}

// Host returns the platform of the running process.
func Host() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

func (p Platform) isARM() bool {
	arch := strings.ToLower(p.Arch)
	return arch == "arm64" || arch == "aarch64" || strings.HasPrefix(arch, "arm")
}

func (p Platform) isX86_64() bool {
	arch := strings.ToLower(p.Arch)
	return arch == "amd64" || arch == "x86_64"
}

// Package platform detects the host WPK runs on.
//
// The result feeds the User-Agent sent to the package repository and is
// exposed to wpk.lua as a read-only "platform" table so configuration can,
// for example, pick a different interpreter on Windows.
package platform

import (
	"context"
	"strings"
)

// Info contains platform detection information.
type Info struct {
	OS            string // runtime.GOOS
	Arch          string // runtime.GOARCH
	Distro        string // Linux distribution ID, e.g. "ubuntu"; empty elsewhere
	DistroVersion string // e.g. "22.04"
}

// String renders "os/arch" followed by "; distro version" when known, the
// form used inside the User-Agent comment.
func (i *Info) String() string {
	if i == nil {
		return ""
	}
	s := i.OS + "/" + i.Arch
	if i.Distro != "" {
		s += "; " + strings.TrimSpace(i.Distro+" "+i.DistroVersion)
	}
	return s
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// StaticDetector returns a fixed Info. Useful in tests.
type StaticDetector struct {
	Info Info
}

// Detect returns a copy of the fixed Info.
func (d StaticDetector) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info := d.Info
	return &info, nil
}

package platform

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct {
	goos   string
	goarch string
	lookup func(ctx context.Context) (platform, family, version string, err error)
}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
		lookup: host.PlatformInformationWithContext,
	}
}

// Detect reports OS and architecture from the Go runtime and, on Linux, the
// distribution from gopsutil. A failed distribution lookup is not an error;
// the distro fields are simply left empty.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:   d.goos,
		Arch: d.goarch,
	}

	if info.IsLinux() && d.lookup != nil {
		platform, _, version, err := d.lookup(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
			return info, nil
		}
		info.Distro = normalize(platform)
		info.DistroVersion = normalize(version)
	}

	return info, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

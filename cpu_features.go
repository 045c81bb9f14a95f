package dotprod

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// Host describes the machine the program runs on.
type Host struct {
	OS    string
	Arch  string
	Brand string // CPU brand string, empty when the OS does not expose it

	HasNEON bool // ARM64 Advanced SIMD
	HasFP16 bool // ARM64 half-precision arithmetic
}

// HostInfo detects the host platform and its CPU features.
func HostInfo() Host {
	return Host{
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		Brand:   cpuBrand(),
		HasNEON: cpu.ARM64.HasASIMD,
		HasFP16: cpu.ARM64.HasFPHP && cpu.ARM64.HasASIMDHP,
	}
}

// AppleSilicon reports whether the host can run the Metal backend.
func (h Host) AppleSilicon() bool {
	return h.OS == "darwin" && h.Arch == "arm64"
}

// String returns a one-line description of the host.
func (h Host) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s/%s", h.OS, h.Arch)
	if h.Brand != "" {
		fmt.Fprintf(&b, " (%s)", h.Brand)
	}

	features := []string{}
	if h.HasNEON {
		features = append(features, "NEON")
	}
	if h.HasFP16 {
		features = append(features, "FP16")
	}
	if len(features) > 0 {
		b.WriteString(" features: " + strings.Join(features, ", "))
	}
	return b.String()
}

//go:build darwin

package dotprod

import "golang.org/x/sys/unix"

func cpuBrand() string {
	brand, err := unix.Sysctl("machdep.cpu.brand_string")
	if err != nil {
		return ""
	}
	return brand
}

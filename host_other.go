//go:build !darwin

package dotprod

func cpuBrand() string {
	return ""
}

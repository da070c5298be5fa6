package main

import "runtime"

// hostTarget derives a target triple for the running platform.
func hostTarget() string {
	return targetTriple(runtime.GOOS, runtime.GOARCH)
}

func targetTriple(goos, goarch string) string {
	arch := goarch
	switch goarch {
	case "amd64":
		arch = "x86_64"
	case "386":
		arch = "i686"
	case "arm64":
		arch = "aarch64"
		if goos == "darwin" {
			arch = "arm64"
		}
	case "riscv64":
		arch = "riscv64"
	}
	switch goos {
	case "linux":
		return arch + "-unknown-linux-gnu"
	case "darwin":
		return arch + "-apple-darwin"
	case "windows":
		return arch + "-pc-windows-msvc"
	case "freebsd":
		return arch + "-unknown-freebsd"
	default:
		return arch + "-unknown-" + goos
	}
}

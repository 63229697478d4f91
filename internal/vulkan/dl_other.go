//go:build !((darwin || freebsd || linux || windows) && (amd64 || arm64))

package vulkan

import (
	"errors"
	"runtime"
)

var errNoDynamicCalls = errors.New("dynamic library calls are not supported on " + runtime.GOOS + "/" + runtime.GOARCH)

func openLibrary(string) (uintptr, error) {
	return 0, errNoDynamicCalls
}

func lookupSymbol(uintptr, string) (uintptr, error) {
	return 0, errNoDynamicCalls
}

func closeLibrary(uintptr) error {
	return nil
}

// Never reached: Load fails before anything is bound.
func bindFunc(any, uintptr) {}

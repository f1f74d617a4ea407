//go:build windows

package geometry

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	monitorDefaultToNearest = 0x00000002
	spiGetWorkArea          = 0x0030
)

var (
	user32                    = windows.NewLazySystemDLL("user32.dll")
	procMonitorFromWindow     = user32.NewProc("MonitorFromWindow")
	procMonitorFromRect       = user32.NewProc("MonitorFromRect")
	procGetMonitorInfoW       = user32.NewProc("GetMonitorInfoW")
	procSystemParametersInfoW = user32.NewProc("SystemParametersInfoW")
)

type monitorInfo struct {
	cbSize    uint32
	rcMonitor windows.Rect
	rcWork    windows.Rect
	dwFlags   uint32
}

type systemDisplay struct{}

// SystemDisplay returns the Display backed by user32.
func SystemDisplay() Display { return systemDisplay{} }

func (systemDisplay) WorkAreaFor(handle uintptr, bounds Rect) (Rect, error) {
	var hmon uintptr
	if handle != 0 {
		hmon, _, _ = procMonitorFromWindow.Call(handle, monitorDefaultToNearest)
	} else {
		r := toWinRect(bounds)
		hmon, _, _ = procMonitorFromRect.Call(uintptr(unsafe.Pointer(&r)), monitorDefaultToNearest)
	}
	if hmon == 0 {
		return Rect{}, ErrNoMonitor
	}

	mi := monitorInfo{}
	mi.cbSize = uint32(unsafe.Sizeof(mi))
	ok, _, err := procGetMonitorInfoW.Call(hmon, uintptr(unsafe.Pointer(&mi)))
	if ok == 0 {
		return Rect{}, fmt.Errorf("GetMonitorInfoW: %w", err)
	}
	return fromWinRect(mi.rcWork), nil
}

func (systemDisplay) PrimaryWorkArea() Rect {
	var r windows.Rect
	ok, _, _ := procSystemParametersInfoW.Call(spiGetWorkArea, 0, uintptr(unsafe.Pointer(&r)), 0)
	if ok == 0 {
		return Rect{}
	}
	return fromWinRect(r)
}

func toWinRect(r Rect) windows.Rect {
	return windows.Rect{Left: int32(r.Left), Top: int32(r.Top), Right: int32(r.Right), Bottom: int32(r.Bottom)}
}

func fromWinRect(r windows.Rect) Rect {
	return Rect{Left: int(r.Left), Top: int(r.Top), Right: int(r.Right), Bottom: int(r.Bottom)}
}

//go:build !windows

package geometry

// SystemDisplay returns a single 1920x1080 monitor. Monitor work areas are
// only queried on Windows.
func SystemDisplay() Display {
	full := RectFromBounds(0, 0, 1920, 1080)
	return Layout{{Bounds: full, WorkArea: full, Primary: true}}
}

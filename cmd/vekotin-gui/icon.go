package main

import (
	_ "embed"

	"fyne.io/fyne/v2"
)

//go:embed assets/icon.svg
var iconSVG []byte

func appIcon() fyne.Resource {
	return fyne.NewStaticResource("icon.svg", iconSVG)
}

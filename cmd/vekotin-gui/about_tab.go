package main

import (
	"fmt"
	"net/url"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/vekotin/internal/licenses"
	"github.com/oukeidos/vekotin/internal/version"
)

const githubURL = "https://github.com/oukeidos/vekotin"

func buildAboutTab(w fyne.Window) fyne.CanvasObject {
	aboutSection := container.NewVBox(
		widget.NewLabelWithStyle("About", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("App", widget.NewLabel(version.AppName)),
			widget.NewFormItem("Version", widget.NewLabel(version.Version)),
			widget.NewFormItem("Commit", widget.NewLabel(version.Commit)),
			widget.NewFormItem("Build", widget.NewLabel(version.BuildDate)),
			widget.NewFormItem("Links", container.NewHBox(newHyperlink("GitHub", githubURL))),
		),
	)

	viewLicenseBtn := widget.NewButton("View LICENSE", func() {
		showEmbedded(w, "LICENSE", licenses.LicenseText())
	})
	viewNoticesBtn := widget.NewButton("View THIRD_PARTY_NOTICES", func() {
		showEmbedded(w, "Third-Party Notices", licenses.NoticesText())
	})

	licensesSection := container.NewVBox(
		widget.NewLabelWithStyle("Licenses", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(viewLicenseBtn, viewNoticesBtn),
	)

	return container.NewPadded(container.NewVScroll(container.NewVBox(
		aboutSection,
		widget.NewSeparator(),
		licensesSection,
	)))
}

func newHyperlink(label, raw string) *widget.Hyperlink {
	u, _ := url.Parse(raw)
	return widget.NewHyperlink(label, u)
}

func showEmbedded(w fyne.Window, title, text string) {
	if strings.TrimSpace(text) == "" {
		dialog.ShowError(fmt.Errorf("embedded %s is empty", title), w)
		return
	}
	showTextDialog(w, title, text)
}

func showTextDialog(w fyne.Window, title, text string) {
	entry := widget.NewMultiLineEntry()
	entry.SetText(text)
	entry.Wrapping = fyne.TextWrapWord
	lock := false
	entry.OnChanged = func(s string) {
		if lock || s == text {
			return
		}
		lock = true
		entry.SetText(text)
		lock = false
	}
	scroll := container.NewScroll(entry)
	scroll.SetMinSize(fyne.NewSize(640, 460))
	d := dialog.NewCustom(title, "Close", scroll, w)
	d.Resize(fyne.NewSize(680, 500))
	d.Show()
}

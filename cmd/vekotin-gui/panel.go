package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/vekotin/internal/apperrors"
	"github.com/oukeidos/vekotin/internal/config"
	"github.com/oukeidos/vekotin/internal/examples"
	"github.com/oukeidos/vekotin/internal/logger"
	"github.com/oukeidos/vekotin/internal/notify"
	"github.com/oukeidos/vekotin/internal/registry"
	"github.com/oukeidos/vekotin/internal/version"
	vwidget "github.com/oukeidos/vekotin/internal/widget"
)

// controlPanel lists the discovered widgets and edits their settings. All
// methods run on the fyne event loop.
type controlPanel struct {
	app    fyne.App
	window fyne.Window
	store  *config.Store
	host   *vwidget.Host
	log    *slog.Logger

	items     []registry.Item
	selected  int
	shownRoot string

	list      *widget.List
	rootLabel *widget.Label
	title     *widget.Label
	details   *widget.Label
	checks    map[vwidget.FlagName]*widget.Check
	toggleBtn *widget.Button

	// syncing is set while checkboxes are updated from the store so their
	// change handlers do not write the values back.
	syncing bool

	sub          *notify.Subscription
	shutdownOnce sync.Once
}

func newControlPanel(a fyne.App, w fyne.Window, store *config.Store, host *vwidget.Host) *controlPanel {
	p := &controlPanel{
		app:      a,
		window:   w,
		store:    store,
		host:     host,
		log:      logger.Component("panel"),
		selected: -1,
		checks:   make(map[vwidget.FlagName]*widget.Check, len(vwidget.FlagNames)),
	}
	p.sub = store.SubscribeFunc(p.configChanged)
	return p
}

func (p *controlPanel) build() fyne.CanvasObject {
	p.list = widget.NewList(
		func() int { return len(p.items) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i < 0 || i >= len(p.items) {
				return
			}
			o.(*widget.Label).SetText(p.itemLabel(p.items[i]))
		},
	)
	p.list.OnSelected = p.onSelected
	p.list.OnUnselected = func(widget.ListItemID) {
		p.selected = -1
		p.syncSelection()
	}

	p.rootLabel = widget.NewLabel("")
	p.rootLabel.Truncation = fyne.TextTruncateEllipsis
	changeRootBtn := widget.NewButton("Change folder", p.chooseRoot)
	refreshBtn := widget.NewButton("Refresh", p.refreshWidgets)
	examplesBtn := widget.NewButton("Install examples", p.installExamples)

	left := container.NewBorder(
		container.NewBorder(nil, nil, nil, changeRootBtn, p.rootLabel),
		container.NewHBox(refreshBtn, examplesBtn),
		nil, nil,
		p.list,
	)

	p.title = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	p.details = widget.NewLabel("")
	p.details.Wrapping = fyne.TextWrapWord

	checkBox := container.NewVBox()
	for _, n := range vwidget.FlagNames {
		c := widget.NewCheck(n.Label(), p.onCheck(n))
		p.checks[n] = c
		checkBox.Add(c)
	}

	p.toggleBtn = widget.NewButton("Load widget", p.toggleSelected)

	right := container.NewVBox(
		p.title,
		p.details,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Settings", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		checkBox,
		widget.NewSeparator(),
		p.toggleBtn,
	)

	split := container.NewHSplit(left, container.NewPadded(container.NewVScroll(right)))
	split.Offset = 0.4

	p.syncSelection()
	return container.NewAppTabs(
		container.NewTabItem("Widgets", split),
		container.NewTabItem("About", buildAboutTab(p.window)),
	)
}

func (p *controlPanel) itemLabel(it registry.Item) string {
	if p.host.IsOpen(it.ID()) {
		return it.Name + " (open)"
	}
	return it.Name
}

func (p *controlPanel) selectedItem() (registry.Item, bool) {
	if p.selected < 0 || p.selected >= len(p.items) {
		return registry.Item{}, false
	}
	return p.items[p.selected], true
}

// refreshWidgets rescans the widget folder and keeps the selection when the
// selected widget is still present.
func (p *controlPanel) refreshWidgets() {
	prev, hadPrev := p.selectedItem()
	items, err := p.host.Refresh()
	if err != nil {
		p.showError(err)
	}
	p.items = items
	p.shownRoot = p.store.WidgetRoot()
	p.selected = -1
	if hadPrev {
		for i, it := range items {
			if it.ID() == prev.ID() {
				p.selected = i
				break
			}
		}
	}

	if p.rootLabel != nil {
		p.rootLabel.SetText(p.shownRoot)
	}
	if p.list != nil {
		p.list.Refresh()
		if p.selected >= 0 {
			p.list.Select(p.selected)
		} else {
			p.list.UnselectAll()
		}
	}
	p.syncSelection()
	p.updateTray()
}

func (p *controlPanel) onSelected(id widget.ListItemID) {
	p.selected = id
	p.syncSelection()
}

// syncSelection shows the stored settings of the selected widget.
func (p *controlPanel) syncSelection() {
	if p.toggleBtn == nil {
		return
	}
	p.syncing = true
	defer func() { p.syncing = false }()

	item, ok := p.selectedItem()
	if !ok {
		p.title.SetText("No widget selected")
		p.details.SetText("")
		for _, c := range p.checks {
			c.SetChecked(false)
			c.Disable()
		}
		p.toggleBtn.SetText("Load widget")
		p.toggleBtn.Disable()
		return
	}

	_, flags, _ := p.host.Settings(item.ID())
	for _, n := range vwidget.FlagNames {
		c := p.checks[n]
		c.Enable()
		c.SetChecked(n.Resolved(flags))
	}

	p.title.SetText(item.Name)
	p.details.SetText(describeItem(item))
	p.toggleBtn.Enable()
	if p.host.IsOpen(item.ID()) {
		p.toggleBtn.SetText("Close widget")
		p.toggleBtn.Importance = widget.DangerImportance
	} else {
		p.toggleBtn.SetText("Load widget")
		p.toggleBtn.Importance = widget.HighImportance
	}
	p.toggleBtn.Refresh()
}

func describeItem(it registry.Item) string {
	m := it.Manifest
	var lines []string
	if m.Author != "" {
		lines = append(lines, "Author: "+m.Author)
	}
	if m.Version != "" {
		lines = append(lines, "Version: "+m.Version)
	}
	if m.Description != "" {
		lines = append(lines, m.Description)
	}
	lines = append(lines, fmt.Sprintf("Size: %d x %d", m.Width, m.Height))
	if len(m.Bridges) > 0 {
		lines = append(lines, "Bridges: "+strings.Join(m.Bridges, ", "))
	}
	if unknown := it.UnknownBridges(); len(unknown) > 0 {
		lines = append(lines, "Unknown bridges: "+strings.Join(unknown, ", "))
	}
	lines = append(lines, "Folder: "+it.Path)
	return strings.Join(lines, "\n")
}

func (p *controlPanel) onCheck(name vwidget.FlagName) func(bool) {
	return func(checked bool) {
		if p.syncing {
			return
		}
		item, ok := p.selectedItem()
		if !ok {
			return
		}
		if err := p.host.SetFlag(item.ID(), name, checked); err != nil {
			p.showError(err)
		}
	}
}

func (p *controlPanel) currentToggles() config.Flags {
	var f config.Flags
	for n, c := range p.checks {
		n.SetResolved(&f, c.Checked)
	}
	return f
}

// toggleSelected opens or closes the selected widget with the checkbox
// states shown in the panel.
func (p *controlPanel) toggleSelected() {
	item, ok := p.selectedItem()
	if !ok {
		return
	}
	if _, err := p.host.Toggle(item.ID(), p.currentToggles()); err != nil {
		p.showError(err)
	}
	p.afterWindowChange()
}

// trayToggle opens or closes id with its stored settings.
func (p *controlPanel) trayToggle(id string) {
	var err error
	if p.host.IsOpen(id) {
		err = p.host.Close(id)
	} else {
		_, err = p.host.Open(id)
	}
	if err != nil {
		p.showError(err)
	}
	p.afterWindowChange()
}

func (p *controlPanel) afterWindowChange() {
	if p.list != nil {
		p.list.Refresh()
	}
	p.syncSelection()
	p.updateTray()
}

func (p *controlPanel) configChanged(c config.Change) {
	switch c.Type {
	case config.Loaded, config.ExternalChange:
		if p.store.WidgetRoot() != p.shownRoot {
			p.refreshWidgets()
			return
		}
		p.syncSelection()
	}
}

func (p *controlPanel) chooseRoot() {
	d := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			p.showError(err)
			return
		}
		if uri == nil {
			return
		}
		p.setRoot(uri.Path())
	}, p.window)
	if loc, err := storage.ListerForURI(storage.NewFileURI(p.store.WidgetRoot())); err == nil {
		d.SetLocation(loc)
	}
	d.Show()
}

func (p *controlPanel) setRoot(path string) {
	if err := p.store.SetWidgetRoot(path); err != nil {
		p.showError(err)
		return
	}
	if err := p.store.Save(); err != nil {
		p.showError(err)
	}
	p.refreshWidgets()
}

func (p *controlPanel) installExamples() {
	installed, err := examples.Install(p.store.WidgetRoot())
	if err != nil {
		p.showError(err)
	}
	p.refreshWidgets()
	if len(installed) == 0 {
		if err == nil {
			dialog.ShowInformation("Examples", "The example widgets are already installed.", p.window)
		}
		return
	}
	dialog.ShowInformation("Examples", "Installed:\n"+strings.Join(installed, "\n"), p.window)
}

func (p *controlPanel) updateTray() {
	desk, ok := p.app.(desktop.App)
	if !ok {
		return
	}
	menuItems := make([]*fyne.MenuItem, 0, len(p.items)+5)
	for _, it := range p.items {
		id := it.ID()
		mi := fyne.NewMenuItem(it.Name, func() { p.trayToggle(id) })
		mi.Checked = p.host.IsOpen(id)
		menuItems = append(menuItems, mi)
	}
	if len(menuItems) > 0 {
		menuItems = append(menuItems, fyne.NewMenuItemSeparator())
	}
	quit := fyne.NewMenuItem("Quit", p.quit)
	quit.IsQuit = true
	menuItems = append(menuItems,
		fyne.NewMenuItem("Control panel", p.showWindow),
		fyne.NewMenuItem("Refresh widgets", p.refreshWidgets),
		fyne.NewMenuItemSeparator(),
		quit,
	)
	desk.SetSystemTrayMenu(fyne.NewMenu(version.AppName, menuItems...))
}

func (p *controlPanel) showWindow() {
	p.window.Show()
	p.window.RequestFocus()
}

func (p *controlPanel) quit() {
	p.shutdown()
	p.app.Quit()
}

// shutdown closes every widget window and keeps them active for the next
// start.
func (p *controlPanel) shutdown() {
	p.shutdownOnce.Do(func() {
		p.sub.Unsubscribe()
		if err := p.host.Shutdown(); err != nil {
			p.log.Warn("Failed to close widgets", "error", err)
		}
	})
}

func (p *controlPanel) showError(err error) {
	p.log.Error("Operation failed", "error", err)
	if p.window == nil {
		return
	}
	dialog.ShowError(errors.New(apperrors.PublicMessage(err)), p.window)
}

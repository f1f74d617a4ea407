package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/oukeidos/vekotin/internal/cleanup"
	"github.com/oukeidos/vekotin/internal/config"
	"github.com/oukeidos/vekotin/internal/examples"
	"github.com/oukeidos/vekotin/internal/logger"
	"github.com/oukeidos/vekotin/internal/version"
	vwidget "github.com/oukeidos/vekotin/internal/widget"
)

const appID = "io.github.oukeidos.vekotin"

// seedFirstRun installs the example widgets when the widget folder does not
// exist yet.
func seedFirstRun(root string) {
	if _, err := os.Stat(root); !errors.Is(err, fs.ErrNotExist) {
		return
	}
	if _, err := examples.Install(root); err != nil {
		logger.Warn("Failed to install example widgets", "root", root, "error", err)
	}
}

func main() {
	logger.Init(logger.LevelInfo, nil)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unrecovered GUI panic", "scope", "main", "panic", fmt.Sprint(r))
			_ = cleanup.RunAll()
			os.Exit(1)
		}
	}()

	a := app.NewWithID(appID)
	a.SetIcon(appIcon())

	dir, err := config.DefaultDir()
	if err != nil {
		logger.Error("Failed to resolve configuration folder", "error", err)
		os.Exit(1)
	}
	store, err := config.Open(dir, config.WithDispatcher(uiDispatcher("config.change")))
	if err != nil {
		logger.Error("Failed to open configuration", "dir", dir, "error", err)
		os.Exit(1)
	}
	cleanup.Register("config store", store.Close)

	host := vwidget.NewHost(store)
	seedFirstRun(store.WidgetRoot())

	w := a.NewWindow(version.AppName)
	w.SetIcon(appIcon())
	w.Resize(fyne.NewSize(760, 480))
	w.CenterOnScreen()

	panel := newControlPanel(a, w, store, host)
	w.SetContent(panel.build())
	panel.refreshWidgets()
	if opened, err := host.RestoreActive(); err != nil {
		logger.Warn("Some widgets could not be restored", "error", err)
	} else if len(opened) > 0 {
		logger.Info("Restored widgets", "count", len(opened))
	}
	panel.afterWindowChange()

	// With a tray the panel hides instead of quitting.
	if desk, ok := a.(desktop.App); ok {
		desk.SetSystemTrayIcon(appIcon())
		w.SetCloseIntercept(w.Hide)
	}

	a.Lifecycle().SetOnStopped(func() {
		panel.shutdown()
		if err := cleanup.RunAll(); err != nil {
			logger.Warn("Cleanup failed", "error", err)
		}
	})

	w.ShowAndRun()
}

package main

import (
	"fmt"

	"fyne.io/fyne/v2"

	"github.com/oukeidos/vekotin/internal/logger"
	"github.com/oukeidos/vekotin/internal/notify"
)

func withPanicGuard(scope string, onPanic func(any), fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered panic", "scope", scope, "panic", fmt.Sprint(r))
			if onPanic != nil {
				onPanic(r)
			}
		}
	}()
	fn()
}

func safeGo(scope string, fn func()) {
	go func() {
		withPanicGuard(scope, nil, fn)
	}()
}

func safeDo(scope string, fn func()) {
	withPanicGuard(scope+".dispatch", nil, func() {
		fyne.Do(func() {
			withPanicGuard(scope, nil, fn)
		})
	})
}

// uiDispatcher delivers store notifications on the fyne event loop.
func uiDispatcher(scope string) notify.Dispatcher {
	return notify.DispatcherFunc(func(fn func()) {
		safeDo(scope, fn)
	})
}

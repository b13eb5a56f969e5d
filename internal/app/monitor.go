package app

import (
	"log/slog"

	"github.com/samber/lo"
	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"
)

type screenRect struct {
	X, Y, Width, Height int
	Primary             bool
}

// secondaryOrigin returns the top-left corner that centers a w×h window on
// the first non-primary screen. ok is false with fewer than two screens.
func secondaryOrigin(screens []screenRect, w, h int) (x, y int, ok bool) {
	if len(screens) < 2 {
		return 0, 0, false
	}
	s, found := lo.Find(screens, func(s screenRect) bool { return !s.Primary })
	if !found {
		return 0, 0, false
	}
	return s.X + (s.Width-w)/2, s.Y + (s.Height-h)/2, true
}

// positioner is the part of application.Window placement needs.
type positioner interface {
	SetPosition(x, y int)
}

// placeOnSecondary moves win to the secondary monitor once the app has
// started. Before that Wails has enumerated no screens and ignores
// SetPosition, so the work is handed to onStarted.
func placeOnSecondary(onStarted func(func()), screens func() []screenRect, win positioner, w, h int) {
	onStarted(func() {
		all := screens()
		x, y, ok := secondaryOrigin(all, w, h)
		if !ok {
			slog.Debug("single screen, consumer window stays put", "screens", len(all))
			return
		}
		win.SetPosition(x, y)
		slog.Info("consumer window moved to secondary screen", "x", x, "y", y)
	})
}

// appStarted runs fn on the ApplicationStarted event.
func appStarted(app *application.App) func(func()) {
	return func(fn func()) {
		app.Event.OnApplicationEvent(events.Common.ApplicationStarted, func(*application.ApplicationEvent) {
			fn()
		})
	}
}

func appScreens(app *application.App) func() []screenRect {
	return func() []screenRect {
		return lo.Map(app.Screen.GetAll(), func(s *application.Screen, _ int) screenRect {
			return screenRect{
				X:       s.Bounds.X,
				Y:       s.Bounds.Y,
				Width:   s.Bounds.Width,
				Height:  s.Bounds.Height,
				Primary: s.IsPrimary,
			}
		})
	}
}

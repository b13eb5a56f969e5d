// Package clipboard copies the current cadence to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/wailsapp/wails/v3/pkg/application"

	"go.aimuz.me/tempo/internal/types"
)

var ErrNothingToCopy = errors.New("clipboard: no active cadence")

// CadenceText formats an active cadence as a single shareable line.
func CadenceText(v types.CadenceView) (string, error) {
	if v.Mode != types.ModeActive {
		return "", ErrNothingToCopy
	}
	return fmt.Sprintf("%s - AS: %s - %d BPM (%s per beat)", v.Name, v.AttackSpeedText, v.BPM, v.BeatCSS), nil
}

// SetText writes text to the system clipboard.
func SetText(app *application.App, text string) error {
	if app == nil {
		return errors.New("clipboard: no application")
	}
	if !app.Clipboard.SetText(text) {
		return errors.New("clipboard: write failed")
	}
	return nil
}

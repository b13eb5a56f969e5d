// Package app provides the core application service for Wails bindings.
package app

import "go.aimuz.me/tempo/internal/surface"

// Window names, re-exported for main.
const (
	SurfaceInGame  = surface.InGame
	SurfaceDesktop = surface.Desktop
	SurfaceSecond  = surface.Second
)

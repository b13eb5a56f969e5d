package settings

import (
	"math"

	"go.aimuz.me/tempo/internal/types"
)

// Ratios of every derived dimension to the size setting.
const (
	wrapRatio      = 2.0
	innerRingRatio = 1.25
	outerRingRatio = 1.6
	tickRatio      = 0.1
)

// LayoutFor derives all pixel dimensions from size. It is a pure function of
// size so a stored size reproduces the exact layout on startup.
func LayoutFor(size int) types.Layout {
	wrap := scale(size, wrapRatio)
	outer := scale(size, outerRingRatio)
	c := wrap / 2
	r := outer / 2

	return types.Layout{
		Orb:        size,
		Wrap:       wrap,
		InnerRing:  scale(size, innerRingRatio),
		OuterRing:  outer,
		TickLength: scale(size, tickRatio),
		Pivots: []types.TickPivot{
			{Direction: "n", X: c, Y: c - r},
			{Direction: "e", X: c + r, Y: c},
			{Direction: "s", X: c, Y: c + r},
			{Direction: "w", X: c - r, Y: c},
		},
	}
}

func scale(size int, ratio float64) int {
	return int(math.Round(float64(size) * ratio))
}

package app

import "testing"

func TestSecondaryOrigin(t *testing.T) {
	primary := screenRect{X: 0, Y: 0, Width: 1920, Height: 1080, Primary: true}
	right := screenRect{X: 1920, Y: 0, Width: 2560, Height: 1440}

	tests := []struct {
		name    string
		screens []screenRect
		wantX   int
		wantY   int
		wantOK  bool
	}{
		{"single screen", []screenRect{primary}, 0, 0, false},
		{"none", nil, 0, 0, false},
		{"secondary on the right", []screenRect{primary, right}, 1920 + (2560-400)/2, (1440 - 400) / 2, true},
		{"secondary listed first", []screenRect{right, primary}, 1920 + (2560-400)/2, (1440 - 400) / 2, true},
		{"no primary flag set", []screenRect{{Width: 800, Height: 600}, {X: -800, Width: 800, Height: 600}}, 200, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := secondaryOrigin(tt.screens, 400, 400)
			if ok != tt.wantOK || x != tt.wantX || y != tt.wantY {
				t.Errorf("secondaryOrigin = (%d, %d, %v), want (%d, %d, %v)", x, y, ok, tt.wantX, tt.wantY, tt.wantOK)
			}
		})
	}
}

type fakeWindow struct {
	moves [][2]int
}

func (f *fakeWindow) SetPosition(x, y int) {
	f.moves = append(f.moves, [2]int{x, y})
}

func TestPlaceOnSecondary_WaitsForStart(t *testing.T) {
	var started func()
	onStarted := func(fn func()) { started = fn }

	enumerated := false
	screens := func() []screenRect {
		enumerated = true
		return []screenRect{
			{Width: 1920, Height: 1080, Primary: true},
			{X: 1920, Width: 1920, Height: 1080},
		}
	}

	win := &fakeWindow{}
	placeOnSecondary(onStarted, screens, win, 420, 420)
	if enumerated || len(win.moves) != 0 {
		t.Fatal("placement ran before the app started")
	}
	if started == nil {
		t.Fatal("no start hook registered")
	}

	started()
	want := [2]int{1920 + (1920-420)/2, (1080 - 420) / 2}
	if len(win.moves) != 1 || win.moves[0] != want {
		t.Errorf("moves = %v, want [%v]", win.moves, want)
	}
}

func TestPlaceOnSecondary_SingleScreen(t *testing.T) {
	win := &fakeWindow{}
	placeOnSecondary(func(fn func()) { fn() }, func() []screenRect {
		return []screenRect{{Width: 1920, Height: 1080, Primary: true}}
	}, win, 420, 420)
	if len(win.moves) != 0 {
		t.Errorf("moved on a single screen: %v", win.moves)
	}
}

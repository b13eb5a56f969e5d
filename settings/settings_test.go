package settings

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"go.aimuz.me/tempo/internal/types"
	"go.aimuz.me/tempo/store"
)

func newKV(t *testing.T) *store.Store {
	t.Helper()
	kv, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestLoad_MissingUsesDefaults(t *testing.T) {
	s := New(newKV(t))
	if got := s.Load(); !reflect.DeepEqual(got, Defaults()) {
		t.Errorf("Load = %+v, want defaults", got)
	}
}

func TestLoad_CorruptUsesDefaults(t *testing.T) {
	kv := newKV(t)
	if err := kv.Set(Key, []byte("not json")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	s := New(kv)
	if got := s.Load(); !reflect.DeepEqual(got, Defaults()) {
		t.Errorf("Load = %+v, want defaults", got)
	}
	if data, _ := kv.Get(Key); string(data) != "not json" {
		t.Errorf("corrupt record was modified: %q", data)
	}
}

func TestLoad_PartialRecordKeepsDefaults(t *testing.T) {
	kv := newKV(t)
	if err := kv.Set(Key, []byte(`{"style":"radiate","size":9999,"color":{"core":"#ABCDEF","glow":"red"}}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got := New(kv).Load()
	d := Defaults()

	if got.Style != types.StyleRadiate {
		t.Errorf("Style = %q, want radiate", got.Style)
	}
	if got.Size != MaxSize {
		t.Errorf("Size = %d, want clamped %d", got.Size, MaxSize)
	}
	if got.Colors.Core != "#ABCDEF" {
		t.Errorf("Core = %q, want stored value kept", got.Colors.Core)
	}
	if got.Colors.Glow != d.Colors.Glow {
		t.Errorf("Glow = %q, want default %q", got.Colors.Glow, d.Colors.Glow)
	}
	if got.Intensity != d.Intensity {
		t.Errorf("Intensity = %d, want default %d", got.Intensity, d.Intensity)
	}
}

func TestApply_RoundTrip(t *testing.T) {
	kv := newKV(t)
	s := New(kv)
	s.Load()

	if _, err := s.ApplyStyle(types.StyleAnime); err != nil {
		t.Fatalf("ApplyStyle: %v", err)
	}
	colors := types.Colors{Core: "#112233", Glow: "#445566", Dim: "#778899"}
	if _, err := s.ApplyColors(colors); err != nil {
		t.Fatalf("ApplyColors: %v", err)
	}
	s.ApplySize(200)
	s.ApplyIntensity(150)
	s.ApplyAnimeImage(" https://example.com/a.png ")
	s.ApplyAnimeScale(120)
	s.ApplyAnimeOffsetX(-15)
	s.ApplyAnimeOffsetY(30)

	want := types.UserSettings{
		Style:         types.StyleAnime,
		Colors:        colors,
		Size:          200,
		Intensity:     150,
		AnimeImageURL: "https://example.com/a.png",
		AnimeScale:    120,
		AnimeOffsetX:  -15,
		AnimeOffsetY:  30,
	}

	// A fresh store over the same record sees every change.
	if got := New(kv).Load(); !reflect.DeepEqual(got, want) {
		t.Errorf("reloaded = %+v\nwant %+v", got, want)
	}
}

func TestLoad_KeepsStoredRecord(t *testing.T) {
	kv := newKV(t)
	want := Defaults()
	want.Colors = types.Colors{Core: "#FF4655", Glow: "#Ff8A95", Dim: "#3A0D12"}
	want.AnimeImageURL = "https://example.com/b.png"
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := kv.Set(Key, data); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if got := New(kv).Load(); !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %+v\nwant %+v", got, want)
	}
}

func TestApplyColors_Lowercases(t *testing.T) {
	s := New(newKV(t))
	s.Load()

	a, err := s.ApplyColors(types.Colors{Core: "#ABCDEF", Glow: "#00FF00", Dim: "#0a0B0c"})
	if err != nil {
		t.Fatalf("ApplyColors: %v", err)
	}
	want := types.Colors{Core: "#abcdef", Glow: "#00ff00", Dim: "#0a0b0c"}
	if a.Settings.Colors != want {
		t.Errorf("Colors = %+v, want %+v", a.Settings.Colors, want)
	}
}

func TestApply_ZeroClampsLikeSmall(t *testing.T) {
	s := New(newKV(t))
	s.Load()

	if zero, one := s.ApplySize(0).Settings.Size, s.ApplySize(1).Settings.Size; zero != one || zero != MinSize {
		t.Errorf("ApplySize(0) = %d, ApplySize(1) = %d, want both %d", zero, one, MinSize)
	}
	if got := s.ApplyAnimeScale(0).Settings.AnimeScale; got != MinAnimeScale {
		t.Errorf("ApplyAnimeScale(0) = %d, want %d", got, MinAnimeScale)
	}
}

func TestApply_Idempotent(t *testing.T) {
	kv := newKV(t)
	s := New(kv)
	s.Load()

	first := s.ApplySize(120)
	rec1, _ := kv.Get(Key)
	second := s.ApplySize(120)
	rec2, _ := kv.Get(Key)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("appearance changed on reapply: %+v vs %+v", first, second)
	}
	if string(rec1) != string(rec2) {
		t.Errorf("record changed on reapply: %s vs %s", rec1, rec2)
	}
}

func TestApply_RejectsInvalid(t *testing.T) {
	s := New(newKV(t))
	s.Load()

	if _, err := s.ApplyStyle("sparkle"); !errors.Is(err, ErrInvalidStyle) {
		t.Errorf("ApplyStyle err = %v, want ErrInvalidStyle", err)
	}
	if _, err := s.ApplyColors(types.Colors{Core: "#fff", Glow: "#000000", Dim: "#000000"}); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("ApplyColors err = %v, want ErrInvalidColor", err)
	}
	if got := s.Current(); !reflect.DeepEqual(got, Defaults()) {
		t.Errorf("rejected apply changed settings: %+v", got)
	}
}

func TestApply_Clamps(t *testing.T) {
	s := New(newKV(t))
	s.Load()

	tests := []struct {
		name  string
		apply func() types.Appearance
		field func(types.UserSettings) int
		want  int
	}{
		{"size low", func() types.Appearance { return s.ApplySize(1) }, func(u types.UserSettings) int { return u.Size }, MinSize},
		{"intensity high", func() types.Appearance { return s.ApplyIntensity(500) }, func(u types.UserSettings) int { return u.Intensity }, MaxIntensity},
		{"scale low", func() types.Appearance { return s.ApplyAnimeScale(-3) }, func(u types.UserSettings) int { return u.AnimeScale }, MinAnimeScale},
		{"offset x", func() types.Appearance { return s.ApplyAnimeOffsetX(5000) }, func(u types.UserSettings) int { return u.AnimeOffsetX }, MaxAnimeOffset},
		{"offset y", func() types.Appearance { return s.ApplyAnimeOffsetY(-5000) }, func(u types.UserSettings) int { return u.AnimeOffsetY }, -MaxAnimeOffset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field(tt.apply().Settings); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppearanceOf(t *testing.T) {
	u := Defaults()
	u.Style = types.StyleAnime
	u.Intensity = 50

	a := AppearanceOf(u)
	if !a.AnimePanel {
		t.Error("anime panel hidden for anime style")
	}
	if a.Opacity != 0.5 {
		t.Errorf("Opacity = %v, want 0.5", a.Opacity)
	}

	u.Style = types.StyleOrb
	if AppearanceOf(u).AnimePanel {
		t.Error("anime panel visible for orb style")
	}
}

func TestLayoutFor(t *testing.T) {
	tests := []struct {
		size                     int
		wrap, inner, outer, tick int
	}{
		{160, 320, 200, 256, 16},
		{80, 160, 100, 128, 8},
		{40, 80, 50, 64, 4},
	}
	for _, tt := range tests {
		l := LayoutFor(tt.size)
		if l.Orb != tt.size || l.Wrap != tt.wrap || l.InnerRing != tt.inner || l.OuterRing != tt.outer || l.TickLength != tt.tick {
			t.Errorf("LayoutFor(%d) = %+v", tt.size, l)
		}
	}

	pivots := LayoutFor(160).Pivots
	want := []types.TickPivot{
		{Direction: "n", X: 160, Y: 32},
		{Direction: "e", X: 288, Y: 160},
		{Direction: "s", X: 160, Y: 288},
		{Direction: "w", X: 32, Y: 160},
	}
	if !reflect.DeepEqual(pivots, want) {
		t.Errorf("Pivots = %+v, want %+v", pivots, want)
	}
}

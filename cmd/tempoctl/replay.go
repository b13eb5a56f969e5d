package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go.aimuz.me/tempo/champion"
	"go.aimuz.me/tempo/channel"
	"go.aimuz.me/tempo/internal/logging"
	"go.aimuz.me/tempo/internal/surface"
	"go.aimuz.me/tempo/internal/tui"
	"go.aimuz.me/tempo/internal/types"
	"go.aimuz.me/tempo/settings"
	"go.aimuz.me/tempo/store"
	"go.aimuz.me/tempo/telemetry"
)

// drainDelay lets the metronome render the last write before exit.
const drainDelay = 300 * time.Millisecond

func newReplayCmd() *cobra.Command {
	var (
		surfaceName string
		speed       float64
		useTUI      bool
	)

	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Feed a recorded JSONL session through a producer and the metronome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if surfaceName != surface.InGame && surfaceName != surface.Desktop {
				return fmt.Errorf("invalid --surface %q (want %s or %s)", surfaceName, surface.InGame, surface.Desktop)
			}
			return runReplay(cmd, args[0], surfaceName, speed, useTUI)
		},
	}

	cmd.Flags().StringVar(&surfaceName, "surface", surface.InGame, "producer to feed: in_game or desktop")
	cmd.Flags().Float64Var(&speed, "speed", 1, "playback speed; 0 ignores recorded delays")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "show the terminal metronome")
	return cmd
}

func runReplay(cmd *cobra.Command, path, surfaceName string, speed float64, useTUI bool) error {
	replay, f, err := telemetry.OpenReplay(path, speed)
	if err != nil {
		return err
	}
	defer f.Close()

	kv, err := store.OpenInMemory()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer kv.Close()

	st := settings.New(kv)
	st.Load()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var p *tea.Program
	emit := textEmitter(cmd.OutOrStdout())
	if useTUI {
		// Log output would tear the alternate screen.
		logging.Setup(io.Discard, cfg.SlogLevel())
		emit = func(name string, data any) {
			if p != nil {
				tuiEmit(p, data)
			}
		}
	}

	producer, err := newProducer(ctx, surfaceName, kv, emit)
	if err != nil {
		return err
	}
	metronome := surface.NewMetronome(channel.New(kv), st, emit)
	if useTUI {
		p = tea.NewProgram(tui.New(metronome.Render()), tea.WithAltScreen())
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return metronome.Run(ctx)
	})
	g.Go(func() error {
		select {
		case <-metronome.Ready():
		case <-ctx.Done():
			return nil
		}
		err := replay.Run(ctx, producer)
		if p != nil {
			p.Send(tui.DoneMsg{Err: err})
			return err
		}
		time.Sleep(drainDelay)
		cancel()
		return err
	})

	if p != nil {
		_, runErr := p.Run()
		cancel()
		if err := g.Wait(); err != nil {
			return err
		}
		return runErr
	}
	return g.Wait()
}

func newProducer(ctx context.Context, surfaceName string, kv *store.Store, emit surface.EmitFunc) (*surface.Producer, error) {
	if surfaceName == surface.InGame {
		return surface.NewInGameProducer(channel.New(kv), cfg.Epsilon, emit), nil
	}

	table := &champion.Table{}
	champion.NewLoader(champion.LoaderConfig{
		BaseURL: cfg.DDragonURL,
		Locale:  cfg.Locale,
	}).Load(ctx, table)
	if table.Len() == 0 {
		return nil, fmt.Errorf("champion table unavailable; lobby replay needs Data Dragon")
	}
	return surface.NewLobbyProducer(channel.New(kv), table, cfg.Epsilon, emit), nil
}

func tuiEmit(p *tea.Program, data any) {
	switch v := data.(type) {
	case types.RenderState:
		p.Send(tui.RenderMsg(v))
	case types.LogLine:
		p.Send(tui.LogMsg(v))
	}
}

func textEmitter(w io.Writer) surface.EmitFunc {
	var mu sync.Mutex
	return func(name string, data any) {
		mu.Lock()
		defer mu.Unlock()

		switch v := data.(type) {
		case types.RenderState:
			c := v.Cadence
			if c.Mode != types.ModeActive {
				fmt.Fprintln(w, "render  waiting")
				return
			}
			fmt.Fprintf(w, "render  %s  AS %s  %d bpm  beat %s\n", c.Name, c.AttackSpeedText, c.BPM, c.BeatCSS)
		case types.DisplayLine:
			fmt.Fprintf(w, "display %q\n", v.Text)
		case types.LogLine:
			mark := " "
			if v.Highlight {
				mark = "*"
			}
			fmt.Fprintf(w, "log    %s %s\n", mark, v.Text)
		}
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TEMPO_DATA_DIR", dir)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--config", filepath.Join(dir, "config.toml")))
	err := cmd.Execute()
	return out.String(), err
}

func TestCadenceCmd(t *testing.T) {
	out, err := execute(t, "cadence", "0.7")
	if err != nil {
		t.Fatalf("cadence: %v", err)
	}
	if !strings.Contains(out, "bpm          42") || !strings.Contains(out, "1.4285714285714286s") {
		t.Errorf("output = %q", out)
	}

	if _, err := execute(t, "cadence", "0"); err == nil {
		t.Error("cadence 0 succeeded")
	}
	if _, err := execute(t, "cadence", "fast"); err == nil {
		t.Error("cadence with a non-number succeeded")
	}
}

func TestConfigInit(t *testing.T) {
	out, err := execute(t, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	path := strings.TrimSpace(out)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if !strings.Contains(string(data), "locale") {
		t.Errorf("config file = %q", data)
	}
}

func TestReplayCmd(t *testing.T) {
	recording := filepath.Join(t.TempDir(), "session.jsonl")
	lines := strings.Join([]string{
		`{"info":{"live_client_data":{"active_player":"{\"summonerName\":\"Faker\",\"championStats\":{\"attackSpeed\":0.7}}"}}}`,
		`{"events":[{"name":"kill"}]}`,
	}, "\n")
	if err := os.WriteFile(recording, []byte(lines), 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}

	out, err := execute(t, "replay", recording, "--speed", "0")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !strings.Contains(out, "render  waiting") {
		t.Errorf("missing initial render:\n%s", out)
	}
	if !strings.Contains(out, `log    * [{"name":"kill"}]`) {
		t.Errorf("missing highlighted event line:\n%s", out)
	}

	if _, err := execute(t, "replay", recording, "--surface", "bogus"); err == nil {
		t.Error("replay accepted an unknown surface")
	}
}

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JeanRibes/sequencer/sequencer"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sequencer.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissing(t *testing.T) {
	c, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	opts := c.Options(nil)
	if opts.Tempo != 1000 || opts.Variant != sequencer.VariantGrid || opts.NoLoadbang {
		t.Errorf("unexpected defaults %+v", opts)
	}
	if m := c.Mapping(); m.Notes != [4]uint8{36, 38, 42, 39} || m.Gate != 100*time.Millisecond {
		t.Errorf("unexpected mapping %+v", m)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
tempo: 250
variant: cycle
no_loadbang: true
midi:
  channel: 3
  notes: [60, 61, 62, 63]
  gate_ms: 40
  controllers:
    button_base: 0
    tempo: 74
osc:
  listen: ":9000"
serial:
  port: /dev/ttyACM0
`)
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	opts := c.Options(nil)
	if opts.Tempo != 250 || opts.Variant != sequencer.VariantCycle || !opts.NoLoadbang {
		t.Errorf("options %+v", opts)
	}
	m := c.Mapping()
	if m.Channel != 3 || m.Notes != [4]uint8{60, 61, 62, 63} || m.Gate != 40*time.Millisecond || m.PassThroughCC != 20 {
		t.Errorf("mapping %+v", m)
	}
	ctl := c.Controls()
	if ctl.ButtonBase != 0 || ctl.TempoCC != 74 || ctl.InstrumentCC != 2 {
		t.Errorf("controls %+v", ctl)
	}
	if c.OSC.Listen != ":9000" || c.Serial.Port != "/dev/ttyACM0" || c.Serial.Baud != 115200 {
		t.Errorf("hosts %+v %+v", c.OSC, c.Serial)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	bad := []string{
		"variant: both\n",
		"midi:\n  notes: [1, 2]\n",
		"midi:\n  notes: [1, 2, 3, 200]\n",
		"midi:\n  channel: 16\n",
		"midi:\n  feedback_channel: 14\n",
		"midi:\n  controllers:\n    tempo: 128\n",
		"tempo: [\n",
	}
	for _, body := range bad {
		if _, err := LoadConfig(writeConfig(t, body)); err == nil {
			t.Errorf("%q: expected error", body)
		}
	}
}

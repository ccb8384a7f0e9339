package main

import (
	"os"
	"time"

	"github.com/JeanRibes/sequencer/music"
	"github.com/JeanRibes/sequencer/sequencer"
	"github.com/JeanRibes/sequencer/shared"
	charmlog "github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Tempo      float64 `yaml:"tempo"`
	Variant    string  `yaml:"variant"`
	NoLoadbang bool    `yaml:"no_loadbang"`
	MIDI       struct {
		Input           string           `yaml:"input"`
		Output          string           `yaml:"output"`
		Channel         uint8            `yaml:"channel"`
		FeedbackChannel uint8            `yaml:"feedback_channel"`
		Notes           []uint8          `yaml:"notes"`
		Velocity        uint8            `yaml:"velocity"`
		GateMS          int              `yaml:"gate_ms"`
		Controllers     map[string]uint8 `yaml:"controllers"`
	} `yaml:"midi"`
	OSC struct {
		Listen string `yaml:"listen"`
		Reply  string `yaml:"reply"`
	} `yaml:"osc"`
	Serial struct {
		Port   string `yaml:"port"`
		Baud   int    `yaml:"baud"`
		Keymap string `yaml:"keymap"`
	} `yaml:"serial"`
}

func DefaultConfig() Config {
	var c Config
	c.Tempo = sequencer.DefaultTempo
	c.Variant = sequencer.VariantGrid.String()
	m := music.DefaultMapping()
	ctl := music.DefaultControls()
	c.MIDI.Input = "sequencer"
	c.MIDI.Output = "sequencer"
	c.MIDI.Channel = m.Channel
	c.MIDI.FeedbackChannel = m.FeedbackChannel
	c.MIDI.Notes = m.Notes[:]
	c.MIDI.Velocity = m.Velocity
	c.MIDI.GateMS = int(m.Gate / time.Millisecond)
	c.MIDI.Controllers = map[string]uint8{
		"button_base":  ctl.ButtonBase,
		"tempo":        ctl.TempoCC,
		"instrument":   ctl.InstrumentCC,
		"pass_through": m.PassThroughCC,
	}
	c.Serial.Baud = 115200
	return c
}

// LoadConfig reads a YAML file over the defaults. A missing file is not an
// error.
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "parse %s", filename)
	}
	return config, config.Validate()
}

func (c Config) Validate() error {
	if _, err := sequencer.ParseVariant(c.Variant); err != nil {
		return err
	}
	if len(c.MIDI.Notes) != shared.NumInstruments {
		return errors.Errorf("midi.notes: need %d notes, got %d", shared.NumInstruments, len(c.MIDI.Notes))
	}
	for _, n := range c.MIDI.Notes {
		if n > 127 {
			return errors.Errorf("midi.notes: %d is not a MIDI note", n)
		}
	}
	if c.MIDI.Channel > 15 {
		return errors.Errorf("midi.channel: %d out of range", c.MIDI.Channel)
	}
	// feedback uses three consecutive channels
	if c.MIDI.FeedbackChannel > 13 {
		return errors.Errorf("midi.feedback_channel: %d out of range", c.MIDI.FeedbackChannel)
	}
	for name, v := range c.MIDI.Controllers {
		if v > 127 {
			return errors.Errorf("midi.controllers.%s: %d out of range", name, v)
		}
	}
	return nil
}

func (c Config) Options(logger *charmlog.Logger) sequencer.Options {
	variant, _ := sequencer.ParseVariant(c.Variant)
	return sequencer.Options{
		Tempo:      c.Tempo,
		Variant:    variant,
		NoLoadbang: c.NoLoadbang,
		Logger:     logger,
	}
}

func (c Config) Mapping() music.Mapping {
	m := music.DefaultMapping()
	m.Channel = c.MIDI.Channel
	m.FeedbackChannel = c.MIDI.FeedbackChannel
	copy(m.Notes[:], c.MIDI.Notes)
	m.Velocity = c.MIDI.Velocity
	m.Gate = time.Duration(c.MIDI.GateMS) * time.Millisecond
	if v, ok := c.MIDI.Controllers["pass_through"]; ok {
		m.PassThroughCC = v
	}
	return m
}

func (c Config) Controls() music.Controls {
	ctl := music.DefaultControls()
	if v, ok := c.MIDI.Controllers["button_base"]; ok {
		ctl.ButtonBase = v
	}
	if v, ok := c.MIDI.Controllers["tempo"]; ok {
		ctl.TempoCC = v
	}
	if v, ok := c.MIDI.Controllers["instrument"]; ok {
		ctl.InstrumentCC = v
	}
	return ctl
}

package music

import (
	"context"
	"io"

	. "github.com/JeanRibes/sequencer/shared"

	charmlog "github.com/charmbracelet/log"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Controls maps controller input onto sequencer commands.
type Controls struct {
	ButtonBase   uint8 // note of the first step pad
	TempoCC      uint8
	InstrumentCC uint8
}

func DefaultControls() Controls {
	return Controls{
		ButtonBase:   36,
		TempoCC:      1,
		InstrumentCC: 2,
	}
}

// TempoFromCC spreads a controller value over 60..1330 ms per beat.
func TempoFromCC(value uint8) float64 {
	return 60 + float64(value)*10
}

func (c Controls) Decode(msg midi.Message) (Message, bool) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		if vel == 0 || key < c.ButtonBase || int(key) >= int(c.ButtonBase)+NumSteps {
			return Message{}, false
		}
		return Message{Type: Button, Number: float64(key - c.ButtonBase), HasNumber: true}, true
	case msg.GetControlChange(&ch, &key, &vel):
		switch key {
		case c.TempoCC:
			return Message{Type: Tempo, Number: TempoFromCC(vel), HasNumber: true}, true
		case c.InstrumentCC:
			return Message{Type: SwitchInstrument, Number: float64(vel), HasNumber: true}, true
		}
	}
	return Message{}, false
}

// Listen forwards decoded controller input to commands until stop is called.
// Input arriving after ctx is done is dropped.
func Listen(ctx context.Context, in drivers.In, c Controls, commands chan<- Message, logger *charmlog.Logger) (stop func(), err error) {
	if logger == nil {
		logger = charmlog.New(io.Discard)
	}
	logger.Info("listening to", "input", in.String())
	return midi.ListenTo(in, c.forward(ctx, commands, logger))
}

func (c Controls) forward(ctx context.Context, commands chan<- Message, logger *charmlog.Logger) func(midi.Message, int32) {
	return func(msg midi.Message, absms int32) {
		cmd, ok := c.Decode(msg)
		if !ok {
			logger.Debug("ignored", "msg", msg.String())
			return
		}
		select {
		case commands <- cmd:
		case <-ctx.Done():
			logger.Debug("dropped", "cmd", cmd.Type)
		}
	}
}

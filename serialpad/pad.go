// Package serialpad drives a 16 button LED pad over a serial line. Both
// directions use two byte frames: a code and a value.
package serialpad

import (
	"context"
	"io"

	"github.com/JeanRibes/sequencer/sequencer"
	"github.com/JeanRibes/sequencer/shared"
	charmlog "github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// Input codes besides the step buttons (0..15) and instrument selectors
// (200..203).
const (
	CodeLoadbang = 253
	CodeSwitch   = 254 // switch-instrument without argument: cycles in VariantCycle, selects 0 in VariantGrid
	CodeTempo    = 255 // value is tempo in tens of milliseconds
)

func Decode(code, value byte) (shared.Message, bool) {
	switch {
	case code < shared.NumSteps:
		if value == 0 {
			return shared.Message{}, false
		}
		return shared.Message{Type: shared.Button, Number: float64(code), HasNumber: true}, true
	case code >= sequencer.InstrumentCodeOffset && code < sequencer.InstrumentCodeOffset+shared.NumInstruments:
		if value == 0 {
			return shared.Message{}, false
		}
		return shared.Message{Type: shared.SwitchInstrument, Number: float64(code - sequencer.InstrumentCodeOffset), HasNumber: true}, true
	case code == CodeLoadbang:
		return shared.Message{Type: shared.Loadbang}, true
	case code == CodeSwitch:
		return shared.Message{Type: shared.SwitchInstrument}, true
	case code == CodeTempo:
		if value == 0 {
			return shared.Message{}, false
		}
		return shared.Message{Type: shared.Tempo, Number: float64(value) * 10, HasNumber: true}, true
	}
	return shared.Message{}, false
}

// Read decodes frames from r and posts them to commands until r is
// exhausted or ctx is done. A nil keymap leaves codes untouched.
func Read(ctx context.Context, r io.Reader, keymap Keymap, commands chan<- shared.Message, logger *charmlog.Logger) error {
	buf := make([]byte, 2)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "read pad frame")
		}
		msg, ok := Decode(keymap.Code(buf[0]), buf[1])
		if !ok {
			logger.Debug("unassigned", "code", buf[0], "value", buf[1])
			continue
		}
		select {
		case commands <- msg:
		case <-ctx.Done():
			return nil
		}
	}
}

// Sink lights the pad LEDs. Triggers are not sent to the pad.
type Sink struct {
	w      io.Writer
	logger *charmlog.Logger
}

func NewSink(w io.Writer, logger *charmlog.Logger) *Sink {
	return &Sink{w: w, logger: logger}
}

func (s *Sink) Emit(ev sequencer.Event) {
	if ev.Channel() != sequencer.IndicatorChannel {
		return
	}
	var v byte
	if ev.On {
		v = 1
	}
	if _, err := s.w.Write([]byte{byte(ev.Code()), v}); err != nil {
		s.logger.Error("write pad frame", "event", ev.String(), "err", err)
	}
}

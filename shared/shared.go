package shared

import (
	"fmt"

	"github.com/pkg/errors"
)

type Event int

const (
	Quit Event = iota
	Tempo
	Button
	SwitchInstrument
	Loadbang
)

func (e Event) String() string {
	switch e {
	case Quit:
		return "quit"
	case Tempo:
		return "tempo"
	case Button:
		return "button"
	case SwitchInstrument:
		return "switch-instrument"
	case Loadbang:
		return "loadbang"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Message is what hosts post to the sequencer loop. HasNumber is false when
// the command was sent without its optional argument.
type Message struct {
	Type      Event
	Number    float64
	HasNumber bool
}

const (
	NumSteps       = 16
	NumInstruments = 4
)

func InstrumentName(instrument int) string {
	switch instrument {
	case 0:
		return "kick"
	case 1:
		return "snare"
	case 2:
		return "hihat"
	case 3:
		return "clap"
	default:
		return fmt.Sprintf("instrument %d", instrument)
	}
}

// ParseCommand builds a Message from a host command name and at most one
// numeric argument.
func ParseCommand(name string, args ...float64) (Message, error) {
	var msg Message
	switch name {
	case "tempo":
		msg.Type = Tempo
	case "button":
		msg.Type = Button
	case "switch-instrument":
		msg.Type = SwitchInstrument
	case "loadbang":
		msg.Type = Loadbang
	case "quit":
		msg.Type = Quit
	default:
		return msg, errors.Errorf("unknown command %q", name)
	}
	switch {
	case len(args) > 1:
		return msg, errors.Errorf("%s: expected at most 1 argument, got %d", name, len(args))
	case len(args) == 1:
		if msg.Type == Loadbang || msg.Type == Quit {
			return msg, errors.Errorf("%s takes no argument", name)
		}
		msg.Number = args[0]
		msg.HasNumber = true
	}
	return msg, nil
}

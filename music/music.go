package music

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/JeanRibes/sequencer/sequencer"
	. "github.com/JeanRibes/sequencer/shared"

	charmlog "github.com/charmbracelet/log"
	"gitlab.com/gomidi/midi/v2"
)

var ErrQueueFull = errors.New("midi send queue full")

// Mapping says where sequencer events go on the MIDI side.
type Mapping struct {
	Channel  uint8                 // triggers
	Notes    [NumInstruments]uint8 // one drum note per instrument
	Velocity uint8
	Gate     time.Duration // time between trigger note on and note off
	// FeedbackChannel carries step LEDs, the next channel beat LEDs and
	// the one after instrument LEDs.
	FeedbackChannel uint8
	PassThroughCC   uint8
}

func DefaultMapping() Mapping {
	return Mapping{
		Channel:         9,
		Notes:           [NumInstruments]uint8{36, 38, 42, 39},
		Velocity:        100,
		Gate:            100 * time.Millisecond,
		FeedbackChannel: 0,
		PassThroughCC:   20,
	}
}

// Bridge is a sequencer.Sink that plays triggers and lights controller LEDs.
type Bridge struct {
	mapping Mapping
	send    func(midi.Message) error
	logger  *charmlog.Logger
	after   func(time.Duration, func())
}

func NewBridge(send func(midi.Message) error, mapping Mapping, logger *charmlog.Logger) *Bridge {
	if logger == nil {
		logger = charmlog.New(io.Discard)
	}
	return &Bridge{
		mapping: mapping,
		send:    send,
		logger:  logger,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

func velocity(on bool) uint8 {
	if on {
		return 127
	}
	return 0
}

func clamp7(f float64) uint8 {
	switch {
	case f != f, f < 0:
		return 0
	case f > 127:
		return 127
	}
	return uint8(f)
}

// Messages translates an event into what is sent right away.
func (b *Bridge) Messages(ev sequencer.Event) []midi.Message {
	m := b.mapping
	switch ev.Kind {
	case sequencer.Trigger:
		return []midi.Message{midi.NoteOn(m.Channel, m.Notes[ev.Index%NumInstruments], m.Velocity)}
	case sequencer.PassThrough:
		return []midi.Message{midi.ControlChange(m.Channel, m.PassThroughCC, clamp7(ev.Raw))}
	case sequencer.StepToggled, sequencer.StepIndicator:
		return []midi.Message{midi.NoteOn(m.FeedbackChannel, uint8(ev.Index), velocity(ev.On))}
	case sequencer.BeatIndicator:
		return []midi.Message{midi.NoteOn(m.FeedbackChannel+1, uint8(ev.Index), velocity(ev.On))}
	case sequencer.InstrumentIndicator:
		return []midi.Message{midi.NoteOn(m.FeedbackChannel+2, uint8(ev.Index), velocity(ev.On))}
	}
	return nil
}

func (b *Bridge) Emit(ev sequencer.Event) {
	for _, msg := range b.Messages(ev) {
		if err := b.send(msg); err != nil {
			b.logger.Error("send", "event", ev.Kind, "err", err)
		}
	}
	if ev.Kind == sequencer.Trigger {
		off := midi.NoteOff(b.mapping.Channel, b.mapping.Notes[ev.Index%NumInstruments])
		b.after(b.mapping.Gate, func() {
			if err := b.send(off); err != nil {
				b.logger.Error("send note off", "err", err)
			}
		})
	}
}

// Queue puts a goroutine between callers and send so that a slow MIDI port
// never holds up the sequencer loop. Messages are dropped when the queue is
// full.
func Queue(ctx context.Context, send func(midi.Message) error, size int, logger *charmlog.Logger) func(midi.Message) error {
	queue := make(chan midi.Message, size)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-queue:
				if err := send(msg); err != nil {
					logger.Error(err)
				}
			}
		}
	}()

	return func(m midi.Message) error {
		select {
		case queue <- m:
			return nil
		default:
			return ErrQueueFull
		}
	}
}

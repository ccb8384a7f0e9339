package sequencer

import (
	"context"

	"github.com/JeanRibes/sequencer/shared"
	charmlog "github.com/charmbracelet/log"
)

// Dispatch applies one host command to the engine.
func Dispatch(engine *Engine, msg shared.Message) error {
	switch msg.Type {
	case shared.Tempo:
		return engine.SetTempo(msg.Number)
	case shared.Button:
		engine.Button(msg.Number)
	case shared.SwitchInstrument:
		if engine.Variant() == VariantCycle {
			engine.CycleInstrument()
		} else {
			// a missing argument reads as 0
			engine.SwitchInstrument(truncate(msg.Number))
		}
	case shared.Loadbang:
		engine.Loadbang()
	}
	return nil
}

// Run owns the engine: expired ticks and host commands are handled one at a
// time on the calling goroutine. It returns when ctx is done, a Quit
// message arrives or commands is closed, and always closes the engine.
func Run(ctx context.Context, engine *Engine, fired <-chan func(), commands <-chan shared.Message, logger *charmlog.Logger) error {
	defer engine.Close()
	logger.Info("start", "tempo", engine.Tempo(), "variant", engine.Variant())
	for {
		select {
		case <-ctx.Done():
			logger.Debug("context Done")
			return nil
		case fn := <-fired:
			fn()
			if err := engine.Err(); err != nil {
				logger.Error("tick failed", "err", err)
				return err
			}
		case msg, ok := <-commands:
			if !ok {
				logger.Debug("command channel closed")
				return nil
			}
			if msg.Type == shared.Quit {
				logger.Info("stop")
				return nil
			}
			logger.Debug("command", "type", msg.Type, "number", msg.Number, "has_number", msg.HasNumber)
			if err := Dispatch(engine, msg); err != nil {
				logger.Error(msg.Type.String()+" failed", "err", err)
				return err
			}
		}
	}
}

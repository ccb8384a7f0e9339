package main

import (
	"context"
	"os"

	"github.com/JeanRibes/sequencer/serialpad"
	"github.com/JeanRibes/sequencer/shared"
	charmlog "github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// openPad opens the button pad. The name "auto" picks the first port found.
func openPad(ctx context.Context, name string, baud int, keymapFile string, commands chan<- shared.Message, logger *charmlog.Logger) (*serialpad.Sink, func() error, error) {
	var keymap serialpad.Keymap
	if keymapFile != "" {
		f, err := os.Open(keymapFile)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open keymap")
		}
		keymap, err = serialpad.LoadKeymap(f)
		f.Close()
		if err != nil {
			return nil, nil, err
		}
	}
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, nil, errors.Wrap(err, "list serial ports")
	}
	for _, port := range ports {
		logger.Debug("found", "port", port)
	}
	if name == "auto" {
		if len(ports) == 0 {
			return nil, nil, errors.New("no serial ports found")
		}
		name = ports[0]
	}
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", name)
	}
	if err := port.ResetInputBuffer(); err != nil {
		logger.Warn("reset input buffer", "err", err)
	}
	logger.Info("connected", "port", name, "baud", baud)
	go func() {
		if err := serialpad.Read(ctx, port, keymap, commands, logger); err != nil {
			logger.Error(err)
		}
	}()
	return serialpad.NewSink(port, logger), port.Close, nil
}

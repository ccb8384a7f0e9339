package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/JeanRibes/sequencer/music"
	"github.com/JeanRibes/sequencer/oscctl"
	"github.com/JeanRibes/sequencer/sequencer"
	"github.com/JeanRibes/sequencer/shared"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

func main() {
	configFile := flag.String("config", "sequencer.yaml", "config file")
	inPort := flag.String("input", "", "MIDI input port name (overrides config)")
	outPort := flag.String("output", "", "MIDI output port name (overrides config)")
	oscListen := flag.String("osc", "", "OSC listen address, e.g. :9000 (overrides config)")
	oscReply := flag.String("osc-reply", "", "address OSC events are sent to (overrides config)")
	serialPort := flag.String("serial", "", "serial port of the button pad, or 'auto' (overrides config)")
	recordFile := flag.String("record", "", "write played triggers to this MIDI file on exit")
	quantize := flag.Bool("quantize", false, "quantize the recording")
	flag.BoolVar(&debug, "debug", false, "debug logging")
	flag.Parse()

	logger := newLogger("main")
	config, err := LoadConfig(*configFile)
	if err != nil {
		logger.Fatal("config", "err", err)
	}
	override(&config.MIDI.Input, *inPort)
	override(&config.MIDI.Output, *outPort)
	override(&config.OSC.Listen, *oscListen)
	override(&config.OSC.Reply, *oscReply)
	override(&config.Serial.Port, *serialPort)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	commands := make(chan shared.Message, 64)
	sinks := []sequencer.Sink{}
	closers := []func() error{}

	// serial and UDP writes block; they are fed from their own goroutine
	var drains sync.WaitGroup
	queues := map[string]*sequencer.ChanSink{}
	async := func(name string, sink sequencer.Sink) sequencer.Sink {
		q := sequencer.NewChanSink(256)
		queues[name] = q
		drains.Add(1)
		go func() {
			defer drains.Done()
			q.Drain(ctx, sink)
		}()
		return q
	}

	defer midi.CloseDriver()
	drv := drivers.Get().(*rtmididrv.Driver)
	out, err := midi.FindOutPort(config.MIDI.Output)
	if err != nil {
		logger.Info("can't find output, opening one", "name", config.MIDI.Output)
		out, err = drv.OpenVirtualOut("sequencer")
		if err != nil {
			logger.Fatal("midi output", "err", err)
		}
	}
	logger.Info("output", "port", out.String())
	send, err := midi.SendTo(out)
	if err != nil {
		logger.Fatal("midi output", "err", err)
	}
	midiLogger := newLogger("midi")
	sinks = append(sinks, music.NewBridge(music.Queue(ctx, send, 256, midiLogger), config.Mapping(), midiLogger))

	in, err := midi.FindInPort(config.MIDI.Input)
	if err != nil {
		logger.Info("can't find input, opening one", "name", config.MIDI.Input)
		in, err = drv.OpenVirtualIn("sequencer")
		if err != nil {
			logger.Fatal("midi input", "err", err)
		}
	}
	stop, err := music.Listen(ctx, in, config.Controls(), commands, midiLogger)
	if err != nil {
		logger.Fatal("midi input", "err", err)
	}
	defer stop()

	if config.OSC.Listen != "" {
		srv := oscctl.NewServer(commands, ctx.Done(), newLogger("osc"))
		go func() {
			if err := srv.Serve(ctx, config.OSC.Listen); err != nil {
				logger.Error("osc", "err", err)
				cancel()
			}
		}()
	}
	if config.OSC.Reply != "" {
		sender, closeFn, err := oscctl.Dial(config.OSC.Reply, newLogger("osc"))
		if err != nil {
			logger.Fatal("osc reply", "err", err)
		}
		sinks = append(sinks, async("osc", sender))
		closers = append(closers, closeFn)
	}

	if config.Serial.Port != "" {
		pad, closeFn, err := openPad(ctx, config.Serial.Port, config.Serial.Baud, config.Serial.Keymap, commands, newLogger("pad"))
		if err != nil {
			logger.Fatal("serial pad", "err", err)
		}
		sinks = append(sinks, async("pad", pad))
		closers = append(closers, closeFn)
	}

	var recorder *music.Recorder
	if *recordFile != "" {
		recorder = music.NewRecorder(music.BPMFromTempo(config.Tempo), config.Mapping())
		sinks = append(sinks, recorder)
	}

	clock := sequencer.NewClock()
	defer clock.Close()
	engine, err := sequencer.New(config.Options(newLogger("engine")), clock, sequencer.Tee(sinks...))
	if err != nil {
		logger.Fatal("engine", "err", err)
	}
	// the engine itself honours no_loadbang
	commands <- shared.Message{Type: shared.Loadbang}

	errs := sequencer.Run(ctx, engine, clock.Fired(), commands, newLogger("loop"))
	cancel()
	drains.Wait()
	for name, q := range queues {
		if n := q.Dropped(); n > 0 {
			logger.Warn("events dropped", "sink", name, "count", n)
		}
	}
	if recorder != nil {
		errs = errors.Join(errs, saveRecording(recorder, *recordFile, *quantize))
	}
	for _, closeFn := range closers {
		errs = errors.Join(errs, closeFn())
	}
	if errs != nil {
		logger.Error("shutdown", "err", errs)
		os.Exit(1)
	}
	logger.Info("bye")
}

func override(dst *string, flagValue string) {
	if flagValue != "" {
		*dst = flagValue
	}
}

func saveRecording(recorder *music.Recorder, fileName string, quantize bool) error {
	if !strings.HasSuffix(fileName, ".mid") {
		fileName += ".mid"
	}
	if recorder.Len() == 0 {
		println("nothing recorded")
		return nil
	}
	f, err := os.Create(fileName)
	if err != nil {
		return err
	}
	if err := recorder.WriteTo(f, quantize); err != nil {
		f.Close()
		return err
	}
	println("saved to", fileName)
	return f.Close()
}

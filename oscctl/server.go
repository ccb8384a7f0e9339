// Package oscctl exposes the sequencer commands over OSC and reports its
// events back to an OSC peer.
package oscctl

import (
	"context"
	"net"

	"github.com/JeanRibes/sequencer/sequencer"
	"github.com/JeanRibes/sequencer/shared"
	charmlog "github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/scgolang/osc"
)

const (
	AddrTempo            = "/sequencer/tempo"
	AddrButton           = "/sequencer/button"
	AddrSwitchInstrument = "/sequencer/switch-instrument"
	AddrLoadbang         = "/sequencer/loadbang"
	AddrIndicator        = "/sequencer/indicator"
	AddrTrigger          = "/sequencer/trigger"
)

// Server turns incoming OSC messages into sequencer commands.
// Commands are dropped once done is closed.
type Server struct {
	commands chan<- shared.Message
	done     <-chan struct{}
	logger   *charmlog.Logger
}

func NewServer(commands chan<- shared.Message, done <-chan struct{}, logger *charmlog.Logger) *Server {
	return &Server{commands: commands, done: done, logger: logger}
}

func number(arg osc.Argument) (float64, error) {
	if f, err := arg.ReadFloat32(); err == nil {
		return float64(f), nil
	}
	i, err := arg.ReadInt32()
	if err != nil {
		return 0, errors.Errorf("expected a number, got %s", arg)
	}
	return float64(i), nil
}

// parse checks the arity of m and builds the command for name.
func parse(name string, m osc.Message, minArgs, maxArgs int) (shared.Message, error) {
	if n := len(m.Arguments); n < minArgs || n > maxArgs {
		if minArgs == maxArgs {
			return shared.Message{}, errors.Errorf("%s: expected %d arguments, got %d", m.Address, minArgs, n)
		}
		return shared.Message{}, errors.Errorf("%s: expected %d to %d arguments, got %d", m.Address, minArgs, maxArgs, n)
	}
	args := make([]float64, 0, len(m.Arguments))
	for _, arg := range m.Arguments {
		f, err := number(arg)
		if err != nil {
			return shared.Message{}, errors.Wrap(err, m.Address)
		}
		args = append(args, f)
	}
	return shared.ParseCommand(name, args...)
}

func (s *Server) post(msg shared.Message, err error) error {
	if err != nil {
		return err
	}
	select {
	case s.commands <- msg:
		return nil
	case <-s.done:
		return errors.Errorf("%s: sequencer stopped", msg.Type)
	}
}

func (s *Server) handleTempo(m osc.Message) error {
	return s.post(parse("tempo", m, 0, 1))
}

func (s *Server) handleButton(m osc.Message) error {
	return s.post(parse("button", m, 0, 1))
}

func (s *Server) handleSwitchInstrument(m osc.Message) error {
	return s.post(parse("switch-instrument", m, 0, 1))
}

func (s *Server) handleLoadbang(m osc.Message) error {
	return s.post(parse("loadbang", m, 0, 0))
}

// method logs handler errors instead of returning them: the osc workers
// stop serving on the first error a method reports.
func (s *Server) method(handle func(osc.Message) error) osc.Method {
	return func(m osc.Message) error {
		if err := handle(m); err != nil {
			s.logger.Warn("bad osc message", "err", err)
		}
		return nil
	}
}

func (s *Server) Dispatcher() osc.Dispatcher {
	return osc.PatternMatching{
		AddrTempo:            s.method(s.handleTempo),
		AddrButton:           s.method(s.handleButton),
		AddrSwitchInstrument: s.method(s.handleSwitchInstrument),
		AddrLoadbang:         s.method(s.handleLoadbang),
	}
}

// Serve listens on addr until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return errors.Wrap(err, "resolve osc address")
	}
	conn, err := osc.ListenUDP("udp", laddr)
	if err != nil {
		return errors.Wrap(err, "listen osc")
	}
	context.AfterFunc(ctx, func() {
		conn.Close()
	})
	s.logger.Info("listening", "addr", addr)
	// one worker keeps commands in arrival order
	if err := conn.Serve(1, s.Dispatcher()); err != nil && ctx.Err() == nil {
		return errors.Wrap(err, "serve osc")
	}
	return nil
}

// Sender is a sequencer.Sink that reports events to an OSC peer.
type Sender struct {
	send   func(osc.Packet) error
	logger *charmlog.Logger
}

func NewSender(send func(osc.Packet) error, logger *charmlog.Logger) *Sender {
	return &Sender{send: send, logger: logger}
}

// Dial opens a UDP connection to addr and returns a Sender writing to it
// together with the function closing it.
func Dial(addr string, logger *charmlog.Logger) (*Sender, func() error, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, nil, errors.Wrap(err, "resolve osc reply address")
	}
	conn, err := osc.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, nil, errors.Wrap(err, "dial osc")
	}
	return NewSender(conn.Send, logger), conn.Close, nil
}

func Encode(ev sequencer.Event) osc.Message {
	switch ev.Kind {
	case sequencer.Trigger:
		return osc.Message{
			Address:   AddrTrigger,
			Arguments: osc.Arguments{osc.Int(ev.Index), osc.String(sequencer.Bang)},
		}
	case sequencer.PassThrough:
		return osc.Message{
			Address:   AddrTrigger,
			Arguments: osc.Arguments{osc.Float(ev.Raw)},
		}
	}
	v := 0
	if ev.On {
		v = 1
	}
	return osc.Message{
		Address:   AddrIndicator,
		Arguments: osc.Arguments{osc.Int(ev.Code()), osc.Int(v)},
	}
}

func (s *Sender) Emit(ev sequencer.Event) {
	if err := s.send(Encode(ev)); err != nil {
		s.logger.Error("osc send", "event", ev.String(), "err", err)
	}
}

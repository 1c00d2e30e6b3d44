package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/meadori/vibe6502/cartridge"
	"github.com/meadori/vibe6502/cpu"
	"github.com/meadori/vibe6502/machine"
	"github.com/meadori/vibe6502/memory"
	"github.com/meadori/vibe6502/server"
	"github.com/pkg/profile"
)

type config struct {
	image    string
	load     uint16
	start    int
	relative string
	steps    int
	trace    bool
	nestest  bool
	port     int
	paused   bool
	state    string
	profile  string
}

func parseFlags(args []string) (*config, error) {
	fs := flag.NewFlagSet("run6502", flag.ContinueOnError)
	cfg := &config{}
	load := fs.String("load", fmt.Sprintf("%04X", memory.ProgramAddress), "hex load address for raw images")
	start := fs.String("start", "", "hex start address (default: load address for raw images, reset vector for iNES)")
	fs.StringVar(&cfg.relative, "relative", "", "branch operand encoding: biased or signed (default: biased for raw, signed for iNES)")
	fs.IntVar(&cfg.steps, "steps", 0, "stop after this many instructions (0: until the program traps)")
	fs.BoolVar(&cfg.trace, "trace", false, "print a trace line before every instruction")
	fs.BoolVar(&cfg.nestest, "nestest", false, "start like nestest's automated mode: PC=C000 SP=FD P=24")
	fs.IntVar(&cfg.port, "grpc", 0, "serve the debugger on this port instead of running to completion")
	fs.BoolVar(&cfg.paused, "paused", false, "with -grpc, wait for a debugger to resume")
	fs.StringVar(&cfg.state, "state", "", "load a saved state before running")
	fs.StringVar(&cfg.profile, "profile", "", "write a cpu or mem profile to the current directory")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("usage: run6502 [flags] <image>")
	}
	cfg.image = fs.Arg(0)

	v, err := strconv.ParseUint(strings.TrimPrefix(*load, "0x"), 16, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid -load %q: %w", *load, err)
	}
	cfg.load = uint16(v)

	cfg.start = -1
	if *start != "" {
		v, err := strconv.ParseUint(strings.TrimPrefix(*start, "0x"), 16, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid -start %q: %w", *start, err)
		}
		cfg.start = int(v)
	}

	switch cfg.relative {
	case "", "biased", "signed":
	default:
		return nil, fmt.Errorf("invalid -relative %q", cfg.relative)
	}
	switch cfg.profile {
	case "", "cpu", "mem":
	default:
		return nil, fmt.Errorf("invalid -profile %q", cfg.profile)
	}
	return cfg, nil
}

// newMachine builds the machine described by cfg.
func newMachine(cfg *config, stdout io.Writer) (*machine.Machine, error) {
	var data []byte
	cart, err := cartridge.New(cfg.image)
	nes := err == nil
	if errors.Is(err, cartridge.ErrInvalidHeader) {
		data, err = os.ReadFile(cfg.image)
	}
	if err != nil {
		return nil, err
	}

	encoding := cpu.BiasedRelative
	if cfg.relative == "signed" || (cfg.relative == "" && nes) {
		encoding = cpu.SignedRelative
	}
	opts := []machine.Option{machine.WithCPUOptions(cpu.WithRelativeEncoding(encoding))}
	if cfg.trace {
		opts = append(opts, machine.WithTrace(stdout))
	}
	switch {
	case cfg.nestest:
		opts = append(opts, machine.WithEntryPoint(0xC000))
	case cfg.start >= 0:
		opts = append(opts, machine.WithEntryPoint(uint16(cfg.start)))
	case !nes:
		opts = append(opts, machine.WithEntryPoint(cfg.load))
	}

	m := machine.New(opts...)
	if nes {
		m.InsertCartridge(cart)
	} else {
		m.Load(cfg.load, data)
		m.Reset()
	}

	if cfg.nestest {
		r := m.Registers()
		r.SP = 0xFD
		r.P = cpu.LoadStatus(0x24)
		m.SetRegisters(r)
	}
	if cfg.state != "" {
		if err := m.LoadState(cfg.state); err != nil {
			return nil, fmt.Errorf("load state: %w", err)
		}
	}
	return m, nil
}

func run(cfg *config, stdout io.Writer) error {
	m, err := newMachine(cfg, stdout)
	if err != nil {
		return err
	}

	if cfg.port > 0 {
		return serve(cfg, m)
	}

	n, err := m.RunFor(cfg.steps)
	st, _ := m.GetCPUState()
	var trap *machine.TrapError
	switch {
	case errors.As(err, &trap):
		fmt.Fprintf(stdout, "trapped at %04X after %d instructions\n", trap.PC, n)
	case err != nil:
		return err
	default:
		fmt.Fprintf(stdout, "stopped after %d instructions\n", n)
	}
	fmt.Fprintf(stdout, "%s CYC:%d\n", m.Registers(), st.Cycles)
	return nil
}

func serve(cfg *config, m *machine.Machine) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := server.NewGRPCServer()
	s.SetMachine(m)
	if err := s.Start(cfg.port); err != nil {
		return err
	}
	defer s.Stop()

	m.SetPaused(cfg.paused)
	if err := m.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	var p interface{ Stop() }
	switch cfg.profile {
	case "cpu":
		p = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	case "mem":
		p = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	}

	err = run(cfg, os.Stdout)
	if p != nil {
		p.Stop()
	}
	if err != nil {
		log.Fatalf("run6502: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/meadori/vibe6502/api"
)

const rpcTimeout = 5 * time.Second

type debugger struct {
	client *api.Client
	out    io.Writer

	// next is where a bare "dis" continues from.
	next uint16
}

func newDebugger(client *api.Client, out io.Writer) *debugger {
	return &debugger{client: client, out: out}
}

func (d *debugger) printf(format string, a ...any) {
	fmt.Fprintf(d.out, format, a...)
}

func (d *debugger) help() {
	d.printf("Commands:\n")
	d.printf("  run, c           - Resume execution\n")
	d.printf("  pause, p         - Pause execution\n")
	d.printf("  step, s [n]      - Step n instructions (default 1)\n")
	d.printf("  regs, i r        - Print CPU registers\n")
	d.printf("  x[/n] <addr>     - Examine n bytes of memory (e.g. x/16 0200)\n")
	d.printf("  w <addr> <b>...  - Write bytes to memory\n")
	d.printf("  dis [addr] [n]   - Disassemble n instructions (default at PC)\n")
	d.printf("  break, b <addr>  - Set a breakpoint\n")
	d.printf("  delete <addr>    - Remove a breakpoint\n")
	d.printf("  reset            - Reset the CPU\n")
	d.printf("  save <file>      - Save a snapshot on the server\n")
	d.printf("  load <file>      - Load a snapshot on the server\n")
	d.printf("  quit, q          - Exit debugger\n")
}

// exec runs one command line. It reports whether the debugger should exit.
func (d *debugger) exec(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	cmd, args := parts[0], parts[1:]
	var err error
	switch {
	case cmd == "help" || cmd == "h":
		d.help()
	case cmd == "quit" || cmd == "q" || cmd == "exit":
		return true
	case cmd == "pause" || cmd == "p":
		if err = d.client.Pause(ctx); err == nil {
			d.printf("Emulator paused.\n")
			err = d.regs(ctx)
		}
	case cmd == "run" || cmd == "c" || cmd == "continue":
		if err = d.client.Resume(ctx); err == nil {
			d.printf("Emulator running...\n")
		}
	case cmd == "step" || cmd == "s":
		err = d.step(ctx, args)
	case cmd == "regs" || (cmd == "i" && len(args) > 0 && args[0] == "r"):
		err = d.regs(ctx)
	case cmd == "x" || strings.HasPrefix(cmd, "x/"):
		err = d.examine(ctx, cmd, args)
	case cmd == "w":
		err = d.write(ctx, args)
	case cmd == "dis" || cmd == "d":
		err = d.disassemble(ctx, args)
	case cmd == "break" || cmd == "b":
		err = d.breakpoint(ctx, args, true)
	case cmd == "delete" || cmd == "del":
		err = d.breakpoint(ctx, args, false)
	case cmd == "reset":
		if err = d.client.Reset(ctx); err == nil {
			err = d.regs(ctx)
		}
	case cmd == "save" || cmd == "load":
		err = d.snapshot(ctx, cmd, args)
	default:
		d.printf("Unknown command: %s\n", cmd)
	}
	if err != nil {
		d.printf("Error: %v\n", err)
	}
	return false
}

func parseAddr(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "$"), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address: %s", s)
	}
	return uint16(v), nil
}

func (d *debugger) regs(ctx context.Context) error {
	st, err := d.client.GetCPUState(ctx)
	if err != nil {
		return err
	}
	d.printf("%s\n", st)
	if st.Halted != "" {
		d.printf("halted: %s\n", st.Halted)
	}
	d.next = st.PC
	return nil
}

func (d *debugger) step(ctx context.Context, args []string) error {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return fmt.Errorf("invalid count: %s", args[0])
		}
		n = v
	}
	var st api.CPUState
	for i := 0; i < n; i++ {
		var err error
		if st, err = d.client.Step(ctx); err != nil {
			return err
		}
		if st.Halted != "" {
			break
		}
	}
	lines, err := d.client.Disassemble(ctx, st.PC, 1)
	if err != nil {
		return err
	}
	d.printf("%s\n%s\n", st, lines[0].Text)
	if st.Halted != "" {
		d.printf("halted: %s\n", st.Halted)
	}
	d.next = st.PC
	return nil
}

func (d *debugger) examine(ctx context.Context, cmd string, args []string) error {
	count := 1
	if c, ok := strings.CutPrefix(cmd, "x/"); ok {
		v, err := strconv.Atoi(c)
		if err != nil || v < 1 {
			return fmt.Errorf("invalid count: %s", c)
		}
		count = v
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: x <addr> or x/<count> <addr>")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	data, err := d.client.ReadMemoryBlock(ctx, addr, count)
	if err != nil {
		return err
	}
	d.hexDump(addr, data)
	return nil
}

func (d *debugger) hexDump(start uint16, data []byte) {
	for i := 0; i < len(data); i += 16 {
		d.printf("%04X:", start+uint16(i))
		end := min(i+16, len(data))
		for j := i; j < end; j++ {
			d.printf(" %02X", data[j])
		}
		d.printf("\n")
	}
}

func (d *debugger) write(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: w <addr> <byte>...")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	data := make([]byte, 0, len(args)-1)
	for _, a := range args[1:] {
		v, err := strconv.ParseUint(strings.TrimPrefix(a, "$"), 16, 8)
		if err != nil {
			return fmt.Errorf("invalid byte: %s", a)
		}
		data = append(data, byte(v))
	}
	return d.client.WriteMemory(ctx, addr, data)
}

func (d *debugger) disassemble(ctx context.Context, args []string) error {
	addr, count := d.next, 10
	if len(args) > 0 {
		a, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		addr = a
	} else if addr == 0 {
		st, err := d.client.GetCPUState(ctx)
		if err != nil {
			return err
		}
		addr = st.PC
	}
	if len(args) > 1 {
		v, err := strconv.Atoi(args[1])
		if err != nil || v < 1 {
			return fmt.Errorf("invalid count: %s", args[1])
		}
		count = v
	}
	lines, err := d.client.Disassemble(ctx, addr, count)
	if err != nil {
		return err
	}
	for _, l := range lines {
		d.printf("%s\n", l.Text)
	}
	if n := len(lines); n > 0 {
		d.next = lines[n-1].Next()
	}
	return nil
}

func (d *debugger) breakpoint(ctx context.Context, args []string, set bool) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: break <addr>")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	if set {
		if err := d.client.SetBreakpoint(ctx, addr); err != nil {
			return err
		}
		d.printf("Breakpoint at %04X\n", addr)
		return nil
	}
	ok, err := d.client.ClearBreakpoint(ctx, addr)
	if err != nil {
		return err
	}
	if !ok {
		d.printf("No breakpoint at %04X\n", addr)
	}
	return nil
}

func (d *debugger) snapshot(ctx context.Context, cmd string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s <file>", cmd)
	}
	if cmd == "save" {
		return d.client.SaveState(ctx, args[0])
	}
	if err := d.client.LoadState(ctx, args[0]); err != nil {
		return err
	}
	return d.regs(ctx)
}

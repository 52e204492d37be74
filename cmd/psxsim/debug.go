package main

import (
	"fmt"
	"io"

	"github.com/pkg/term"

	"github.com/sarchlab/psxsim/emu"
	"github.com/sarchlab/psxsim/insts"
	"github.com/sarchlab/psxsim/mem/bus"
)

const debugHelp = "keys: s/space step, n step 100, r registers, c cache stats, q quit\r\n"

// keySource delivers single key presses.
type keySource interface {
	ReadKey() (byte, error)
}

// ttyKeys reads unbuffered keys from the controlling terminal.
type ttyKeys struct {
	t *term.Term
}

func openTTY() (*ttyKeys, error) {
	t, err := term.Open("/dev/tty", term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal: %w", err)
	}
	return &ttyKeys{t: t}, nil
}

func (k *ttyKeys) ReadKey() (byte, error) {
	var b [1]byte
	if _, err := k.t.Read(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (k *ttyKeys) Close() error {
	_ = k.t.Restore()
	return k.t.Close()
}

// debugger single-steps a CPU under keyboard control.
type debugger struct {
	cpu     *emu.Emulator
	decoder *insts.Decoder
	keys    keySource
	out     io.Writer
}

func newDebugger(cpu *emu.Emulator, keys keySource, out io.Writer) *debugger {
	return &debugger{cpu: cpu, decoder: insts.NewDecoder(), keys: keys, out: out}
}

// peek disassembles the next instruction without going through the
// instruction cache.
func (d *debugger) peek() string {
	pc := d.cpu.PC()
	word, err := d.cpu.Load(pc, bus.Word)
	if err != nil {
		return fmt.Sprintf("0x%08X: <%v>", pc, err)
	}
	return fmt.Sprintf("0x%08X: %08X  %s", pc, word, d.decoder.Decode(word).Disassemble(pc))
}

func (d *debugger) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(d.out, format, args...)
}

// step runs n instructions and reports the first exception or error.
func (d *debugger) step(n int) bool {
	for i := 0; i < n; i++ {
		result := d.cpu.Step()
		if result.Exception != nil {
			d.printf("exception: %v\r\n", result.Exception)
		}
		if result.Err != nil {
			d.printf("stopped: %v\r\n", result.Err)
			return false
		}
	}
	return true
}

// Run loops until the user quits or the keys run out.
func (d *debugger) Run() error {
	d.printf(debugHelp)

	for {
		d.printf("%s\r\n", d.peek())

		key, err := d.keys.ReadKey()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch key {
		case 's', ' ', '\r', '\n':
			d.step(1)
		case 'n':
			d.step(100)
		case 'r':
			var sb bufferCRLF
			_ = d.cpu.Dump(&sb)
			d.printf("%s", sb.String())
		case 'c':
			s := d.cpu.ICache().Stats()
			d.printf("icache: %d reads, %d hits, %d misses, %d evictions\r\n",
				s.Reads, s.Hits, s.Misses, s.Evictions)
		case 'q', 3:
			return nil
		default:
			d.printf(debugHelp)
		}
	}
}

// bufferCRLF collects text and turns line feeds into CRLF, which a terminal
// in raw mode needs to return the carriage.
type bufferCRLF struct {
	buf []byte
}

func (b *bufferCRLF) Write(p []byte) (int, error) {
	for _, c := range p {
		if c == '\n' {
			b.buf = append(b.buf, '\r')
		}
		b.buf = append(b.buf, c)
	}
	return len(p), nil
}

func (b *bufferCRLF) String() string {
	return string(b.buf)
}

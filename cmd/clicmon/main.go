// Command clicmon is a small interactive debug console for a standalone
// CLIC, in the style of the teacher's cmd/ie32to64 tool and its
// terminal_host.go raw-terminal serial console: flags build the
// controller, then raw keystrokes drive it without needing Enter.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"riscvclic"
)

func boilerPlate() string {
	return `clicmon - RISC-V CLIC debug console
keys: 0-9 toggle that GPIO line, c then a digit claims that line for
      M-mode level-triggered delivery at priority 0x80 (intie/intattr/
      intctl), a dump the active set, e show exccode, r reset, q quit
`
}

func main() {
	var (
		numSources = flag.Int("sources", 64, "number of interrupt lines")
		ctlBits    = flag.Int("ctlbits", 8, "implemented clicintctl bits (0-8)")
		version    = flag.String("version", string(clic.VersionV09), "v0.9 or v0.9-jmp")
		mclicbase  = flag.Uint64("mbase", 0x02000000, "M-mode view base address")
		sclicbase  = flag.Uint64("sbase", 0, "S-mode view base address (0 = absent)")
		uclicbase  = flag.Uint64("ubase", 0, "U-mode view base address (0 = absent)")
		shv        = flag.Bool("shv", true, "enable selective hardware vectoring")
	)
	flag.Parse()

	var c *clic.CLIC
	cfg := clic.Config{
		NumSources: *numSources,
		CtlBits:    *ctlBits,
		Version:    clic.Version(*version),
		MClicBase:  uint32(*mclicbase),
		SClicBase:  uint32(*sclicbase),
		UClicBase:  uint32(*uclicbase),
		ShvEnabled: *shv,
		Logger:     stderrLogger{},
		OnInterruptLine: func(level bool) {
			if level {
				fmt.Printf("\r\nCPU line asserted, exccode=0x%08x\r\n", c.Exccode())
			}
		},
	}

	var err error
	c, err = clic.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "clicmon: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(boilerPlate())
	run(c)
}

func run(c *clic.CLIC) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fmt.Fprintln(os.Stderr, "clicmon: stdin is not a terminal, nothing to do")
		return
	}

	old, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "clicmon: %v\n", err)
		return
	}
	defer term.Restore(fd, old)

	lineState := make(map[int]bool)
	in := bufio.NewReader(os.Stdin)

	for {
		b, err := in.ReadByte()
		if err != nil {
			return
		}
		switch b {
		case 'q', 0x03: // q or ctrl-C
			return
		case 'a':
			dumpActiveSet(c)
		case 'e':
			fmt.Printf("\r\nexccode=0x%08x\r\n", c.Exccode())
		case 'r':
			c.Reset()
			lineState = make(map[int]bool)
			fmt.Print("\r\nreset\r\n")
		case 'c':
			irqByte, err := in.ReadByte()
			if err != nil {
				return
			}
			if irqByte < '0' || irqByte > '9' {
				break
			}
			claimIRQ(c, int(irqByte-'0'))
		default:
			if b >= '0' && b <= '9' {
				irq := int(b - '0')
				lineState[irq] = !lineState[irq]
				c.SetLine(irq, lineState[irq])
				fmt.Printf("\r\nirq %d -> %v\r\n", irq, lineState[irq])
			}
		}
	}
}

// claimIRQ wires irq up for M-mode level-triggered delivery at a middling
// priority, via the same M-view writes a guest would issue, so that a GPIO
// toggle on that line (see run's digit keys) can actually reach the arbiter
// and assert the CPU line.
func claimIRQ(c *clic.CLIC, irq int) {
	v := c.View(clic.ModeM)
	attr := clic.EncodeAttr(clic.Attr{Mode: clic.ModeM, Trig: clic.TrigPosLevel})
	v.Write(clic.IrqOffset(irq, clic.IrqIntattr), uint64(attr), clic.Size1)
	v.Write(clic.IrqOffset(irq, clic.IrqIntctl), 0x80, clic.Size1)
	v.Write(clic.IrqOffset(irq, clic.IrqIntie), 1, clic.Size1)
	fmt.Printf("\r\nirq %d claimed for M-mode level delivery\r\n", irq)
}

func dumpActiveSet(c *clic.CLIC) {
	fmt.Printf("\r\nhart %d, %d sources, active: %v\r\n", c.HartID(), c.NumSources(), c.ActiveIRQs())
}

type stderrLogger struct{}

func (stderrLogger) GuestError(kind clic.GuestKind, view clic.Mode, addr uint32, detail string) {
	fmt.Fprintf(os.Stderr, "\r\nclic: %s (view=%s addr=0x%x): %s\r\n", kind, view, addr, detail)
}

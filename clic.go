// clic.go - Construction, lifecycle, and the external GPIO entry point.
//
// Grounded on riscv_clic.c's riscv_clic_create/riscv_clic_realize and the
// teacher's (x, error) constructor convention (NewSoundChip, NewVideoChip)
// plus its Reset()-per-component lifecycle (component_reset.go).

package clic

import "sync"

// Version selects the CLIC specification revision this controller speaks.
// Only the v0.9 memory-mapped layout is implemented; v0.9-jmp additionally
// asks the vector table to be treated as a jump table rather than handler
// addresses (a detail owned entirely by the out-of-scope CPU model — this
// package only records the flag via JumpTable()).
type Version string

const (
	VersionV09    Version = "v0.9"
	VersionV09Jmp Version = "v0.9-jmp"
)

// LevelSource supplies the per-mode interrupt level floor the arbiter
// compares candidates against: the CPU's current in-hart level
// (mintstatus.xil and friends) and the configured threshold register. Both
// are owned by the out-of-scope CPU/machine model (spec §1); a nil
// LevelSource is equivalent to a floor of 0 in every mode.
type LevelSource interface {
	CurrentLevel(m Mode) uint8
	Threshold(m Mode) uint8
}

// Config describes how to construct a CLIC. MClicBase is always required;
// SClicBase/UClicBase of 0 mean the corresponding mode is not implemented.
type Config struct {
	HartID     int
	NumSources int
	CtlBits    int
	Version    Version
	ShvEnabled bool

	MClicBase uint32
	SClicBase uint32
	UClicBase uint32

	// OnInterruptLine is invoked with level=true whenever the arbiter
	// posts a new interrupt. It is never invoked with level=false: per
	// spec §4.7, the CLIC does not proactively deassert its outbound
	// line, the CPU consumes and lowers it on its own dispatch path.
	//
	// It is always called with the CLIC's lock already released, so it may
	// freely call back into any locking CLIC method (Exccode, View.Read,
	// ActiveIRQs, ...) without deadlocking; it must not be called while the
	// host itself holds a lock this CLIC's methods could block on.
	OnInterruptLine func(level bool)

	// Logger receives every recovered guest-visible access error. Nil
	// discards them.
	Logger GuestLogger

	// Levels supplies the per-mode level floor for arbitration. Nil means
	// a floor of 0 everywhere.
	Levels LevelSource

	// Privilege reports the CPU's current privilege mode, used both to
	// gate view access and to gate the effective mode a software write to
	// clicintattr may request. Nil defaults to "always M" (unrestricted),
	// which is adequate for tests and hosts with no privilege model of
	// their own.
	Privilege func() Mode
}

// CLIC is a single hart's Core-Local Interrupt Controller: the shared state
// behind up to three per-mode Views.
type CLIC struct {
	mu sync.Mutex

	hartID      int
	numSources  int
	ctlBits     int
	version     Version
	shvEnabled  bool
	supportsS   bool
	supportsU   bool

	mnlbits int
	snlbits int
	unlbits int
	nmbits  int

	inttrig     [inttrigCount]uint32
	mintthresh  uint32
	irqs        irqTable
	active      activeSet
	exccode     uint32
	lineRaised  bool

	onLine    func(bool)
	logger    GuestLogger
	levels    LevelSource
	privilege func() Mode

	views [4]*View // indexed directly by Mode; ModeReserved's slot is never populated
}

// New validates cfg and constructs a CLIC with one View per configured
// mode. Configuration errors are returned wrapped in ErrBadConfig rather
// than panicking, per spec §7's "fatal — refuse to construct"; callers that
// want the teacher's refuse-to-come-up behavior directly should use
// MustNew.
func New(cfg Config) (*CLIC, error) {
	if cfg.NumSources <= 0 || cfg.NumSources > MaxSources {
		return nil, badConfig("num_sources %d out of range (1..%d)", cfg.NumSources, MaxSources)
	}
	if cfg.CtlBits < 0 || cfg.CtlBits > MaxCtlBits {
		return nil, badConfig("clicintctlbits %d out of range (0..%d)", cfg.CtlBits, MaxCtlBits)
	}
	if cfg.Version != VersionV09 && cfg.Version != VersionV09Jmp {
		return nil, badConfig("unknown version %q", cfg.Version)
	}
	if cfg.MClicBase == 0 {
		return nil, badConfig("mclicbase is required")
	}
	if !aligned4K(cfg.MClicBase) {
		return nil, badConfig("mclicbase 0x%x is not 4KiB-aligned", cfg.MClicBase)
	}
	if cfg.SClicBase != 0 && !aligned4K(cfg.SClicBase) {
		return nil, badConfig("sclicbase 0x%x is not 4KiB-aligned", cfg.SClicBase)
	}
	if cfg.UClicBase != 0 && !aligned4K(cfg.UClicBase) {
		return nil, badConfig("uclicbase 0x%x is not 4KiB-aligned", cfg.UClicBase)
	}

	c := &CLIC{
		hartID:     cfg.HartID,
		numSources: cfg.NumSources,
		ctlBits:    cfg.CtlBits,
		version:    cfg.Version,
		shvEnabled: cfg.ShvEnabled,
		supportsS:  cfg.SClicBase != 0,
		supportsU:  cfg.UClicBase != 0,
		onLine:     cfg.OnInterruptLine,
		logger:     cfg.Logger,
		levels:     cfg.Levels,
		privilege:  cfg.Privilege,
		irqs:       newIrqTable(cfg.NumSources),
	}
	c.resetConfigLocked()

	c.views[ModeM] = &View{clic: c, mode: ModeM, base: cfg.MClicBase}
	if c.supportsS {
		c.views[ModeS] = &View{clic: c, mode: ModeS, base: cfg.SClicBase}
	}
	if c.supportsU {
		c.views[ModeU] = &View{clic: c, mode: ModeU, base: cfg.UClicBase}
	}
	return c, nil
}

// MustNew is New, panicking on error. Spec §7 treats construction failure
// as a programming bug in the machine wiring, not a recoverable runtime
// condition, so hosts that already validated their own configuration may
// prefer this over plumbing the error through.
func MustNew(cfg Config) *CLIC {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

func aligned4K(addr uint32) bool {
	return addr&0xfff == 0
}

// resetConfigLocked restores global configuration and nmbits to their
// construction-time defaults, matching riscv_clic_realize.
func (c *CLIC) resetConfigLocked() {
	c.mnlbits = MaxCtlBits
	if c.supportsS {
		c.snlbits = MaxCtlBits
	} else {
		c.snlbits = 0
	}
	if c.supportsU {
		c.unlbits = MaxCtlBits
	} else {
		c.unlbits = 0
	}
	switch {
	case c.supportsS && c.supportsU:
		c.nmbits = 2
	case c.supportsS || c.supportsU:
		c.nmbits = 1
	default:
		c.nmbits = 0
	}
	c.mintthresh = 0
	c.exccode = 0
	c.lineRaised = false
}

// Reset restores the CLIC to its power-on state in place: every IRQ's
// pending/enable/attr/ctl, the active set, and the global configuration
// return to their construction-time defaults. Views and their base
// addresses are untouched, matching the teacher's Reset()-without-
// reallocation convention (component_reset.go).
func (c *CLIC) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.irqs.reset()
	c.active.reset()
	for i := range c.inttrig {
		c.inttrig[i] = 0
	}
	c.resetConfigLocked()
}

// HartID returns the hart this controller serves.
func (c *CLIC) HartID() int { return c.hartID }

// NumSources returns the number of configured interrupt lines.
func (c *CLIC) NumSources() int { return c.numSources }

// JumpTable reports whether the configured version selects jump-table
// vectoring (version "v0.9-jmp") rather than handler-address vectoring.
func (c *CLIC) JumpTable() bool { return c.version == VersionV09Jmp }

// View returns the per-mode MMIO window for m, or nil if the CLIC was not
// configured with that mode.
func (c *CLIC) View(m Mode) *View {
	if int(m) >= len(c.views) {
		return nil
	}
	return c.views[m]
}

// Exccode returns the (mode, level, irq) triple encoded for the most
// recently posted interrupt.
func (c *CLIC) Exccode() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exccode
}

// ActiveIRQs returns the IRQ numbers currently in the active set, in
// descending priority order (the order the arbiter scans them in). Intended
// for diagnostics; callers that need to act on the result should go back
// through SetLine/View rather than assuming it stays valid past the call.
func (c *CLIC) ActiveIRQs() []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]int, len(c.active.entries))
	for i, e := range c.active.entries {
		out[i] = int(e.irq)
	}
	return out
}

func (c *CLIC) regionSize() uint32 {
	return intctlBase + uint32(c.numSources)*irqRegBytes
}

func (c *CLIC) privLevel() Mode {
	if c.privilege == nil {
		return ModeM
	}
	return c.privilege()
}

// signalLine invokes onLine(true). Callers must not hold c.mu: onLine is a
// host callback that may call straight back into a locking CLIC method (the
// sole motivation for Exccode() existing as a separate locking accessor
// rather than a field read alongside the arbiter's own state update).
func (c *CLIC) signalLine() {
	if c.onLine != nil {
		c.onLine(true)
	}
}

// SetLine drives external IRQ line irq to level, the sole GPIO-in entry
// point per spec §4.4/§6. The table in §4.4 is the single source of truth
// for how a transition maps to the pending bit; line-triggered pending
// bits are never writable any other way.
func (c *CLIC) SetLine(irq int, level bool) {
	c.mu.Lock()
	raised := c.setLineLocked(irq, level)
	c.mu.Unlock()

	if raised {
		c.signalLine()
	}
}

func (c *CLIC) setLineLocked(irq int, level bool) bool {
	if irq < 0 || irq >= c.numSources {
		logGuest(c.logger, InvalidIrq, ModeM, uint32(irq), "SetLine: irq out of range")
		return false
	}

	trig := c.irqs.trigger(irq)
	var changed bool
	switch trig {
	case TrigPosLevel:
		changed = c.irqs.setPendingRaw(irq, level)
	case TrigPosEdge:
		if level {
			changed = c.irqs.setPendingRaw(irq, true)
		}
	case TrigNegLevel:
		changed = c.irqs.setPendingRaw(irq, !level)
	case TrigNegEdge:
		if !level {
			changed = c.irqs.setPendingRaw(irq, true)
		}
	}
	if !changed {
		return false
	}
	return c.arbitrateLocked()
}

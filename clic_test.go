package clic

import (
	"errors"
	"testing"
)

func TestNewRejectsBadNumSources(t *testing.T) {
	cfg := baseConfig()
	cfg.NumSources = 0
	_, err := New(cfg)
	if !errors.Is(err, ErrBadConfig) {
		t.Fatalf("err = %v, want wrapped ErrBadConfig", err)
	}

	cfg.NumSources = MaxSources + 1
	if _, err := New(cfg); !errors.Is(err, ErrBadConfig) {
		t.Fatalf("num_sources above MaxSources: err = %v, want ErrBadConfig", err)
	}
}

func TestNewRejectsBadCtlBits(t *testing.T) {
	cfg := baseConfig()
	cfg.CtlBits = MaxCtlBits + 1
	if _, err := New(cfg); !errors.Is(err, ErrBadConfig) {
		t.Fatalf("err = %v, want ErrBadConfig", err)
	}
}

func TestNewRejectsUnknownVersion(t *testing.T) {
	cfg := baseConfig()
	cfg.Version = "v0.8"
	if _, err := New(cfg); !errors.Is(err, ErrBadConfig) {
		t.Fatalf("err = %v, want ErrBadConfig", err)
	}
}

func TestNewRejectsMissingMClicBase(t *testing.T) {
	cfg := baseConfig()
	cfg.MClicBase = 0
	if _, err := New(cfg); !errors.Is(err, ErrBadConfig) {
		t.Fatalf("err = %v, want ErrBadConfig", err)
	}
}

func TestNewRejectsMisalignedBase(t *testing.T) {
	cfg := baseConfig()
	cfg.MClicBase = 0x02000001
	if _, err := New(cfg); !errors.Is(err, ErrBadConfig) {
		t.Fatalf("err = %v, want ErrBadConfig", err)
	}
}

func TestMustNewPanicsOnBadConfig(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustNew did not panic on bad config")
		}
	}()
	MustNew(Config{})
}

func TestNewDerivesNmbitsFromSupportedModes(t *testing.T) {
	cfg := baseConfig()
	c := MustNew(cfg)
	if c.nmbits != 0 {
		t.Fatalf("M-only: nmbits = %d, want 0", c.nmbits)
	}

	cfg.SClicBase = 0x02010000
	c = MustNew(cfg)
	if c.nmbits != 1 {
		t.Fatalf("M+S: nmbits = %d, want 1", c.nmbits)
	}

	cfg.UClicBase = 0x02020000
	c = MustNew(cfg)
	if c.nmbits != 2 {
		t.Fatalf("M+S+U: nmbits = %d, want 2", c.nmbits)
	}
}

func TestViewNilForUnconfiguredMode(t *testing.T) {
	c := MustNew(baseConfig())
	if c.View(ModeS) != nil {
		t.Fatal("View(ModeS) should be nil on an M-only CLIC")
	}
	if c.View(ModeM) == nil {
		t.Fatal("View(ModeM) should never be nil")
	}
}

func TestResetRestoresPowerOnState(t *testing.T) {
	rig := newTestCLIC(t, baseConfig())
	v := rig.clic.View(ModeM)

	v.Write(irqAddr(10, 3), 0xBF, Size1) // intctl
	v.Write(irqAddr(10, 1), 1, Size1)    // intie

	rig.clic.Reset()

	if got := v.Read(irqAddr(10, 3), Size1); got != 0x1F {
		t.Fatalf("intctl[10] after reset = 0x%x, want 0x1f (raw 0, ctlbits=3 hardwire)", got)
	}
	if got := v.Read(irqAddr(10, 1), Size1); got != 0 {
		t.Fatalf("intie[10] after reset = %d, want 0", got)
	}
	if len(rig.clic.active.entries) != 0 {
		t.Fatalf("active set after reset has %d entries, want 0", len(rig.clic.active.entries))
	}
}

func TestSetLineTable(t *testing.T) {
	rig := newTestCLIC(t, baseConfig())
	v := rig.clic.View(ModeM)
	irq := 3

	setAttr := func(trig Trigger) {
		v.Write(irqAddr(irq, 2), uint64(EncodeAttr(Attr{Mode: ModeM, Trig: trig})), Size1)
	}
	readPending := func() uint8 { return uint8(v.Read(irqAddr(irq, 0), Size1)) }

	setAttr(TrigPosLevel)
	rig.clic.SetLine(irq, true)
	requireUint8(t, readPending(), 1, "PosLevel, line=1")
	rig.clic.SetLine(irq, false)
	requireUint8(t, readPending(), 0, "PosLevel, line=0")

	setAttr(TrigNegLevel)
	rig.clic.SetLine(irq, false)
	requireUint8(t, readPending(), 1, "NegLevel, line=0")
	rig.clic.SetLine(irq, true)
	requireUint8(t, readPending(), 0, "NegLevel, line=1")

	setAttr(TrigPosEdge)
	rig.clic.SetLine(irq, false)
	requireUint8(t, readPending(), 0, "PosEdge, line=0 is a no-op")
	rig.clic.SetLine(irq, true)
	requireUint8(t, readPending(), 1, "PosEdge, line=1 latches pending")

	v.Write(irqAddr(irq, 0), 0, Size1) // clear it (edge-triggered, software writable)
	setAttr(TrigNegEdge)
	rig.clic.SetLine(irq, true)
	requireUint8(t, readPending(), 0, "NegEdge, line=1 is a no-op")
	rig.clic.SetLine(irq, false)
	requireUint8(t, readPending(), 1, "NegEdge, line=0 latches pending")
}

func TestActiveIRQsReflectsPriorityOrder(t *testing.T) {
	rig := newTestCLIC(t, baseConfig())
	v := rig.clic.View(ModeM)

	v.Write(irqAddr(26, 3), 0x3F, Size1)
	v.Write(irqAddr(26, 1), 1, Size1)
	v.Write(irqAddr(25, 3), 0xBF, Size1)
	v.Write(irqAddr(25, 1), 1, Size1)

	got := rig.clic.ActiveIRQs()
	if len(got) != 2 || got[0] != 25 || got[1] != 26 {
		t.Fatalf("ActiveIRQs = %v, want [25 26]", got)
	}
}

func TestSetLineOutOfRangeIsLogged(t *testing.T) {
	var got GuestKind
	cfg := baseConfig()
	cfg.Logger = guestLoggerFunc(func(kind GuestKind, view Mode, addr uint32, detail string) {
		got = kind
	})
	rig := newTestCLIC(t, cfg)
	rig.clic.SetLine(rig.clic.NumSources(), true)
	if got != InvalidIrq {
		t.Fatalf("logged kind = %v, want InvalidIrq", got)
	}
}

type guestLoggerFunc func(kind GuestKind, view Mode, addr uint32, detail string)

func (f guestLoggerFunc) GuestError(kind GuestKind, view Mode, addr uint32, detail string) {
	f(kind, view, addr, detail)
}

// arbiter.go - Priority arbitration and interrupt delivery.
//
// Grounded on riscv_clic.c's riscv_clic_next_interrupt: walk the active set
// in descending priority order, stop at the first entry whose mode/level
// falls below the requesting mode's floor, and post the first pending
// candidate found before that point. Selective hardware vectoring clears
// an edge-triggered pending bit at the moment of delivery, never on a plain
// read or on the line transition itself.
//
// riscv_clic_get_interrupt_level (and riscv_clic_intcfg_decode, which calls
// it for every active entry regardless of owning mode) always decodes the
// level field with clic->mnlbits, never the owning mode's own snlbits/
// unlbits. An S/U entry's level is still mnlbits-wide; only its intctl
// storage and effective mode differ from an M entry's.

package clic

// arbitrateLocked re-runs arbitration over the active set and, if a
// deliverable candidate is found, updates exccode and reports that a new
// interrupt was posted. The caller must hold c.mu, and must not call
// c.onLine directly from the result - signalLine must run only after the
// caller has released the lock (onLine is a host callback free to re-enter
// a locking CLIC method). It never reports one with level=false: per spec
// §4.7 the CLIC does not proactively deassert its line, so returning false
// here simply leaves the CPU to observe nothing new.
func (c *CLIC) arbitrateLocked() bool {
	priv := c.privLevel()

	for _, e := range c.active.entries {
		mode := Mode(extractField(uint32(e.intcfg), intcfgModeShift, 2))
		ctl := uint8(e.intcfg & intcfgCtlMask)
		level := Level(ctl, c.mnlbits, c.ctlBits)

		if mode < priv {
			break
		}
		if mode == priv && level < c.floor(mode) {
			break
		}

		irq := int(e.irq)
		if c.irqs.intip[irq] == 0 {
			continue
		}

		if c.shvEnabled && c.irqs.edgeTriggered(irq) && c.irqs.shv(irq) {
			c.irqs.setPendingRaw(irq, false)
		}
		c.exccode = EncodeExccode(e.irq, mode, level)
		c.lineRaised = true
		return true
	}
	return false
}

// floor returns the level an IRQ in mode m must clear to be deliverable:
// the greater of the CPU's current in-mode level and its threshold
// register, per the LevelSource collaborator.
func (c *CLIC) floor(m Mode) uint8 {
	if c.levels == nil {
		return 0
	}
	cur := c.levels.CurrentLevel(m)
	th := c.levels.Threshold(m)
	if th > cur {
		return th
	}
	return cur
}


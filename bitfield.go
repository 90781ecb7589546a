// bitfield.go - Pure encode/decode functions for CLIC register fields.
//
// Every function here is stateless and derives its masks/shifts from
// registers.go, so the decoder, the views, and these tests all agree on
// one definition of each field.

package clic

// Trigger describes the polarity and edge/level sense of an IRQ input,
// decoded from intattr[2:1].
type Trigger uint8

const (
	TrigPosLevel Trigger = 0b00
	TrigPosEdge  Trigger = 0b01
	TrigNegLevel Trigger = 0b10
	TrigNegEdge  Trigger = 0b11
)

// Edge reports whether the trigger is edge- (true) or level- (false)
// sensitive. Bit 0 of the 2-bit trig field is the edge/level selector.
func (t Trigger) Edge() bool {
	return t&0x01 != 0
}

// Negative reports whether the trigger fires on the falling/low side.
func (t Trigger) Negative() bool {
	return t&0x02 != 0
}

// Attr is a decoded clicintattr byte.
type Attr struct {
	Mode Mode
	Trig Trigger
	SHV  bool
}

// DecodeAttr decodes a raw clicintattr byte per the layout in registers.go.
// Reserved bits [5:3] are ignored on decode (they are masked to zero by the
// write path, see EncodeAttr).
func DecodeAttr(b uint8) Attr {
	return Attr{
		Mode: Mode(extractField(uint32(b), attrModeShift, attrModeWidth)),
		Trig: Trigger(extractField(uint32(b), attrTrigShift, attrTrigWidth)),
		SHV:  b&attrShvMask != 0,
	}
}

// EncodeAttr packs an Attr back into a clicintattr byte, zeroing the
// reserved bits.
func EncodeAttr(a Attr) uint8 {
	v := insertField(0, attrModeShift, attrModeWidth, uint32(a.Mode))
	v = insertField(v, attrTrigShift, attrTrigWidth, uint32(a.Trig))
	if a.SHV {
		v |= attrShvMask
	}
	return uint8(v & attrMask)
}

// Level returns the observable interrupt level encoded in a raw intctl
// byte, given the number of level bits configured for the owning mode
// (mnlbits/snlbits/unlbits) and the number of clicintctl bits actually
// implemented. Unused low bits read as 1.
func Level(ctl uint8, nlbits, ctlBits int) uint8 {
	nl := min(nlbits, ctlBits)
	return (ctl & maskHigh(uint(nl))) | maskLow(uint(8-nl))
}

// Priority returns the priority encoded in a raw intctl byte: the bits of
// intctl not consumed by the level field. Unused low bits read as 1; if
// there are no priority bits at all, priority reads as the maximum value.
func Priority(ctl uint8, nlbits, ctlBits int) uint8 {
	np := ctlBits - nlbits
	if np <= 0 {
		return 0xff
	}
	return ((ctl << uint(nlbits)) & maskHigh(uint(np))) | maskLow(uint(8-np))
}

// ReadCtl returns the bit-exact value clicintctl[i] reads as: the stored
// raw byte with its unimplemented low bits hardwired to 1.
func ReadCtl(raw uint8, ctlBits int) uint8 {
	return raw | maskLow(uint(8-ctlBits))
}

// IntCfg packs an effective mode and a raw intctl byte into the combined
// sortable value the active set orders by.
func IntCfg(mode Mode, ctl uint8) uint16 {
	return uint16(insertField(0, intcfgModeShift, 2, uint32(mode))) | uint16(ctl)
}

// EncodePriority produces the single monotonic value the active set sorts
// descending by: mode and intctl dominate, IRQ number breaks ties so that a
// higher IRQ number wins at equal intcfg.
func EncodePriority(intcfg uint16, irq uint16) uint32 {
	return (uint32(intcfg)&intcfgMask)<<12 | (uint32(irq) & MaxIRQMask)
}

// EncodeExccode packs the (mode, level, irq) triple handed to the CPU when
// an interrupt is posted.
func EncodeExccode(irq uint16, mode Mode, level uint8) uint32 {
	v := uint32(irq) & MaxIRQMask
	v = insertField(v, exccodeModeShift, exccodeModeWidth, uint32(mode))
	v = insertField(v, exccodeLevelShift, exccodeLevelWidth, uint32(level))
	return v
}

// DecodeExccode reverses EncodeExccode.
func DecodeExccode(exccode uint32) (irq uint16, mode Mode, level uint8) {
	irq = uint16(extractField(exccode, 0, exccodeIRQWidth))
	mode = Mode(extractField(exccode, exccodeModeShift, exccodeModeWidth))
	level = uint8(extractField(exccode, exccodeLevelShift, exccodeLevelWidth))
	return
}

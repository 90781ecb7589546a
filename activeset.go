// activeset.go - Sorted list of currently enabled interrupts.
//
// Grounded on riscv_clic.c's riscv_clic_update_intie, which keeps a C array
// sorted with bsearch+qsort+memmove. Go's sort.Slice over a slice gives the
// same shape without hand-rolled binary search; enablement changes are rare
// (spec §4.3 rationale) so an O(n log n) resort on every enable and a linear
// search on every disable are the right tradeoff for a delivery fastpath that just walks the slice in
// order.

package clic

import "sort"

type activeEntry struct {
	intcfg uint16
	irq    uint16
}

type activeSet struct {
	entries []activeEntry
}

func (s *activeSet) less(a, b activeEntry) bool {
	return EncodePriority(a.intcfg, a.irq) > EncodePriority(b.intcfg, b.irq)
}

func (s *activeSet) sort() {
	sort.Slice(s.entries, func(i, j int) bool {
		return s.less(s.entries[i], s.entries[j])
	})
}

func (s *activeSet) insert(intcfg uint16, irq uint16) {
	s.entries = append(s.entries, activeEntry{intcfg, irq})
	s.sort()
}

func (s *activeSet) remove(intcfg uint16, irq uint16) {
	for i, e := range s.entries {
		if e.intcfg == intcfg && e.irq == irq {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

func (s *activeSet) reset() {
	s.entries = s.entries[:0]
}

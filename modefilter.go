// modefilter.go - Effective-mode coercion and cross-mode visibility.
//
// Grounded on riscv_clic.c's riscv_clic_effective_mode and
// riscv_clic_check_visible; the nmbits tables there are reproduced exactly,
// including the per-mode-set branching (M-only / M+S+U / M+S or M+U).

package clic

// effectiveMode works out which privilege level actually owns an IRQ given
// the raw mode bits stored in intattr and the CLIC's nmbits configuration.
// supportsS/supportsU describe which secondary modes this CLIC has views
// for at all.
func effectiveMode(rawMode Mode, nmbits int, supportsS, supportsU bool) Mode {
	switch nmbits {
	case 0:
		return ModeM
	case 1:
		if rawMode <= ModeS {
			if supportsS {
				return ModeS
			}
			return ModeU
		}
		return ModeM
	case 2:
		return rawMode
	default:
		// Validated at construction/cliccfg-write time; unreachable.
		return ModeM
	}
}

// visible implements the clicintip/ie/attr/ctl visibility predicate for a
// view with access mode A observing an IRQ whose effective mode is E.
func visible(access Mode, effective Mode, nmbits int, supportsS, supportsU bool) bool {
	switch {
	case !supportsS && !supportsU: // M-only
		return access == ModeM
	case supportsS && supportsU: // M/S/U
		switch nmbits {
		case 0:
			return access == ModeM
		case 1:
			return access == ModeM || effective <= ModeS
		case 2:
			return access >= effective
		default:
			return false
		}
	default: // M/S or M/U
		switch nmbits {
		case 0:
			return access == ModeM
		case 1:
			return access == ModeM || effective <= ModeS
		default:
			return false
		}
	}
}

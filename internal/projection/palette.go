package projection

// Fixed RGBA palettes for map overlays. Exact values are a rendering
// concern; the ordering contract is that higher intensity always maps to a
// more saturated, more dangerous-looking color.

// bandColors keys the 6-step vortex palette on normalized intensity in
// [0, 1]: purple at the core fading through magenta, red, orange, and
// yellow to green at the perimeter.
func bandColors(intensity float64) (fill, stroke string) {
	switch {
	case intensity > 0.88:
		return "rgba(147, 51, 234, 0.65)", "rgba(147, 51, 234, 0.95)"
	case intensity > 0.75:
		return "rgba(219, 39, 119, 0.6)", "rgba(219, 39, 119, 0.9)"
	case intensity > 0.6:
		return "rgba(239, 68, 68, 0.55)", "rgba(239, 68, 68, 0.85)"
	case intensity > 0.45:
		return "rgba(249, 115, 22, 0.5)", "rgba(249, 115, 22, 0.8)"
	case intensity > 0.3:
		return "rgba(234, 179, 8, 0.45)", "rgba(234, 179, 8, 0.7)"
	default:
		return "rgba(34, 197, 94, 0.4)", "rgba(34, 197, 94, 0.6)"
	}
}

// rainColors keys the 5-step radar palette on forecast rainfall in mm:
// above 20 severe, above 10 high, above 5 moderate, above 2 light,
// otherwise minimal.
func rainColors(precipitationMM float64) (fill, stroke string) {
	switch {
	case precipitationMM > 20:
		return "rgba(219, 39, 119, 0.4)", "rgba(219, 39, 119, 0.7)"
	case precipitationMM > 10:
		return "rgba(249, 115, 22, 0.35)", "rgba(249, 115, 22, 0.6)"
	case precipitationMM > 5:
		return "rgba(234, 179, 8, 0.3)", "rgba(234, 179, 8, 0.5)"
	case precipitationMM > 2:
		return "rgba(34, 197, 94, 0.25)", "rgba(34, 197, 94, 0.4)"
	default:
		return "rgba(59, 130, 246, 0.2)", "rgba(59, 130, 246, 0.35)"
	}
}

// currentRainColors keys the live rain circle on the humidity-derived
// intensity proxy.
func currentRainColors(intensity float64) (fill, stroke string) {
	switch {
	case intensity > 6:
		return "rgba(219, 39, 119, 0.35)", "rgba(219, 39, 119, 0.6)"
	case intensity > 4:
		return "rgba(249, 115, 22, 0.3)", "rgba(249, 115, 22, 0.55)"
	default:
		return "rgba(59, 130, 246, 0.25)", "rgba(59, 130, 246, 0.4)"
	}
}

package color

// HSV is the color in hue, saturation, value space. All the components are scaled to 0-255.
type HSV struct {
	H uint8
	S uint8
	V uint8
}

// RGB is the color in red, green, blue space.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// HSV converts the color to HSV space.
func (c RGB) HSV() HSV {
	r, g, b := int(c.R), int(c.G), int(c.B)
	maxC := max(r, g, b)
	minC := min(r, g, b)

	if maxC == 0 {
		return HSV{}
	}
	delta := maxC - minC
	s := 255 * delta / maxC
	if s == 0 {
		return HSV{V: uint8(maxC)}
	}

	var h int
	switch maxC {
	case r:
		h = 43 * (g - b) / delta
	case g:
		h = 85 + 43*(b-r)/delta
	default:
		h = 171 + 43*(r-g)/delta
	}

	return HSV{
		H: uint8(h),
		S: uint8(s),
		V: uint8(maxC),
	}
}

// RGB converts the color to RGB space.
func (c HSV) RGB() RGB {
	h, s, v := int(c.H), int(c.S), int(c.V)
	if s == 0 {
		return RGB{R: c.V, G: c.V, B: c.V}
	}

	region := h / 43
	remainder := (h - region*43) * 6

	p := uint8(v * (255 - s) >> 8)
	q := uint8(v * (255 - (s*remainder)>>8) >> 8)
	t := uint8(v * (255 - (s*(255-remainder))>>8) >> 8)

	switch region {
	case 0:
		return RGB{R: c.V, G: t, B: p}
	case 1:
		return RGB{R: q, G: c.V, B: p}
	case 2:
		return RGB{R: p, G: c.V, B: t}
	case 3:
		return RGB{R: p, G: q, B: c.V}
	case 4:
		return RGB{R: t, G: p, B: c.V}
	default:
		return RGB{R: c.V, G: p, B: q}
	}
}

package plot

// clusterPalette is the categorical palette used to color entities by
// their position in the selection order. Ten well-separated hues; the
// assignment cycles when more entities are selected than the palette
// holds.
var clusterPalette = [...]RGBA{
	RGB(0.121, 0.466, 0.705), // blue
	RGB(1.000, 0.498, 0.054), // orange
	RGB(0.172, 0.627, 0.172), // green
	RGB(0.839, 0.152, 0.156), // red
	RGB(0.580, 0.403, 0.741), // purple
	RGB(0.549, 0.337, 0.294), // brown
	RGB(0.890, 0.466, 0.760), // pink
	RGB(0.498, 0.498, 0.498), // gray
	RGB(0.737, 0.741, 0.133), // olive
	RGB(0.090, 0.745, 0.811), // cyan
}

// ClusterColor returns the palette color for the i-th selected entity.
// Negative indices wrap the same way as indices past the palette end,
// so callers can pass any ordinal.
func ClusterColor(i int) RGBA {
	n := len(clusterPalette)
	i %= n
	if i < 0 {
		i += n
	}
	return clusterPalette[i]
}

// PaletteSize returns the number of distinct colors before cycling.
func PaletteSize() int { return len(clusterPalette) }

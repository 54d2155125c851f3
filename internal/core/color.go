package core

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// ColorPolicy decides how a category gets its display colour.
type ColorPolicy int

const (
	// ColorRandom picks a fresh 24-bit colour for each category on every
	// aggregation pass. Colours are not stable across passes.
	ColorRandom ColorPolicy = iota
	// ColorHashed maps the category name onto Palette, stable across passes.
	ColorHashed
)

// Palette is the fixed set used by ColorHashed.
var Palette = []string{
	"#0088fe", "#00c49f", "#ffbb28", "#ff8042",
	"#8884d8", "#82ca9d", "#a4de6c", "#d0ed57",
	"#8dd1e1", "#ff6f91", "#845ec2", "#f9a03f",
}

// RandomColor returns a pseudo-random #rrggbb colour.
func RandomColor() string {
	return fmt.Sprintf("#%06x", rand.IntN(0xffffff+1))
}

// HashedColor returns the palette colour for name.
func HashedColor(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return Palette[h.Sum32()%uint32(len(Palette))]
}

// ParseColorPolicy maps a config value to a ColorPolicy.
func ParseColorPolicy(s string) (ColorPolicy, error) {
	switch s {
	case "random":
		return ColorRandom, nil
	case "hashed", "":
		return ColorHashed, nil
	default:
		return 0, fmt.Errorf("unknown color policy %q", s)
	}
}

func (p ColorPolicy) colorFor(name string) string {
	if p == ColorHashed {
		return HashedColor(name)
	}
	return RandomColor()
}

func (p ColorPolicy) String() string {
	if p == ColorHashed {
		return "hashed"
	}
	return "random"
}

package demo

import (
	"strings"

	"github.com/go-errors/errors"
)

// Kind selects one of the drawing demos.
type Kind uint32

const (
	RGBBars Kind = iota
	Pixels
	Lines
	Circles
	FilledCircles
	Ellipses
	FilledEllipses
	Triangles
	FilledTriangles
	Rectangles
	FilledRectangles
	RoundRectangles
	FilledRoundRectangles
	Polygons
	FilledPolygons
	Characters
	Strings

	// Count is the number of demos.
	Count = int(Strings) + 1
)

var names = [Count]string{
	"RGB BARS",
	"PIXELS",
	"LINES",
	"CIRCLES",
	"FILLED CIRCLES",
	"ELLIPSES",
	"FILLED ELLIPSES",
	"TRIANGLES",
	"FILLED TRIANGLES",
	"RECTANGLES",
	"FILLED RECTANGLES",
	"ROUND RECTANGLES",
	"FILLED ROUND RECTANGLES",
	"POLYGONS",
	"FILLED POLYGONS",
	"CHARACTERS",
	"STRINGS",
}

// ErrUnknownKind is returned by Parse for names that match no demo.
var ErrUnknownKind error = errors.New("demo: unknown kind")

// String returns the primitive name shown in the overlay.
func (k Kind) String() string {
	if !k.Valid() {
		return "UNKNOWN"
	}
	return names[k]
}

// Valid reports whether k names a demo.
func (k Kind) Valid() bool { return int(k) < Count }

// Next returns the demo after k, wrapping around after the last one.
func (k Kind) Next() Kind { return Kind((int(k) + 1) % Count) }

// All returns every demo in display order.
func All() []Kind {
	kinds := make([]Kind, Count)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Parse looks a demo up by name. Matching ignores case, and dashes or
// underscores may stand in for spaces.
func Parse(name string) (Kind, error) {
	norm := strings.ToUpper(strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(name)))
	for i, n := range names {
		if n == norm {
			return Kind(i), nil
		}
	}
	return 0, errors.Errorf("%s: %w", name, ErrUnknownKind)
}

// Package demo holds the drawing demos cycled by the application.
//
// Every demo draws one primitive with random geometry. Coordinates cover the
// display plus a 20 pixel margin on every side so shapes are regularly clipped.
package demo

import (
	"image"
	"math/rand/v2"

	"github.com/sagostin/hagl-demo/pkg/hal"
)

// Margin is how far random coordinates reach beyond the display edges.
const Margin = 20

// Text is the string drawn by the Strings demo.
const Text = "YO¡ MTV raps ♥"

// Canvas is the drawing surface a demo renders to. Rectangle style arguments
// are inclusive corner pairs.
type Canvas interface {
	Width() int
	Height() int
	Color(r, g, b uint8) hal.Color
	SetClip(x0, y0, x1, y1 int)

	PutPixel(x, y int, c hal.Color)
	DrawLine(x0, y0, x1, y1 int, c hal.Color)
	DrawRectangle(x0, y0, x1, y1 int, c hal.Color)
	FillRectangle(x0, y0, x1, y1 int, c hal.Color)
	DrawRoundedRectangle(x0, y0, x1, y1, r int, c hal.Color)
	FillRoundedRectangle(x0, y0, x1, y1, r int, c hal.Color)
	DrawCircle(cx, cy, r int, c hal.Color)
	FillCircle(cx, cy, r int, c hal.Color)
	DrawEllipse(cx, cy, a, b int, c hal.Color)
	FillEllipse(cx, cy, a, b int, c hal.Color)
	DrawTriangle(x0, y0, x1, y1, x2, y2 int, c hal.Color)
	FillTriangle(x0, y0, x1, y1, x2, y2 int, c hal.Color)
	DrawPolygon(vertices []image.Point, c hal.Color)
	FillPolygon(vertices []image.Point, c hal.Color)

	PutChar(r rune, x, y int, c hal.Color) int
	PutText(text string, x, y int, c hal.Color) int
}

// Render draws one frame of demo k. Invalid kinds draw nothing.
func Render(k Kind, c Canvas, r *rand.Rand) {
	g := gen{r: r, w: c.Width(), h: c.Height()}

	switch k {
	case RGBBars:
		x1 := g.w / 3
		x2 := 2 * x1
		c.FillRectangle(0, 0, x1-1, g.h, c.Color(255, 0, 0))
		c.FillRectangle(x1, 0, x2-1, g.h, c.Color(0, 255, 0))
		c.FillRectangle(x2, 0, g.w, g.h, c.Color(0, 0, 255))
	case Pixels:
		c.PutPixel(g.x(), g.y(), g.color())
	case Lines:
		c.DrawLine(g.x(), g.y(), g.x(), g.y(), g.color())
	case Circles:
		c.DrawCircle(g.x(), g.y(), r.IntN(40), g.color())
	case FilledCircles:
		c.FillCircle(g.x(), g.y(), r.IntN(40), g.color())
	case Ellipses:
		c.DrawEllipse(g.x(), g.y(), g.axis(), g.axis(), g.color())
	case FilledEllipses:
		c.FillEllipse(g.x(), g.y(), g.axis(), g.axis(), g.color())
	case Triangles:
		c.DrawTriangle(g.x(), g.y(), g.x(), g.y(), g.x(), g.y(), g.color())
	case FilledTriangles:
		c.FillTriangle(g.x(), g.y(), g.x(), g.y(), g.x(), g.y(), g.color())
	case Rectangles:
		c.DrawRectangle(g.x(), g.y(), g.x(), g.y(), g.color())
	case FilledRectangles:
		c.FillRectangle(g.x(), g.y(), g.x(), g.y(), g.color())
	case RoundRectangles:
		c.DrawRoundedRectangle(g.x(), g.y(), g.x(), g.y(), r.IntN(10), g.color())
	case FilledRoundRectangles:
		c.FillRoundedRectangle(g.x(), g.y(), g.x(), g.y(), r.IntN(10), g.color())
	case Polygons:
		c.DrawPolygon(g.polygon(5), g.color())
	case FilledPolygons:
		c.FillPolygon(g.polygon(5), g.color())
	case Characters:
		c.PutChar(rune(r.IntN(127)), g.x(), g.y(), g.color())
	case Strings:
		c.PutText(Text, g.x()-60, g.y(), g.color())
	}
}

type gen struct {
	r    *rand.Rand
	w, h int
}

func (g gen) x() int { return g.r.IntN(g.w+2*Margin) - Margin }

func (g gen) y() int { return g.r.IntN(g.h+2*Margin) - Margin }

func (g gen) axis() int { return g.r.IntN(40) + 20 }

func (g gen) color() hal.Color { return hal.Color(g.r.IntN(0xffff)) }

func (g gen) polygon(n int) []image.Point {
	vertices := make([]image.Point, n)
	for i := range vertices {
		vertices[i] = image.Pt(g.x(), g.y())
	}
	return vertices
}

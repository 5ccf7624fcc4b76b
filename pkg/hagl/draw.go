package hagl

import (
	"image"
	"sort"
)

// hline draws the run (x0..x1, y) clipped to the clip window.
func (s *Surface) hline(x0, x1, y int, c Color) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	clip := *s.clip.Load()
	if y < clip.Min.Y || y >= clip.Max.Y {
		return
	}
	if x0 < clip.Min.X {
		x0 = clip.Min.X
	}
	if x1 >= clip.Max.X {
		x1 = clip.Max.X - 1
	}
	if x0 > x1 {
		return
	}
	s.backend.HLine(x0, y, x1-x0+1, c)
}

// vline draws the run (x, y0..y1) clipped to the clip window.
func (s *Surface) vline(x, y0, y1 int, c Color) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	clip := *s.clip.Load()
	if x < clip.Min.X || x >= clip.Max.X {
		return
	}
	if y0 < clip.Min.Y {
		y0 = clip.Min.Y
	}
	if y1 >= clip.Max.Y {
		y1 = clip.Max.Y - 1
	}
	for y := y0; y <= y1; y++ {
		s.backend.PutPixel(x, y, c)
	}
}

// DrawHLine draws a horizontal line of width w starting at (x, y).
func (s *Surface) DrawHLine(x, y, w int, c Color) {
	if w <= 0 {
		return
	}
	s.hline(x, x+w-1, y, c)
}

// DrawVLine draws a vertical line of height h starting at (x, y).
func (s *Surface) DrawVLine(x, y, h int, c Color) {
	if h <= 0 {
		return
	}
	s.vline(x, y, y+h-1, c)
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (s *Surface) DrawLine(x0, y0, x1, y1 int, c Color) {
	if y0 == y1 {
		s.hline(x0, x1, y0, c)
		return
	}
	if x0 == x1 {
		s.vline(x0, y0, y1, c)
		return
	}

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		s.PutPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func order(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

// DrawRectangle draws a rectangle outline with corners (x0, y0) and (x1, y1).
func (s *Surface) DrawRectangle(x0, y0, x1, y1 int, c Color) {
	x0, x1 = order(x0, x1)
	y0, y1 = order(y0, y1)
	s.hline(x0, x1, y0, c) // Top
	s.hline(x0, x1, y1, c) // Bottom
	s.vline(x0, y0, y1, c) // Left
	s.vline(x1, y0, y1, c) // Right
}

// FillRectangle fills the rectangle with corners (x0, y0) and (x1, y1).
func (s *Surface) FillRectangle(x0, y0, x1, y1 int, c Color) {
	x0, x1 = order(x0, x1)
	y0, y1 = order(y0, y1)
	clip := *s.clip.Load()
	if y0 < clip.Min.Y {
		y0 = clip.Min.Y
	}
	if y1 >= clip.Max.Y {
		y1 = clip.Max.Y - 1
	}
	for y := y0; y <= y1; y++ {
		s.hline(x0, x1, y, c)
	}
}

// DrawCircle draws a circle outline using the midpoint circle algorithm.
func (s *Surface) DrawCircle(cx, cy, r int, c Color) {
	x := r
	y := 0
	err := 0

	for x >= y {
		s.PutPixel(cx+x, cy+y, c)
		s.PutPixel(cx+y, cy+x, c)
		s.PutPixel(cx-y, cy+x, c)
		s.PutPixel(cx-x, cy+y, c)
		s.PutPixel(cx-x, cy-y, c)
		s.PutPixel(cx-y, cy-x, c)
		s.PutPixel(cx+y, cy-x, c)
		s.PutPixel(cx+x, cy-y, c)

		y++
		err += 1 + 2*y
		if 2*(err-x)+1 > 0 {
			x--
			err += 1 - 2*x
		}
	}
}

// FillCircle fills a circle: every pixel with dx*dx+dy*dy <= r*r.
func (s *Surface) FillCircle(cx, cy, r int, c Color) {
	for dy := -r; dy <= r; dy++ {
		dx := isqrt(r*r - dy*dy)
		s.hline(cx-dx, cx+dx, cy+dy, c)
	}
}

// isqrt returns the largest x with x*x <= n, or 0 for negative n.
func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

// DrawEllipse draws an ellipse outline centred on (cx, cy) with horizontal
// semi-axis a and vertical semi-axis b.
func (s *Surface) DrawEllipse(cx, cy, a, b int, c Color) {
	s.ellipse(cx, cy, a, b, func(dx, dy int) {
		s.PutPixel(cx+dx, cy+dy, c)
		s.PutPixel(cx-dx, cy+dy, c)
		s.PutPixel(cx+dx, cy-dy, c)
		s.PutPixel(cx-dx, cy-dy, c)
	})
}

// FillEllipse fills an ellipse centred on (cx, cy).
func (s *Surface) FillEllipse(cx, cy, a, b int, c Color) {
	s.ellipse(cx, cy, a, b, func(dx, dy int) {
		s.hline(cx-dx, cx+dx, cy+dy, c)
		s.hline(cx-dx, cx+dx, cy-dy, c)
	})
}

// ellipse walks one quadrant of the midpoint ellipse and calls plot for every
// boundary point (dx, dy) relative to the centre.
func (s *Surface) ellipse(cx, cy, a, b int, plot func(dx, dy int)) {
	if a <= 0 || b <= 0 {
		plot(max(a, 0), 0)
		return
	}
	a2, b2 := a*a, b*b
	x, y := 0, b
	dx, dy := 0, 2*a2*y

	// Region 1: slope > -1
	d1 := b2 - a2*b + a2/4
	for dx < dy {
		plot(x, y)
		x++
		dx += 2 * b2
		if d1 < 0 {
			d1 += dx + b2
		} else {
			y--
			dy -= 2 * a2
			d1 += dx - dy + b2
		}
	}

	// Region 2: slope <= -1
	d2 := b2*(2*x+1)*(2*x+1)/4 + a2*(y-1)*(y-1) - a2*b2
	for y >= 0 {
		plot(x, y)
		y--
		dy -= 2 * a2
		if d2 > 0 {
			d2 += a2 - dy
		} else {
			x++
			dx += 2 * b2
			d2 += dx - dy + a2
		}
	}
}

// DrawTriangle draws a triangle outline.
func (s *Surface) DrawTriangle(x0, y0, x1, y1, x2, y2 int, c Color) {
	s.DrawLine(x0, y0, x1, y1, c)
	s.DrawLine(x1, y1, x2, y2, c)
	s.DrawLine(x2, y2, x0, y0, c)
}

// FillTriangle fills a triangle.
func (s *Surface) FillTriangle(x0, y0, x1, y1, x2, y2 int, c Color) {
	s.FillPolygon([]image.Point{{X: x0, Y: y0}, {X: x1, Y: y1}, {X: x2, Y: y2}}, c)
}

// DrawRoundedRectangle draws a rectangle outline with rounded corners of radius r.
func (s *Surface) DrawRoundedRectangle(x0, y0, x1, y1, r int, c Color) {
	x0, x1 = order(x0, x1)
	y0, y1 = order(y0, y1)
	r = cornerRadius(x0, y0, x1, y1, r)

	// Edges excluding corners
	s.hline(x0+r, x1-r, y0, c)
	s.hline(x0+r, x1-r, y1, c)
	s.vline(x0, y0+r, y1-r, c)
	s.vline(x1, y0+r, y1-r, c)
	// Corners
	s.drawCorner(x1-r, y1-r, r, 0, c) // Bottom-right
	s.drawCorner(x0+r, y1-r, r, 1, c) // Bottom-left
	s.drawCorner(x0+r, y0+r, r, 2, c) // Top-left
	s.drawCorner(x1-r, y0+r, r, 3, c) // Top-right
}

// FillRoundedRectangle fills a rectangle with rounded corners of radius r.
func (s *Surface) FillRoundedRectangle(x0, y0, x1, y1, r int, c Color) {
	x0, x1 = order(x0, x1)
	y0, y1 = order(y0, y1)
	r = cornerRadius(x0, y0, x1, y1, r)

	for y := y0; y <= y1; y++ {
		inset := 0
		switch {
		case y < y0+r:
			d := y0 + r - y
			inset = r - isqrt(r*r-d*d)
		case y > y1-r:
			d := y - (y1 - r)
			inset = r - isqrt(r*r-d*d)
		}
		s.hline(x0+inset, x1-inset, y, c)
	}
}

func cornerRadius(x0, y0, x1, y1, r int) int {
	if r < 0 {
		r = 0
	}
	if m := (x1 - x0) / 2; r > m {
		r = m
	}
	if m := (y1 - y0) / 2; r > m {
		r = m
	}
	return r
}

// drawCorner draws a quarter circle for rounded rectangle corners.
// quadrant: 0=bottom-right, 1=bottom-left, 2=top-left, 3=top-right
func (s *Surface) drawCorner(cx, cy, r, quadrant int, c Color) {
	x := r
	y := 0
	err := 0

	for x >= y {
		switch quadrant {
		case 0: // Bottom-right
			s.PutPixel(cx+x, cy+y, c)
			s.PutPixel(cx+y, cy+x, c)
		case 1: // Bottom-left
			s.PutPixel(cx-x, cy+y, c)
			s.PutPixel(cx-y, cy+x, c)
		case 2: // Top-left
			s.PutPixel(cx-x, cy-y, c)
			s.PutPixel(cx-y, cy-x, c)
		case 3: // Top-right
			s.PutPixel(cx+x, cy-y, c)
			s.PutPixel(cx+y, cy-x, c)
		}

		y++
		err += 1 + 2*y
		if 2*(err-x)+1 > 0 {
			x--
			err += 1 - 2*x
		}
	}
}

// DrawPolygon draws a closed polygon outline through the vertices.
func (s *Surface) DrawPolygon(vertices []image.Point, c Color) {
	n := len(vertices)
	if n == 0 {
		return
	}
	for i := 0; i < n; i++ {
		a, b := vertices[i], vertices[(i+1)%n]
		s.DrawLine(a.X, a.Y, b.X, b.Y, c)
	}
}

// FillPolygon fills a polygon using even-odd scanline filling. Self-intersecting
// polygons are supported.
func (s *Surface) FillPolygon(vertices []image.Point, c Color) {
	n := len(vertices)
	if n < 3 {
		s.DrawPolygon(vertices, c)
		return
	}

	minY, maxY := vertices[0].Y, vertices[0].Y
	for _, v := range vertices[1:] {
		minY = min(minY, v.Y)
		maxY = max(maxY, v.Y)
	}
	clip := *s.clip.Load()
	minY = max(minY, clip.Min.Y)
	maxY = min(maxY, clip.Max.Y-1)

	nodes := make([]int, 0, n)
	for y := minY; y <= maxY; y++ {
		nodes = nodes[:0]
		j := n - 1
		for i := 0; i < n; i++ {
			a, b := vertices[i], vertices[j]
			if (a.Y <= y && b.Y > y) || (b.Y <= y && a.Y > y) {
				x := a.X + (y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
				nodes = append(nodes, x)
			}
			j = i
		}
		sort.Ints(nodes)
		for k := 0; k+1 < len(nodes); k += 2 {
			s.hline(nodes[k], nodes[k+1], y, c)
		}
	}
	// Top-most and bottom-most edges are not crossed by the half-open scanline
	// test, so stroke the outline as well.
	s.DrawPolygon(vertices, c)
}

package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/tsawler/tabextract/model"
	"github.com/tsawler/tabextract/page"
)

// darkThreshold is the gray level below which a pixel counts as ink
const darkThreshold = 128

// Render draws the rulings of p and the outlines of its fills into a
// grayscale image, on top of the page's scanned image when it has one. One
// page unit becomes scale pixels. The image bounds are the page area in
// pixel space, so pixel (x, y) covers page point (x/scale, y/scale).
func Render(p *page.Page, scale float64) *image.Gray {
	area := p.Bounds()
	bounds := image.Rect(
		int(math.Floor(area.Left()*scale)),
		int(math.Floor(area.Top()*scale)),
		int(math.Ceil(area.Right()*scale)),
		int(math.Ceil(area.Bottom()*scale)),
	)
	img := image.NewGray(bounds)
	draw.Draw(img, bounds, image.White, image.Point{}, draw.Src)
	if bounds.Empty() {
		return img
	}
	if scan := p.Image(); scan != nil {
		xdraw.ApproxBiLinear.Scale(img, bounds, scan, scan.Bounds(), xdraw.Src, nil)
	}

	thickness := math.Max(1, scale)
	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	origin := model.Point{X: float64(bounds.Min.X), Y: float64(bounds.Min.Y)}

	for _, r := range p.Rulings() {
		addRuling(z, r, scale, thickness, origin)
	}
	for _, f := range p.Fills() {
		for _, edge := range model.BorderRulings(f.Rect) {
			addRuling(z, edge, scale, thickness, origin)
		}
	}

	z.Draw(img, bounds, image.NewUniform(color.Black), bounds.Min)
	return img
}

// addRuling adds a ruling as a filled bar of the given pixel thickness,
// centered on the ruling and running its full length
func addRuling(z *vector.Rasterizer, r model.Ruling, scale, thickness float64, origin model.Point) {
	half := thickness / 2
	var x0, y0, x1, y1 float64
	if r.Horizontal() {
		y := r.Position() * scale
		x0, x1 = r.Start.X*scale, r.End.X*scale
		y0, y1 = y-half, y+half
	} else {
		x := r.Position() * scale
		y0, y1 = r.Start.Y*scale, r.End.Y*scale
		x0, x1 = x-half, x+half
	}
	x0, x1 = x0-origin.X, x1-origin.X
	y0, y1 = y0-origin.Y, y1-origin.Y

	z.MoveTo(float32(x0), float32(y0))
	z.LineTo(float32(x1), float32(y0))
	z.LineTo(float32(x1), float32(y1))
	z.LineTo(float32(x0), float32(y1))
	z.ClosePath()
}

// segment is a run of dark pixels on one row or column
type segment struct {
	pos      int // row for horizontal runs, column for vertical ones
	from, to int // inclusive pixel range along the run
}

// band is a stack of overlapping runs on adjacent rows or columns
type band struct {
	first, last int
	from, to    int
}

// FindRulings recovers horizontal and vertical rulings from dark pixel runs
// of at least minLength page units. Runs on adjacent rows (or columns) that
// overlap are one thick line and yield a single ruling through its middle.
// Horizontal rulings come first, top to bottom, then vertical ones, left
// to right.
func FindRulings(img *image.Gray, scale, minLength float64) []model.Ruling {
	b := img.Bounds()
	minPixels := int(math.Ceil(minLength * scale))
	if minPixels < 1 {
		minPixels = 1
	}

	var rows, cols []segment
	for y := b.Min.Y; y < b.Max.Y; y++ {
		rows = appendRuns(rows, y, b.Min.X, b.Max.X, minPixels, func(x int) bool {
			return img.GrayAt(x, y).Y < darkThreshold
		})
	}
	for x := b.Min.X; x < b.Max.X; x++ {
		cols = appendRuns(cols, x, b.Min.Y, b.Max.Y, minPixels, func(y int) bool {
			return img.GrayAt(x, y).Y < darkThreshold
		})
	}

	var out []model.Ruling
	for _, bd := range mergeBands(rows) {
		y := (float64(bd.first+bd.last)/2 + 0.5) / scale
		out = append(out, model.HorizontalRuling(y, float64(bd.from)/scale, float64(bd.to+1)/scale))
	}
	for _, bd := range mergeBands(cols) {
		x := (float64(bd.first+bd.last)/2 + 0.5) / scale
		out = append(out, model.VerticalRuling(x, float64(bd.from)/scale, float64(bd.to+1)/scale))
	}
	return out
}

func appendRuns(out []segment, pos, from, to, minPixels int, dark func(int) bool) []segment {
	start := -1
	for i := from; i <= to; i++ {
		if i < to && dark(i) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= minPixels {
			out = append(out, segment{pos: pos, from: start, to: i - 1})
		}
		start = -1
	}
	return out
}

func mergeBands(segs []segment) []band {
	var open, done []band
	for _, s := range segs {
		merged := false
		for i := range open {
			bd := &open[i]
			if s.pos-bd.last <= 1 && s.from <= bd.to && s.to >= bd.from {
				bd.last = s.pos
				bd.from = min(bd.from, s.from)
				bd.to = max(bd.to, s.to)
				merged = true
				break
			}
		}
		if !merged {
			open = append(open, band{first: s.pos, last: s.pos, from: s.from, to: s.to})
		}

		// Bands that did not grow on the previous line are finished.
		kept := open[:0]
		for _, bd := range open {
			if s.pos-bd.last > 1 {
				done = append(done, bd)
			} else {
				kept = append(kept, bd)
			}
		}
		open = kept
	}
	done = append(done, open...)

	sort.SliceStable(done, func(i, j int) bool {
		if done[i].first != done[j].first {
			return done[i].first < done[j].first
		}
		return done[i].from < done[j].from
	})
	return done
}

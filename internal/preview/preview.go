// Package preview rasterizes one routed unit layer for visual inspection:
// keep-in outline, fixed and die-shifted obstacles, and the unit's routes.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"panel-router/internal/design"
	"panel-router/internal/obstacle"
	"panel-router/internal/router"
	"panel-router/pkg/geometry"

	"golang.org/x/image/tiff"
	"golang.org/x/image/vector"
)

// ErrNotFound is returned when the unit or layer to render does not exist.
var ErrNotFound = errors.New("nothing to preview")

var (
	colorBackground = color.RGBA{R: 16, G: 16, B: 24, A: 255}
	colorKeepIn     = color.RGBA{R: 90, G: 90, B: 110, A: 255}
	colorFixed      = color.RGBA{R: 184, G: 115, B: 51, A: 255}
	colorDynamic    = color.RGBA{R: 230, G: 170, B: 40, A: 255}
	colorRoute      = color.RGBA{R: 60, G: 200, B: 90, A: 255}
	colorVertex     = color.RGBA{R: 240, G: 240, B: 240, A: 255}
)

// Options controls the raster size.
type Options struct {
	// Scale is pixels per design unit.
	Scale float64
	// Margin is the border in pixels around the keep-in region.
	Margin int
	// Vertices marks every route vertex with a dot.
	Vertices bool
}

// DefaultOptions returns a 1:1 raster with a small border.
func DefaultOptions() Options {
	return Options{Scale: 1, Margin: 8, Vertices: true}
}

// canvas maps design coordinates onto an image with y pointing up.
type canvas struct {
	img    *image.RGBA
	z      *vector.Rasterizer
	origin geometry.Point2D
	scale  float64
	margin float64
	height float64
}

func (c *canvas) toPixel(p geometry.Point2D) (float32, float32) {
	x := (p.X-c.origin.X)*c.scale + c.margin
	y := c.height - ((p.Y-c.origin.Y)*c.scale + c.margin)
	return float32(x), float32(y)
}

func (c *canvas) fill(poly []geometry.Point2D, col color.Color) {
	if len(poly) < 3 {
		return
	}
	b := c.img.Bounds()
	c.z.Reset(b.Dx(), b.Dy())
	c.z.DrawOp = draw.Over
	x, y := c.toPixel(poly[0])
	c.z.MoveTo(x, y)
	for _, p := range poly[1:] {
		x, y = c.toPixel(p)
		c.z.LineTo(x, y)
	}
	c.z.ClosePath()
	c.z.Draw(c.img, b, image.NewUniform(col), image.Point{})
}

// minWidth keeps hairline geometry visible at small scales.
func (c *canvas) minWidth(w float64) float64 {
	return math.Max(w, 1/c.scale)
}

func (c *canvas) circle(center geometry.Point2D, r float64, col color.Color) {
	c.fill(geometry.GenerateCirclePoints(center.X, center.Y, c.minWidth(r), 24), col)
}

// segment draws a line of the given width with round caps.
func (c *canvas) segment(a, b geometry.Point2D, width float64, col color.Color) {
	hw := c.minWidth(width) / 2
	c.circle(a, hw, col)
	c.circle(b, hw, col)
	d := b.Sub(a)
	l := math.Hypot(d.X, d.Y)
	if l == 0 {
		return
	}
	n := geometry.Point2D{X: -d.Y / l * hw, Y: d.X / l * hw}
	c.fill([]geometry.Point2D{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)}, col)
}

func (c *canvas) outline(r geometry.Rect, col color.Color) {
	w := 1 / c.scale
	corners := []geometry.Point2D{
		{X: r.MinX(), Y: r.MinY()}, {X: r.MaxX(), Y: r.MinY()},
		{X: r.MaxX(), Y: r.MaxY()}, {X: r.MinX(), Y: r.MaxY()},
	}
	for i := range corners {
		c.segment(corners[i], corners[(i+1)%len(corners)], w, col)
	}
}

// Render draws layer layerNumber of res.Units[unitIndex].
func Render(d *design.Design, res *router.Results, unitIndex, layerNumber int, opts Options) (*image.RGBA, error) {
	if unitIndex < 0 || unitIndex >= len(res.Units) {
		return nil, fmt.Errorf("%w: unit index %d of %d", ErrNotFound, unitIndex, len(res.Units))
	}
	layer, ok := d.LayerByNumber(layerNumber)
	if !ok {
		return nil, fmt.Errorf("%w: design has no layer %d", ErrNotFound, layerNumber)
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	ru := &res.Units[unitIndex]

	keepIn := d.Rules.RouteKeepIn
	w := int(math.Ceil(keepIn.Width*opts.Scale)) + 2*opts.Margin
	h := int(math.Ceil(keepIn.Height*opts.Scale)) + 2*opts.Margin
	c := &canvas{
		img:    image.NewRGBA(image.Rect(0, 0, w, h)),
		z:      vector.NewRasterizer(w, h),
		origin: geometry.Point2D{X: keepIn.MinX(), Y: keepIn.MinY()},
		scale:  opts.Scale,
		margin: float64(opts.Margin),
		height: float64(h),
	}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)
	c.outline(keepIn, colorKeepIn)

	set := obstacle.NewLayer(d, layer).Unit(ru.Unit.DieTransforms(d))
	for _, p := range set.Paths {
		c.segment(p.From, p.To, p.TraceWidth, colorFixed)
	}
	for _, p := range set.Pads {
		c.circle(p.Center, p.Radius, colorFixed)
	}
	for _, p := range set.DynamicPaths {
		c.segment(p.From, p.To, p.TraceWidth, colorDynamic)
	}
	for _, p := range set.DynamicPads {
		c.circle(p.Center, p.Radius, colorDynamic)
	}

	rl, ok := ru.Layer(layerNumber)
	if !ok {
		return c.img, nil
	}
	for _, r := range rl.Routes {
		if !r.Good || r.RouteIndex >= len(layer.Routes) {
			continue
		}
		width := layer.Routes[r.RouteIndex].TraceWidth
		for k := 1; k < len(r.Points); k++ {
			c.segment(r.Points[k-1].ToFloat(), r.Points[k].ToFloat(), width, colorRoute)
		}
		if len(r.Points) == 1 {
			c.circle(r.Points[0].ToFloat(), width/2, colorRoute)
		}
		if opts.Vertices {
			for _, p := range r.Points {
				c.circle(p.ToFloat(), 1.5/opts.Scale, colorVertex)
			}
		}
	}
	return c.img, nil
}

// WriteImage saves img as TIFF for .tif and .tiff paths and PNG otherwise.
func WriteImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		err = tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

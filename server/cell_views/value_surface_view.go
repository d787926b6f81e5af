package cell_views

import (
	"fmt"
	"html/template"
	"math"

	"qmaze/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// ValueSurface plots the max action values as a 3d surface (col, row, value)
// under an isometric projection.
type ValueSurface struct {
	id      string
	cellDim float64 // cell height/width in pixels
	// Height of the largest absolute value, in cells.
	zspan   float64
	updates <-chan []fastview.EleUpdate
}

// The angle of the x and y axes.
var (
	ang            = math.Pi / 6
	sinAng, cosAng = math.Sin(ang), math.Cos(ang)
)

func NewValueSurface(
	done <-chan struct{},
	boards <-chan *Board,
) *ValueSurface {
	vs := &ValueSurface{
		id:      "valuesurface",
		cellDim: 40,
		zspan:   2,
	}
	vs.updates = channerics.Convert(done, boards, vs.onUpdate)
	return vs
}

func (vs *ValueSurface) Updates() <-chan []fastview.EleUpdate {
	return vs.updates
}

type polygon struct {
	Id     string
	Fill   string
	xs, ys [4]float64
}

// Points returns a string suitable for the svg-polygon 'points' attribute.
// The values are truncated to ints.
func (p *polygon) Points() string {
	return fmt.Sprintf("%d,%d %d,%d %d,%d %d,%d",
		int(p.xs[0]), int(p.ys[0]),
		int(p.xs[1]), int(p.ys[1]),
		int(p.xs[2]), int(p.ys[2]),
		int(p.xs[3]), int(p.ys[3]),
	)
}

// surface is the svg content of the view for one board.
type surface struct {
	Width, Height int
	Transform     string
	Polygons      []*polygon
}

func (vs *ValueSurface) project(cell Cell, zscale float64) (float64, float64) {
	x, y := float64(cell.Col), float64(cell.Row)
	sx := (x - y) * cosAng * vs.cellDim
	sy := (x+y)*sinAng*vs.cellDim - cell.Max*zscale
	return sx, sy
}

// surface builds one polygon per four adjacent cells. Polygons are ordered back to
// front, such that nearer polygons obscure farther ones.
func (vs *ValueSurface) surface(board *Board) *surface {
	rows, cols := len(board.Cells), len(board.Cells[0])
	sf := &surface{
		Width:  int(float64(cols) * vs.cellDim * 2),
		Height: int(float64(rows) * vs.cellDim * 2),
	}

	minVal, maxVal, maxAbs := math.MaxFloat64, -math.MaxFloat64, 0.0
	for _, row := range board.Cells {
		for _, cell := range row {
			minVal = math.Min(minVal, cell.Max)
			maxVal = math.Max(maxVal, cell.Max)
			maxAbs = math.Max(maxAbs, math.Abs(cell.Max))
		}
	}
	zscale := 0.0
	if maxAbs > 0 {
		zscale = vs.zspan * vs.cellDim / maxAbs
	}

	xmin, ymin := math.MaxFloat64, math.MaxFloat64
	xmax, ymax := -math.MaxFloat64, -math.MaxFloat64
	for r := 0; r < rows-1; r++ {
		for c := 0; c < cols-1; c++ {
			corners := [4]Cell{
				board.Cells[r+1][c],
				board.Cells[r][c],
				board.Cells[r][c+1],
				board.Cells[r+1][c+1],
			}
			poly := &polygon{Id: fmt.Sprintf("%d-%d-value-polygon", r, c)}
			sum := 0.0
			for i, corner := range corners {
				poly.xs[i], poly.ys[i] = vs.project(corner, zscale)
				xmin, xmax = math.Min(xmin, poly.xs[i]), math.Max(xmax, poly.xs[i])
				ymin, ymax = math.Min(ymin, poly.ys[i]), math.Max(ymax, poly.ys[i])
				sum += corner.Max
			}
			poly.Fill = getRGBFill(sum/4, minVal, maxVal)
			sf.Polygons = append(sf.Polygons, poly)
		}
	}

	if len(sf.Polygons) == 0 {
		sf.Transform = "translate(0 0)"
		return sf
	}

	// Scale down to fit the full plot in view, but only if needed.
	scaler := math.Min(
		math.Min(
			float64(sf.Width)/(xmax-xmin),
			float64(sf.Height)/math.Max(ymax-ymin, 1),
		),
		1.0,
	)
	sf.Transform = fmt.Sprintf("scale(%f) translate(%d %d)", scaler, int(-xmin), int(-ymin))
	return sf
}

// getRGBFill shades from blue (minVal) to red (maxVal) by where avgVal lies between them.
func getRGBFill(avgVal, minVal, maxVal float64) string {
	redPct := 50
	if maxVal > minVal {
		redPct = int(100.0 * (avgVal - minVal) / (maxVal - minVal))
	}
	return fmt.Sprintf("rgb(%d%%,0%%,%d%%)", redPct, 100-redPct)
}

func (vs *ValueSurface) onUpdate(board *Board) (ops []fastview.EleUpdate) {
	sf := vs.surface(board)
	for _, poly := range sf.Polygons {
		ops = append(ops, fastview.EleUpdate{
			EleId: poly.Id,
			Ops: []fastview.Op{
				{Key: "points", Value: poly.Points()},
				{Key: "fill", Value: poly.Fill},
			},
		})
	}
	ops = append(ops, fastview.EleUpdate{
		EleId: vs.id + "-group",
		Ops: []fastview.Op{
			{Key: "transform", Value: sf.Transform},
		},
	})
	return
}

// Parse defines the surface svg; the template expects a *Board.
func (vs *ValueSurface) Parse(
	t *template.Template,
) (name string, err error) {
	name = vs.id
	_, err = t.Funcs(template.FuncMap{
		"valueSurface": vs.surface,
	}).Parse(
		`{{ define "` + name + `" }}
		{{ $surface := valueSurface . }}
		<div style="padding:40px;">
			<svg id="` + vs.id + `" xmlns='http://www.w3.org/2000/svg'
				width="{{ $surface.Width }}px"
				height="{{ $surface.Height }}px"
				style="shape-rendering: crispEdges; stroke: lightgrey; stroke-opacity: 1.0; stroke-width: 2;">
				<g id="` + vs.id + `-group" transform="{{ $surface.Transform }}">
				{{ range $poly := $surface.Polygons }}
					<polygon id="{{ $poly.Id }}"
						fill="{{ $poly.Fill }}" fill-opacity="1.0"
						points="{{ $poly.Points }}" />
				{{ end }}
				</g>
			</svg>
		</div>
		{{ end }}`)
	return
}

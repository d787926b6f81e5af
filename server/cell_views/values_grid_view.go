package cell_views

import (
	"fmt"
	"html/template"

	"qmaze/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// ValuesGrid shows each cell's max action value and its greedy action.
type ValuesGrid struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewValuesGrid(
	done <-chan struct{},
	boards <-chan *Board,
) *ValuesGrid {
	vg := &ValuesGrid{id: "valuesgrid"}
	vg.updates = channerics.Convert(done, boards, vg.onUpdate)
	return vg
}

func (vg *ValuesGrid) Updates() <-chan []fastview.EleUpdate {
	return vg.updates
}

func valueTextId(cell Cell) string {
	return fmt.Sprintf("%d-%d-value-text", cell.Row, cell.Col)
}

func policyArrowId(cell Cell) string {
	return fmt.Sprintf("%d-%d-policy-arrow", cell.Row, cell.Col)
}

// Returns the set of view updates needed for the view to reflect the current values.
func (vg *ValuesGrid) onUpdate(board *Board) (ops []fastview.EleUpdate) {
	for _, row := range board.Cells {
		for _, cell := range row {
			ops = append(ops, fastview.EleUpdate{
				EleId: valueTextId(cell),
				Ops: []fastview.Op{
					{Key: "textContent", Value: fmt.Sprintf("%.2f", cell.Max)},
				},
			})
			// Terminal cells are never updated, so neither is their arrow.
			if !cell.Floor {
				continue
			}
			ops = append(ops, fastview.EleUpdate{
				EleId: policyArrowId(cell),
				Ops: []fastview.Op{
					{Key: "transform", Value: fmt.Sprintf("rotate(%d)", cell.PolicyArrowRotation)},
				},
			})
		}
	}
	return
}

// Parse defines the grid of cells as an svg; the template expects a *Board.
func (vg *ValuesGrid) Parse(
	t *template.Template,
) (name string, err error) {
	name = vg.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<div id="state_values">
			{{ $rows := len .Cells }}
			{{ $cols := len (index .Cells 0) }}
			{{ $cell_width := 60 }}
			{{ $cell_height := $cell_width }}
			{{ $width := mult $cell_width $cols }}
			{{ $height := mult $cell_height $rows }}
			{{ $half_height := div $cell_height 2 }}
			{{ $half_width := div $cell_width 2 }}
			<svg id="` + vg.id + `"
				width="{{ add $width 1 }}px"
				height="{{ add $height 1 }}px"
				style="shape-rendering: crispEdges;">
				{{ range $row := .Cells }}
					{{ range $cell := $row }}
					<g>
						<rect
							x="{{ mult $cell.Col $cell_width }}"
							y="{{ mult $cell.Row $cell_height }}"
							width="{{ $cell_width }}"
							height="{{ $cell_height }}"
							fill="{{ $cell.Fill }}"
							stroke="black"
							stroke-width="1"/>
						<text id="{{ $cell.Row }}-{{ $cell.Col }}-value-text"
							x="{{ add (mult $cell.Col $cell_width) $half_width }}"
							y="{{ add (mult $cell.Row $cell_height) (sub $half_height 8) }}"
							font-size="12"
							dominant-baseline="text-top" text-anchor="middle"
							>{{ printf "%.2f" $cell.Max }}</text>
						{{ if $cell.Floor }}
						<g transform="translate({{ add (mult $cell.Col $cell_width) $half_width }}, {{ add (mult $cell.Row $cell_height) (add $half_height 12) }})">
							<text id="{{ $cell.Row }}-{{ $cell.Col }}-policy-arrow"
							stroke="blue" stroke-width="1"
							dominant-baseline="central" text-anchor="middle"
							transform="rotate({{ $cell.PolicyArrowRotation }})"
							>&uarr;</text>
						</g>
						{{ end }}
					</g>
					{{ end }}
				{{ end }}
			</svg>
		</div>
		{{ end }}`)
	return
}

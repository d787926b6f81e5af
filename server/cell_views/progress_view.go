package cell_views

import (
	"fmt"
	"html/template"

	"qmaze/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// Progress shows the most recently finished episode.
type Progress struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewProgress(
	done <-chan struct{},
	boards <-chan *Board,
) *Progress {
	pv := &Progress{id: "progress"}
	pv.updates = channerics.Convert(done, boards, pv.onUpdate)
	return pv
}

func (pv *Progress) Updates() <-chan []fastview.EleUpdate {
	return pv.updates
}

func (pv *Progress) onUpdate(board *Board) []fastview.EleUpdate {
	text := func(suffix, value string) fastview.EleUpdate {
		return fastview.EleUpdate{
			EleId: pv.id + "-" + suffix,
			Ops:   []fastview.Op{{Key: "textContent", Value: value}},
		}
	}
	return []fastview.EleUpdate{
		text("episode", fmt.Sprintf("%d", board.Episode)),
		text("steps", fmt.Sprintf("%d", board.Steps)),
		text("outcome", board.Outcome),
	}
}

func (pv *Progress) Parse(
	t *template.Template,
) (name string, err error) {
	name = pv.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<div id="` + pv.id + `" style="font-family: monospace; padding: 10px;">
			Episode <span id="` + pv.id + `-episode">{{ .Episode }}</span>:
			<span id="` + pv.id + `-steps">{{ .Steps }}</span> steps,
			<span id="` + pv.id + `-outcome">{{ .Outcome }}</span>
		</div>
		{{ end }}`)
	return
}

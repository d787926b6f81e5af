package fastview

import (
	"context"
	"fmt"
	"html/template"
	"testing"

	channerics "github.com/niceyeti/channerics/channels"
	. "github.com/smartystreets/goconvey/convey"
)

type testView struct {
	name    string
	updates <-chan []EleUpdate
}

func newTestView(name string) ViewBuilderFunc[string] {
	return func(done <-chan struct{}, models <-chan string) ViewComponent {
		return &testView{
			name: name,
			updates: channerics.Convert(done, models, func(model string) []EleUpdate {
				return []EleUpdate{{EleId: name, Ops: []Op{{Key: "textContent", Value: model}}}}
			}),
		}
	}
}

func (tv *testView) Updates() <-chan []EleUpdate {
	return tv.updates
}

func (tv *testView) Parse(t *template.Template) (string, error) {
	_, err := t.Parse(`{{ define "` + tv.name + `" }}<p id="` + tv.name + `">{{ . }}</p>{{ end }}`)
	return tv.name, err
}

func TestViewBuilder(t *testing.T) {
	Convey("Given a view builder", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		input := make(chan int)
		toString := func(i int) string { return fmt.Sprintf("value-%d", i) }

		Convey("When no views are added", func() {
			_, err := NewViewBuilder[int, string]().
				WithContext(ctx).
				WithModel(input, toString).
				Build()
			So(err, ShouldEqual, ErrNoViews)
		})

		Convey("When no model is set", func() {
			_, err := NewViewBuilder[int, string]().
				WithContext(ctx).
				WithView(newTestView("a")).
				Build()
			So(err, ShouldEqual, ErrNoModel)
		})

		Convey("When the builder succeeds", func() {
			views, err := NewViewBuilder[int, string]().
				WithContext(ctx).
				WithModel(input, toString).
				WithView(newTestView("a")).
				WithView(newTestView("b")).
				Build()
			So(err, ShouldBeNil)
			So(len(views), ShouldEqual, 2)

			Convey("Every view receives each converted model", func() {
				go func() {
					input <- 42
				}()
				for i, view := range views {
					updates := <-view.Updates()
					So(len(updates), ShouldEqual, 1)
					So(updates[0].EleId, ShouldEqual, []string{"a", "b"}[i])
					So(updates[0].Ops[0].Value, ShouldEqual, "value-42")
				}
			})
		})
	})
}

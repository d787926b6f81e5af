// fastview implements a builder pattern for simple server-side views:
// given an input data model, convert it to a view-model, then multiplex
// that view-model to one or more views whose element updates are pushed
// to the browser.
package fastview

import (
	"html/template"
)

// EleUpdate is an element identifier and a set of operations to apply to its attributes/content.
type EleUpdate struct {
	// The id by which to find the element
	EleId string
	// Op keys are attribute keys or 'textContent', values are the strings to which these are set.
	// Example: ('fill','red') sets attribute 'fill' to red; ('textContent','abc') sets ele.textContent.
	Ops []Op
}

// Op is a key and value. For example an html attribute and its new value.
type Op struct {
	Key   string
	Value string
}

// ViewComponent is a server side view: Parse adds its initial form to a page template,
// and Updates is the chan by which its ele-updates are published.
type ViewComponent interface {
	Updates() <-chan []EleUpdate
	// Parse adds the view-component to the passed parent template, inheriting its func-map,
	// and returns the name of the template it defined.
	Parse(*template.Template) (string, error)
}

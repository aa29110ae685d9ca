package render

import (
	"html/template"
	"strings"
)

// Verb is the HTTP method an element issues when triggered.
type Verb string

const (
	VerbGet    Verb = "get"
	VerbPost   Verb = "post"
	VerbPut    Verb = "put"
	VerbDelete Verb = "delete"
)

// Swap is how a response fragment replaces its target.
type Swap string

const (
	// SwapInnerHTML replaces the target's contents.
	SwapInnerHTML Swap = "innerHTML"
	// SwapOuterHTML replaces the whole target element.
	SwapOuterHTML Swap = "outerHTML"
	// SwapBeforeEnd appends inside the target.
	SwapBeforeEnd Swap = "beforeend"
)

// Trigger declares what an interactive element does: which URL it calls with which verb,
// on which DOM event, and where and how the response is placed.
type Trigger struct {
	Verb    Verb
	URL     string
	Event   string
	Target  string
	Swap    Swap
	Include string
}

// Attrs renders the trigger as hx-* attributes for use inside a start tag.
// A trigger with an unknown verb renders no request attribute at all.
func (t Trigger) Attrs() template.HTMLAttr {
	var b strings.Builder
	attr := func(name, value string) {
		if value == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(template.HTMLEscapeString(value))
		b.WriteByte('"')
	}

	switch t.Verb {
	case VerbGet, VerbPost, VerbPut, VerbDelete:
		attr("hx-"+string(t.Verb), t.URL)
	}
	attr("hx-trigger", t.Event)
	attr("hx-target", t.Target)
	attr("hx-swap", string(t.Swap))
	attr("hx-include", t.Include)
	return template.HTMLAttr(b.String())
}

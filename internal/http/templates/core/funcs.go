// Package core provides the template helpers shared by every portal page.
package core

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gitnudge/portal/internal/http/ui/viewmodel"
)

// Deps holds dependencies for constructing the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
}

// Funcs returns the template.FuncMap used by the layout, pages and partials.
func Funcs(deps Deps) template.FuncMap {
	return template.FuncMap{
		"sectionTmpl":   deps.ContentTemplateFor,
		"renderSection": renderSectionFunc(deps),
		"timeTag":       TimeTag,
		"navClass":      NavClass,
		"fieldError":    FieldError,
		"selectedIf":    func(a, b string) bool { return a == b },
	}
}

func renderSectionFunc(deps Deps) func(string, any) (template.HTML, error) {
	return func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - output of our own html/template execution, already escaped
		return template.HTML(buf.String()), nil
	}
}

// TimeTag renders t as a <time> element in the viewer's locale-neutral form.
func TimeTag(t time.Time) template.HTML {
	if t.IsZero() {
		return ""
	}
	// #nosec G203 - built from formatted timestamps only, escaped below
	return template.HTML(fmt.Sprintf(
		`<time datetime="%s">%s</time>`,
		t.UTC().Format(time.RFC3339),
		template.HTMLEscapeString(t.Local().Format("Jan 2, 2006 3:04 PM")),
	))
}

// NavClass returns the CSS classes for a header entry.
func NavClass(item viewmodel.NavItem, locked bool) string {
	classes := []string{"nav-item"}
	if item.Active {
		classes = append(classes, "active")
	}
	if locked && item.Gated {
		classes = append(classes, "disabled")
	}
	return strings.Join(classes, " ")
}

// FieldError returns the message for field, or "".
func FieldError(errs map[string]string, field string) string {
	if errs == nil {
		return ""
	}
	return errs[field]
}

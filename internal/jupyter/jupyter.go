// Package jupyter adapts rendered ideograms for display in a notebook.
//
// Values returned here satisfy the display interfaces of the gophernotes
// kernel: JavaScript() for script output and SimpleRender() for a MIME map
// keyed by application/javascript.
package jupyter

import (
	"context"
	"fmt"
	"text/template"

	"github.com/inodb/vibe-ideogram/internal/annotate"
	"github.com/inodb/vibe-ideogram/internal/output"
)

// MIMEJavaScript is the MIME type notebooks execute as script.
const MIMEJavaScript = "application/javascript"

// Javascript is a script to be executed by the notebook front end.
type Javascript struct {
	Code string
}

// JavaScript returns the code for the kernel to run in the front end.
func (j Javascript) JavaScript() string {
	return j.Code
}

// SimpleRender returns the display data as a MIME map.
func (j Javascript) SimpleRender() map[string]any {
	return map[string]any{MIMEJavaScript: j.Code}
}

func (j Javascript) String() string {
	return j.Code
}

// Prepare returns a script that appends the container element to the
// current output cell. Run it in the cell before ToJupyter.
func Prepare(container string) Javascript {
	if container == "" {
		container = output.DefaultJSContainer
	}
	id := template.JSEscapeString(template.HTMLEscapeString(container))
	return Javascript{Code: fmt.Sprintf(`element.append("<div id='%s'></div>");`, id)}
}

// ToJavaScript renders the ideogram script for symbols.
func ToJavaScript(ctx context.Context, src annotate.Source, symbols []string, container string) (string, error) {
	return output.RenderJavaScript(ctx, src, symbols, container)
}

// ToJupyter renders the ideogram script for symbols as a displayable value.
func ToJupyter(ctx context.Context, src annotate.Source, symbols []string, container string) (Javascript, error) {
	code, err := ToJavaScript(ctx, src, symbols, container)
	if err != nil {
		return Javascript{}, err
	}
	return Javascript{Code: code}, nil
}

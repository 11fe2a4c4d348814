package output

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"io"
	"os"
	"sync"
	texttemplate "text/template"

	"github.com/inodb/vibe-ideogram/internal/annotate"
)

// LibraryURL is the Ideogram.js build the rendered output loads, without
// the .js suffix (RequireJS adds it).
const LibraryURL = "https://unpkg.com/ideogram@1.5.0/dist/js/ideogram.min"

// Display defaults.
const (
	DefaultHTMLContainer = "body"
	DefaultTitle         = "Ideogram"
	DefaultJSContainer   = "ideo-container"
)

//go:embed templates/ideogram.html templates/ideogram_jupyter.js
var templateFS embed.FS

var (
	htmlTemplate = sync.OnceValues(func() (*htmltemplate.Template, error) {
		return htmltemplate.ParseFS(templateFS, "templates/ideogram.html")
	})
	jsTemplate = sync.OnceValues(func() (*texttemplate.Template, error) {
		return texttemplate.ParseFS(templateFS, "templates/ideogram_jupyter.js")
	})
)

// Context is the input to a single render.
type Context struct {
	Annotations []annotate.Annotation
	// Container is the element id Ideogram.js draws into. For HTML output
	// the special value "body" draws into the page body.
	Container string
	// Title is the HTML page title; ignored for JavaScript output.
	Title string
}

type templateData struct {
	Context
	Selector        string
	LibraryURL      string
	AnnotationsJSON string
}

// HTML renders a standalone HTML document.
func HTML(c Context) (string, error) {
	if c.Container == "" {
		c.Container = DefaultHTMLContainer
	}
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.Annotations == nil {
		c.Annotations = []annotate.Annotation{}
	}

	selector := c.Container
	if selector != DefaultHTMLContainer {
		selector = "#" + selector
	}

	tmpl, err := htmlTemplate()
	if err != nil {
		return "", fmt.Errorf("parse html template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{
		Context:    c,
		Selector:   selector,
		LibraryURL: LibraryURL,
	}); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// JavaScript renders a script for a notebook cell that already contains
// the container element.
func JavaScript(c Context) (string, error) {
	if c.Container == "" {
		c.Container = DefaultJSContainer
	}
	if c.Annotations == nil {
		c.Annotations = []annotate.Annotation{}
	}

	data, err := json.Marshal(c.Annotations)
	if err != nil {
		return "", fmt.Errorf("encode annotations: %w", err)
	}

	tmpl, err := jsTemplate()
	if err != nil {
		return "", fmt.Errorf("parse javascript template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{
		Context:         c,
		LibraryURL:      LibraryURL,
		AnnotationsJSON: string(data),
	}); err != nil {
		return "", fmt.Errorf("render javascript: %w", err)
	}
	return buf.String(), nil
}

// RenderHTML resolves symbols through src and renders an HTML document.
// Empty container and title take the defaults.
func RenderHTML(ctx context.Context, src annotate.Source, symbols []string, container, title string) (string, error) {
	anns, err := src.Annotations(ctx, symbols)
	if err != nil {
		return "", err
	}
	return HTML(Context{Annotations: anns, Container: container, Title: title})
}

// WriteHTML renders an HTML document for symbols and writes it to w. Nothing
// is written when the lookup or the template fails.
func WriteHTML(ctx context.Context, w io.Writer, src annotate.Source, symbols []string, container, title string) error {
	doc, err := RenderHTML(ctx, src, symbols, container, title)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, doc); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

// WriteHTMLFile renders an HTML document for symbols and writes it to path.
// The file is only created once rendering has succeeded.
func WriteHTMLFile(ctx context.Context, path string, src annotate.Source, symbols []string, container, title string) error {
	doc, err := RenderHTML(ctx, src, symbols, container, title)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return fmt.Errorf("write html file: %w", err)
	}
	return nil
}

// RenderJavaScript resolves symbols through src and renders a notebook script.
func RenderJavaScript(ctx context.Context, src annotate.Source, symbols []string, container string) (string, error) {
	anns, err := src.Annotations(ctx, symbols)
	if err != nil {
		return "", err
	}
	return JavaScript(Context{Annotations: anns, Container: container})
}

// WriteJSON writes the annotations array as Ideogram.js reads it.
func WriteJSON(w io.Writer, anns []annotate.Annotation) error {
	if anns == nil {
		anns = []annotate.Annotation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(anns)
}

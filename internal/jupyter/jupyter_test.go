package jupyter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-ideogram/internal/annotate"
)

type stubSource struct {
	anns []annotate.Annotation
	err  error
}

func (s stubSource) Annotations(context.Context, []string) ([]annotate.Annotation, error) {
	return s.anns, s.err
}

func TestPrepare(t *testing.T) {
	assert.Equal(t, `element.append("<div id='ideo-container'></div>");`, Prepare("").Code)
	assert.Equal(t, `element.append("<div id='chart'></div>");`, Prepare("chart").Code)
}

func TestPrepare_Escapes(t *testing.T) {
	code := Prepare(`a'"><script>`).Code
	assert.NotContains(t, code, "<script>")
	assert.NotContains(t, code, `a'"`)
}

func TestToJupyter(t *testing.T) {
	src := stubSource{anns: []annotate.Annotation{{Name: "TP53", Chrom: "17", Start: 7668401, Stop: 7687549}}}

	js, err := ToJupyter(context.Background(), src, []string{"TP53"}, "chart")
	require.NoError(t, err)

	assert.Contains(t, js.Code, "container: '#chart'")
	assert.Contains(t, js.Code, `"name":"TP53"`)

	assert.Equal(t, js.Code, js.String())
}

// Display interfaces checked by the gophernotes kernel before it falls back
// to printing a value.
type javaScripter interface{ JavaScript() string }
type simpleRenderer interface{ SimpleRender() map[string]any }

func TestJavascript_KernelDisplay(t *testing.T) {
	var v any = Prepare("chart")

	js, ok := v.(javaScripter)
	require.True(t, ok, "Javascript must expose JavaScript() string")
	assert.Equal(t, `element.append("<div id='chart'></div>");`, js.JavaScript())

	r, ok := v.(simpleRenderer)
	require.True(t, ok, "Javascript must expose SimpleRender()")
	bundle := r.SimpleRender()
	require.Contains(t, bundle, MIMEJavaScript)
	assert.Equal(t, js.JavaScript(), bundle[MIMEJavaScript])
}

func TestToJavaScript_MatchesToJupyter(t *testing.T) {
	src := stubSource{anns: []annotate.Annotation{{Name: "KRAS", Chrom: "12", Start: 1, Stop: 2}}}
	ctx := context.Background()

	code, err := ToJavaScript(ctx, src, []string{"KRAS"}, "")
	require.NoError(t, err)
	js, err := ToJupyter(ctx, src, []string{"KRAS"}, "")
	require.NoError(t, err)

	assert.Equal(t, code, js.Code)
	assert.Contains(t, code, "container: '#ideo-container'")
}

func TestToJupyter_Error(t *testing.T) {
	_, err := ToJupyter(context.Background(), stubSource{err: errors.New("boom")}, []string{"KRAS"}, "")
	assert.EqualError(t, err, "boom")
}

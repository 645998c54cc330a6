package templates

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed content/about.md
var aboutMarkdown []byte

var aboutHTML = sync.OnceValues(func() (string, error) {
	return RenderMarkdown(aboutMarkdown)
})

// RenderMarkdown converts markdown to HTML. Raw HTML in the source is not
// passed through.
func RenderMarkdown(src []byte) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Linkify))

	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// aboutContent renders the embedded markdown, failing the page if it does
// not convert.
func aboutContent() templ.Component {
	html, err := aboutHTML()
	return templ.Raw(html, err)
}

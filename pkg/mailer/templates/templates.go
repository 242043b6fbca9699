package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"reflect"
	"regexp"
	"strings"
)

//go:embed *.tmpl
var FS embed.FS

// PrimaryMail is the layout plain-text bodies are wrapped into.
const PrimaryMail = "primary_mail"

// Layout carries the per-deployment parts of the mail layout.
type Layout struct {
	Title      string
	SenderName string
	LogoURL    string
	Footer     string
	Lang       string
}

type layoutData struct {
	Layout
	Body htmpl.HTML
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.IsZero() {
			return fallback
		}
		return value
	}
}

var funcMap = htmpl.FuncMap{
	"default": defaultFn,
}

var placeholderRe = regexp.MustCompile(`\$\{[^}\n]*\}`)

// TextToHTML escapes text and turns line breaks into <br> tags.
// ${placeholders} pass through byte for byte so that keys such as ${R&D} still
// match their column when substituted afterwards.
func TextToHTML(text string) htmpl.HTML {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = escapeOutsidePlaceholders(l)
	}
	return htmpl.HTML(strings.Join(lines, "<br>\n"))
}

func escapeOutsidePlaceholders(line string) string {
	var b strings.Builder
	last := 0
	for _, loc := range placeholderRe.FindAllStringIndex(line, -1) {
		b.WriteString(htmpl.HTMLEscapeString(line[last:loc[0]]))
		b.WriteString(line[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(htmpl.HTMLEscapeString(line[last:]))
	return b.String()
}

// RenderText wraps a plain-text body into the primary mail layout.
func RenderText(layout Layout, body string) (string, error) {
	return RenderHTML(PrimaryMail, layoutData{Layout: layout, Body: TextToHTML(body)})
}

// RenderHTML renders an HTML template: <name>.html.tmpl
func RenderHTML(name string, data any) (string, error) {
	filename := name + ".html.tmpl"
	tpl, err := htmpl.New(filename).Funcs(funcMap).ParseFS(FS, filename)
	if err != nil {
		return "", fmt.Errorf("parse html %q: %w", filename, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", filename, err)
	}
	return buf.String(), nil
}

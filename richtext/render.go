package richtext

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
)

// Render returns a templ.Component that writes body as HTML.
func Render(body Body) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		WriteHTML(&buf, body)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

var blockTags = map[string]string{
	"normal":     "p",
	"h1":         "h1",
	"h2":         "h2",
	"h3":         "h3",
	"h4":         "h4",
	"h5":         "h5",
	"h6":         "h6",
	"blockquote": "blockquote",
}

// WriteHTML writes the HTML representation of body to buf.
func WriteHTML(buf *bytes.Buffer, body Body) {
	// open list tags, outermost first
	var lists []string
	closeLists := func(depth int) {
		for len(lists) > depth {
			buf.WriteString("</li></" + lists[len(lists)-1] + ">")
			lists = lists[:len(lists)-1]
		}
	}

	for _, blk := range body {
		if blk.Type == TypeBlock && blk.ListItem != "" {
			level := blk.Level
			if level < 1 {
				level = 1
			}
			tag := "ul"
			if blk.ListItem == "number" {
				tag = "ol"
			}
			if len(lists) > level {
				closeLists(level)
			}
			if len(lists) == level {
				if lists[level-1] != tag {
					closeLists(level - 1)
				} else {
					buf.WriteString("</li>")
				}
			}
			for len(lists) < level {
				buf.WriteString("<" + tag + ">")
				lists = append(lists, tag)
			}
			buf.WriteString("<li>")
			writeSpans(buf, blk)
			continue
		}

		closeLists(0)
		switch blk.Type {
		case TypeBlock:
			tag, ok := blockTags[blk.Style]
			if !ok {
				tag = "p"
			}
			buf.WriteString("<" + tag + ">")
			writeSpans(buf, blk)
			buf.WriteString("</" + tag + ">")
		case TypeCode:
			if blk.Language != "" {
				lang := html.EscapeString(blk.Language)
				buf.WriteString(`<pre class="code-block"><code class="language-` + lang + `">`)
			} else {
				buf.WriteString(`<pre class="code-block"><code>`)
			}
			buf.WriteString(html.EscapeString(blk.Code))
			buf.WriteString("</code></pre>")
		case TypeBreak:
			buf.WriteString("<hr/>")
		}
	}
	closeLists(0)
}

var decoratorTags = map[string]string{
	MarkStrong:    "strong",
	MarkEm:        "em",
	MarkCode:      "code",
	MarkUnderline: "u",
	MarkStrike:    "s",
}

func writeSpans(buf *bytes.Buffer, blk Block) {
	defs := make(map[string]MarkDef, len(blk.MarkDefs))
	for _, d := range blk.MarkDefs {
		defs[d.Key] = d
	}
	for _, s := range blk.Children {
		var closers []string
		for _, m := range s.Marks {
			if tag, ok := decoratorTags[m]; ok {
				buf.WriteString("<" + tag + ">")
				closers = append(closers, "</"+tag+">")
				continue
			}
			def, ok := defs[m]
			if !ok || def.Type != "link" {
				continue
			}
			href := SafeURL(def.Href)
			if href == "" {
				continue
			}
			attrs := `class="underline underline-offset-2"`
			if strings.HasPrefix(href, "http") {
				attrs += ` target="_blank" rel="noopener noreferrer"`
			}
			buf.WriteString(`<a href="` + href + `" ` + attrs + `>`)
			closers = append(closers, "</a>")
		}
		text := html.EscapeString(s.Text)
		buf.WriteString(strings.ReplaceAll(text, "\n", "<br/>"))
		for i := len(closers) - 1; i >= 0; i-- {
			buf.WriteString(closers[i])
		}
	}
}

// SafeURL validates and escapes a URL for use in an href attribute.
// Only relative paths, fragments and http(s)/mailto/tel URLs are allowed.
func SafeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}

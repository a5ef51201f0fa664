// Package richtext models Portable Text blocks, builds them from Markdown, and
// renders them as templ components.
//
// Both content sources produce the same Body: the content store returns
// Portable Text JSON directly, and the filesystem provider converts Markdown
// pages with FromMarkdown.
package richtext

import "strings"

// Body is an ordered list of rich-text blocks.
type Body []Block

// Block is a single Portable Text block. Blocks of unknown types are kept so
// that decoding never fails, but they are skipped when rendering.
type Block struct {
	Type     string    `json:"_type"`
	Key      string    `json:"_key,omitempty"`
	Style    string    `json:"style,omitempty"`
	ListItem string    `json:"listItem,omitempty"`
	Level    int       `json:"level,omitempty"`
	Children []Span    `json:"children,omitempty"`
	MarkDefs []MarkDef `json:"markDefs,omitempty"`

	// Code and Language are only set on "code" blocks.
	Code     string `json:"code,omitempty"`
	Language string `json:"language,omitempty"`
}

// Span is a run of text sharing the same marks.
type Span struct {
	Type  string   `json:"_type"`
	Key   string   `json:"_key,omitempty"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// MarkDef is an annotation referenced by key from a span's marks.
type MarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href,omitempty"`
}

// Block types understood by the renderer.
const (
	TypeBlock = "block"
	TypeCode  = "code"
	TypeBreak = "break"
)

// Decorator marks.
const (
	MarkStrong    = "strong"
	MarkEm        = "em"
	MarkCode      = "code"
	MarkUnderline = "underline"
	MarkStrike    = "strike-through"
)

// Empty reports whether the body has nothing visible to render.
func (b Body) Empty() bool {
	for _, blk := range b {
		switch blk.Type {
		case TypeCode:
			if strings.TrimSpace(blk.Code) != "" {
				return false
			}
		case TypeBlock:
			for _, s := range blk.Children {
				if strings.TrimSpace(s.Text) != "" {
					return false
				}
			}
		}
	}
	return true
}

// PlainText joins the text of every block, one block per line.
func (b Body) PlainText() string {
	var lines []string
	for _, blk := range b {
		switch blk.Type {
		case TypeCode:
			lines = append(lines, blk.Code)
		case TypeBlock:
			lines = append(lines, blk.Text())
		}
	}
	return strings.Join(lines, "\n")
}

// Text returns the concatenated span text of a block.
func (blk Block) Text() string {
	var sb strings.Builder
	for _, s := range blk.Children {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// SplitTitle removes a leading h1 block and returns its text.
// When the body does not start with an h1 the title is empty and the body is
// returned unchanged.
func SplitTitle(b Body) (string, Body) {
	if len(b) == 0 || b[0].Type != TypeBlock || b[0].Style != "h1" {
		return "", b
	}
	return strings.TrimSpace(b[0].Text()), b[1:]
}

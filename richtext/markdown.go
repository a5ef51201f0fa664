package richtext

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reInlineCode = regexp.MustCompile("`([^`]+)`")
	reLink       = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]*)\)`)
	reBold       = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	reItalic     = regexp.MustCompile(`\*([^*]+)\*|_([^_]+)_`)
	reOrdered    = regexp.MustCompile(`^\d+\.\s`)

	// earlier patterns win ties at the same offset
	inlinePatterns = []*regexp.Regexp{reInlineCode, reLink, reBold, reItalic}
)

// FromMarkdown converts a small Markdown dialect into Portable Text blocks:
// headings, paragraphs, bullet and numbered lists (two spaces per nesting
// level), block quotes, fenced code, horizontal rules, and inline bold,
// italic, code and links.
func FromMarkdown(src string) Body {
	b := &builder{}
	var para, quote, code []string
	inCode := false
	lang := ""

	flushPara := func() {
		if len(para) > 0 {
			b.add("normal", "", 0, strings.Join(para, " "))
			para = nil
		}
	}
	flushQuote := func() {
		if len(quote) > 0 {
			b.add("blockquote", "", 0, strings.Join(quote, " "))
			quote = nil
		}
	}

	for _, raw := range strings.Split(src, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inCode {
				b.code(strings.Join(code, "\n"), lang)
				code = nil
				inCode = false
			} else {
				flushPara()
				flushQuote()
				inCode = true
				lang = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "```"))
			}
			continue
		}
		if inCode {
			code = append(code, line)
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flushPara()
			flushQuote()
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))

		if level, text := headingLevel(trimmed); level > 0 {
			flushPara()
			flushQuote()
			b.add("h"+strconv.Itoa(level), "", 0, text)
			continue
		}
		switch {
		case trimmed == "---" || trimmed == "***":
			flushPara()
			flushQuote()
			b.body = append(b.body, Block{Type: TypeBreak, Key: b.nextKey()})
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			flushPara()
			flushQuote()
			b.add("normal", "bullet", indent/2+1, strings.TrimSpace(trimmed[2:]))
		case reOrdered.MatchString(trimmed):
			flushPara()
			flushQuote()
			b.add("normal", "number", indent/2+1, strings.TrimSpace(reOrdered.ReplaceAllString(trimmed, "")))
		case strings.HasPrefix(trimmed, ">"):
			flushPara()
			quote = append(quote, strings.TrimSpace(strings.TrimPrefix(trimmed, ">")))
		default:
			flushQuote()
			para = append(para, trimmed)
		}
	}
	if inCode {
		b.code(strings.Join(code, "\n"), lang)
	}
	flushPara()
	flushQuote()
	return b.body
}

func headingLevel(s string) (int, string) {
	n := 0
	for n < len(s) && n < 6 && s[n] == '#' {
		n++
	}
	if n == 0 || n >= len(s) || s[n] != ' ' {
		return 0, ""
	}
	return n, strings.TrimSpace(s[n+1:])
}

type builder struct {
	body Body
}

func (b *builder) nextKey() string {
	return "b" + strconv.Itoa(len(b.body))
}

func (b *builder) add(style, listItem string, level int, text string) {
	key := b.nextKey()
	p := &inlineParser{prefix: key}
	p.parse(text, nil)
	b.body = append(b.body, Block{
		Type:     TypeBlock,
		Key:      key,
		Style:    style,
		ListItem: listItem,
		Level:    level,
		Children: p.spans,
		MarkDefs: p.defs,
	})
}

func (b *builder) code(text, lang string) {
	b.body = append(b.body, Block{Type: TypeCode, Key: b.nextKey(), Code: text, Language: lang})
}

type inlineParser struct {
	prefix string
	spans  []Span
	defs   []MarkDef
}

func (p *inlineParser) parse(s string, marks []string) {
	for s != "" {
		best := -1
		var loc []int
		for i, re := range inlinePatterns {
			m := re.FindStringSubmatchIndex(s)
			if m == nil {
				continue
			}
			if loc == nil || m[0] < loc[0] {
				loc, best = m, i
			}
		}
		if loc == nil {
			p.text(s, marks)
			return
		}
		p.text(s[:loc[0]], marks)
		switch best {
		case 0:
			p.text(s[loc[2]:loc[3]], withMark(marks, MarkCode))
		case 1:
			key := p.prefix + "l" + strconv.Itoa(len(p.defs))
			p.defs = append(p.defs, MarkDef{Key: key, Type: "link", Href: s[loc[4]:loc[5]]})
			p.parse(s[loc[2]:loc[3]], withMark(marks, key))
		case 2:
			p.parse(firstGroup(s, loc), withMark(marks, MarkStrong))
		case 3:
			p.parse(firstGroup(s, loc), withMark(marks, MarkEm))
		}
		s = s[loc[1]:]
	}
}

func (p *inlineParser) text(s string, marks []string) {
	if s == "" {
		return
	}
	if n := len(p.spans); n > 0 && sameMarks(p.spans[n-1].Marks, marks) {
		p.spans[n-1].Text += s
		return
	}
	p.spans = append(p.spans, Span{
		Type:  "span",
		Key:   p.prefix + "s" + strconv.Itoa(len(p.spans)),
		Text:  s,
		Marks: marks,
	})
}

// firstGroup returns the first participating capture group of an alternation.
func firstGroup(s string, loc []int) string {
	for i := 2; i+1 < len(loc); i += 2 {
		if loc[i] >= 0 {
			return s[loc[i]:loc[i+1]]
		}
	}
	return ""
}

func withMark(marks []string, m string) []string {
	out := make([]string, 0, len(marks)+1)
	out = append(out, marks...)
	return append(out, m)
}

func sameMarks(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

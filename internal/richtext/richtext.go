// Package richtext converts the HTML fragments stored in slide fields into
// plain text or sanitized markup.
package richtext

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockTags end a line in plain-text output.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "table": true, "tr": true, "pre": true,
}

// dropTags never contribute text or markup.
const dropTags = "script, style, iframe, object, embed, noscript, template, meta, base, link"

var manyNewlines = regexp.MustCompile(`\n{3,}`)

// PlainText strips all tags from fragment. Block elements and <br> become
// line breaks and list items are prefixed with a bullet. Input without
// markup is returned unchanged.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	doc.Find(dropTags).Remove()

	var b strings.Builder
	walk(doc.Find("body"), &b)
	return tidy(b.String())
}

func walk(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch {
		case name == "#text":
			b.WriteString(c.Text())
		case name == "br":
			b.WriteByte('\n')
		case name == "li":
			newline(b)
			b.WriteString("• ")
			walk(c, b)
			newline(b)
		case name == "td" || name == "th":
			walk(c, b)
			b.WriteByte('\t')
		case blockTags[name]:
			newline(b)
			walk(c, b)
			newline(b)
		default:
			walk(c, b)
		}
	})
}

func newline(b *strings.Builder) {
	s := b.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		b.WriteByte('\n')
	}
}

func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	s = strings.Join(lines, "\n")
	s = manyNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Lines returns the non-empty lines of the plain-text form of fragment.
func Lines(fragment string) []string {
	var out []string
	for _, l := range strings.Split(PlainText(fragment), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Sanitize removes active content from fragment: script-like elements,
// document-level tags such as <meta http-equiv> and <base>, inline event
// handlers and script or data URLs. Formatting tags and data:image sources
// are kept.
func Sanitize(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	doc.Find(dropTags).Remove()

	doc.Find("body *").Each(func(_ int, s *goquery.Selection) {
		var drop []string
		for _, a := range s.Nodes[0].Attr {
			key := strings.ToLower(a.Key)
			val := strings.ToLower(strings.TrimSpace(a.Val))
			if strings.HasPrefix(key, "on") {
				drop = append(drop, a.Key)
				continue
			}
			if urlAttrs[key] && unsafeURL(key, val) {
				drop = append(drop, a.Key)
			}
		}
		for _, k := range drop {
			s.RemoveAttr(k)
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

var urlAttrs = map[string]bool{
	"href": true, "src": true, "action": true, "formaction": true,
	"xlink:href": true, "poster": true, "background": true,
}

// unsafeURL reports whether val, already lowercased, runs script or embeds
// a document. Browsers ignore whitespace and control characters inside the
// scheme, so those are stripped first.
func unsafeURL(attr, val string) bool {
	val = strings.Map(func(r rune) rune {
		if r <= ' ' {
			return -1
		}
		return r
	}, val)
	switch {
	case strings.HasPrefix(val, "javascript:"), strings.HasPrefix(val, "vbscript:"):
		return true
	case strings.HasPrefix(val, "data:"):
		return attr != "src" || !strings.HasPrefix(val, "data:image/") || strings.HasPrefix(val, "data:image/svg")
	}
	return false
}

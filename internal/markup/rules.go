package markup

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/inkwell/internal/model"
)

// nodeRule maps an element to a node kind.
type nodeRule struct {
	tag   string
	kind  model.NodeKind
	match func(el *html.Node) bool
	attrs func(el *html.Node) model.Attrs
}

// markRule maps an element, or an inline style on any element, to a mark.
type markRule struct {
	tag   string
	kind  model.MarkKind
	match func(el *html.Node) bool
	attrs func(el *html.Node) model.Attrs
	// style matches the element's inline style instead of its tag.
	style func(styles map[string]string) bool
}

var nodeRules = []nodeRule{
	{tag: "p", kind: model.Paragraph},
	{tag: "h1", kind: model.Heading, attrs: headingLevel(1)},
	{tag: "h2", kind: model.Heading, attrs: headingLevel(2)},
	{tag: "h3", kind: model.Heading, attrs: headingLevel(3)},
	{tag: "h4", kind: model.Heading, attrs: headingLevel(4)},
	{tag: "h5", kind: model.Heading, attrs: headingLevel(5)},
	{tag: "h6", kind: model.Heading, attrs: headingLevel(6)},
	{tag: "blockquote", kind: model.Blockquote, attrs: func(el *html.Node) model.Attrs {
		return model.Attrs{"float": attrOrNil(el, "data-float"), "variant": attrOrNil(el, "data-type")}
	}},
	{tag: "ul", kind: model.BulletList},
	{tag: "ol", kind: model.OrderedList, attrs: func(el *html.Node) model.Attrs {
		if n, ok := intAttr(el, "start"); ok {
			return model.Attrs{"start": n}
		}
		return nil
	}},
	{tag: "li", kind: model.ListItem},
	{tag: "pre", kind: model.CodeBlock, attrs: func(el *html.Node) model.Attrs {
		return model.Attrs{"language": codeLanguage(el)}
	}},
	{tag: "hr", kind: model.HorizontalRule},
	{tag: "figure", kind: model.Figure, attrs: func(el *html.Node) model.Attrs {
		return model.Attrs{"float": attrOrNil(el, "data-float"), "type": attrOrNil(el, "data-type")}
	}},
	{tag: "figcaption", kind: model.Figcaption},
	{tag: "iframe", kind: model.Embed, match: hasAttr("src"), attrs: func(el *html.Node) model.Attrs {
		a := model.Attrs{"src": attr(el, "src")}
		if n, ok := intAttr(el, "width"); ok {
			a["width"] = n
		}
		if n, ok := intAttr(el, "height"); ok {
			a["height"] = n
		}
		return a
	}},
	{tag: "article", kind: model.Aside, attrs: asideAttrs},
	{tag: "aside", kind: model.Aside, attrs: asideAttrs},
	{tag: "img", kind: model.Image, match: hasAttr("src"), attrs: func(el *html.Node) model.Attrs {
		a := model.Attrs{
			"src":   attr(el, "src"),
			"alt":   attrOrNil(el, "alt"),
			"title": attrOrNil(el, "title"),
			"path":  attrOrNil(el, "data-path"),
		}
		if n, ok := intAttr(el, "width"); ok {
			a["width"] = n
		}
		return a
	}},
	{tag: "br", kind: model.HardBreak},
}

var (
	boldWeight = regexp.MustCompile(`^(bold(er)?|[5-9]\d{2,})$`)
)

var markRules = []markRule{
	{tag: "a", kind: model.Link, match: hasAttr("href"), attrs: func(el *html.Node) model.Attrs {
		return model.Attrs{"href": attr(el, "href"), "title": attrOrNil(el, "title"), "target": attrOrNil(el, "target")}
	}},
	{tag: "strong", kind: model.Bold},
	// Google Docs wraps pasted content in <b style="font-weight:normal">.
	{tag: "b", kind: model.Bold, match: func(el *html.Node) bool {
		return styles(el)["font-weight"] != "normal"
	}},
	{kind: model.Bold, style: func(s map[string]string) bool { return boldWeight.MatchString(s["font-weight"]) }},
	{tag: "em", kind: model.Italic},
	{tag: "i", kind: model.Italic},
	{kind: model.Italic, style: func(s map[string]string) bool { return s["font-style"] == "italic" }},
	{tag: "u", kind: model.Underline},
	{kind: model.Underline, style: func(s map[string]string) bool { return strings.Contains(s["text-decoration"], "underline") }},
	{tag: "s", kind: model.Strike},
	{tag: "del", kind: model.Strike},
	{tag: "strike", kind: model.Strike},
	{kind: model.Strike, style: func(s map[string]string) bool { return strings.Contains(s["text-decoration"], "line-through") }},
	{tag: "mark", kind: model.Highlight, attrs: func(el *html.Node) model.Attrs {
		return model.Attrs{"color": attrOrNil(el, "data-color")}
	}},
	{tag: "code", kind: model.Code},
}

// ignoredTags are skipped along with their content.
var ignoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"head":     true,
	"template": true,
	"noscript": true,
	"title":    true,
}

func headingLevel(level int) func(*html.Node) model.Attrs {
	return func(*html.Node) model.Attrs { return model.Attrs{"level": level} }
}

func asideAttrs(el *html.Node) model.Attrs {
	return model.Attrs{"float": attrOrNil(el, "data-float"), "bg": attrOrNil(el, "data-bg")}
}

// codeLanguage reads data-language from pre, or a language-x class from
// its code child.
func codeLanguage(pre *html.Node) any {
	if v, ok := lookupAttr(pre, "data-language"); ok && v != "" {
		return v
	}
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "code" {
			continue
		}
		for _, cls := range strings.Fields(attr(c, "class")) {
			if lang, ok := strings.CutPrefix(cls, "language-"); ok && lang != "" {
				return lang
			}
		}
	}
	return nil
}

func lookupAttr(el *html.Node, key string) (string, bool) {
	for _, a := range el.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attr(el *html.Node, key string) string {
	v, _ := lookupAttr(el, key)
	return v
}

// attrOrNil returns the attribute value, or nil when it is absent or
// empty.
func attrOrNil(el *html.Node, key string) any {
	if v, ok := lookupAttr(el, key); ok && v != "" {
		return v
	}
	return nil
}

func hasAttr(key string) func(*html.Node) bool {
	return func(el *html.Node) bool {
		v, ok := lookupAttr(el, key)
		return ok && v != ""
	}
}

func intAttr(el *html.Node, key string) (int, bool) {
	v, ok := lookupAttr(el, key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	return n, err == nil
}

// styles parses the element's style attribute.
func styles(el *html.Node) map[string]string {
	raw := attr(el, "style")
	if raw == "" {
		return nil
	}
	out := make(map[string]string)
	for decl := range strings.SplitSeq(raw, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}

func matchNodeRule(el *html.Node) (nodeRule, bool) {
	for _, r := range nodeRules {
		if r.tag == el.Data && (r.match == nil || r.match(el)) {
			return r, true
		}
	}
	return nodeRule{}, false
}

// matchMarkRules returns the marks an element contributes: at most one
// from its tag plus any from its inline style.
func matchMarkRules(el *html.Node) []markRule {
	var out []markRule
	st := styles(el)
	tagMatched := false
	for _, r := range markRules {
		switch {
		case r.style != nil:
			if st != nil && r.style(st) {
				out = append(out, r)
			}
		case !tagMatched && r.tag == el.Data && (r.match == nil || r.match(el)):
			out = append(out, r)
			tagMatched = true
		}
	}
	return out
}

package markup

import (
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	floatValue    = regexp.MustCompile(`^(left|right|half-left|half-right)$`)
	languageClass = regexp.MustCompile(`^language-[\w+-]+$`)
	wordValue     = regexp.MustCompile(`^[\w-]+$`)
	colorValue    = regexp.MustCompile(`^(#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})|[a-z]+)$`)
	numberValue   = regexp.MustCompile(`^\d+$`)
)

// pastePolicy allows what the DOM rules read. Images are not allowed:
// pasted images arrive as files and go through the upload path.
var pastePolicy = sync.OnceValue(func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(true)

	p.AllowElements(
		"p", "h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "ul", "ol", "li", "pre", "code", "hr",
		"figure", "figcaption", "article", "aside",
		"br", "strong", "b", "em", "i", "u", "s", "del", "strike", "mark",
		"span", "div", "section",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("title").OnElements("a")
	p.AllowAttrs("target").Matching(wordValue).OnElements("a")
	p.AllowAttrs("start").Matching(numberValue).OnElements("ol")
	p.AllowAttrs("data-float").Matching(floatValue).OnElements("blockquote", "figure", "article", "aside")
	p.AllowAttrs("data-type").Matching(wordValue).OnElements("blockquote", "figure", "article")
	p.AllowAttrs("data-bg").Matching(wordValue).OnElements("article", "aside")
	p.AllowAttrs("data-language").Matching(wordValue).OnElements("pre")
	p.AllowAttrs("class").Matching(languageClass).OnElements("code")
	p.AllowAttrs("data-color").Matching(colorValue).OnElements("mark")

	p.AllowStyles("font-weight", "font-style", "text-decoration").OnElements("span", "b", "p")
	return p
})

// Sanitize cleans pasted HTML down to the markup the parser understands.
func Sanitize(s string) string {
	return pastePolicy().Sanitize(s)
}

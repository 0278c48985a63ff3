package inputrules

import (
	"regexp"
	"strconv"

	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/state"
	"github.com/dshills/inkwell/internal/transform"
)

// TextRule replaces the match with replacement.
func TextRule(name, pattern, replacement string) Rule {
	return Rule{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Handler: func(st *state.State, _ []string, start, end int) *state.Transaction {
			tr := st.Tr()
			if err := tr.InsertText(replacement, start, end); err != nil {
				return nil
			}
			return tr
		},
	}
}

// TextblockTypeRule turns the textblock holding the match into kind. The
// matched text is removed.
func TextblockTypeRule(name, pattern string, kind model.NodeKind, attrs func([]string) model.Attrs) Rule {
	return Rule{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Handler: func(st *state.State, match []string, start, end int) *state.Transaction {
			tr := st.Tr()
			if err := tr.Delete(start, end); err != nil {
				return nil
			}
			if err := tr.SetBlockType(start, start, kind, attrsOf(attrs, match)); err != nil {
				return nil
			}
			if tr.Doc().MustResolve(start).Parent().Kind() != kind {
				return nil
			}
			return tr
		},
	}
}

// WrappingRule wraps the textblock holding the match in kind, joining it
// with a directly preceding node of the same kind when join allows it.
func WrappingRule(name, pattern string, kind model.NodeKind, attrs func([]string) model.Attrs, join func([]string, *model.Node) bool) Rule {
	return Rule{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Handler: func(st *state.State, match []string, start, end int) *state.Transaction {
			tr := st.Tr()
			if err := tr.Delete(start, end); err != nil {
				return nil
			}
			r := tr.Doc().MustResolve(start)
			rng, ok := r.BlockRange(r, nil)
			if !ok {
				return nil
			}
			a := attrsOf(attrs, match)
			wrappers, ok := transform.FindWrapping(rng, kind, a)
			if !ok {
				return nil
			}
			if err := tr.Wrap(rng, wrappers); err != nil {
				return nil
			}
			if start > 0 {
				before := tr.Doc().MustResolve(start - 1).NodeBefore()
				if before != nil && before.Kind() == kind && (join == nil || join(match, before)) {
					// Not joinable is fine; the wrap stands alone.
					_ = tr.Join(start-1, 1)
				}
			}
			return tr
		},
	}
}

// MarkRule replaces the match with its first submatch carrying a mark of
// kind. The mark is not continued by further typing.
func MarkRule(name, pattern string, kind model.MarkKind, attrs func([]string) model.Attrs) Rule {
	return Rule{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Handler: func(st *state.State, match []string, start, end int) *state.Transaction {
			if len(match) < 2 || match[1] == "" {
				return nil
			}
			r := st.Doc().MustResolve(start)
			if !r.Parent().Type().AllowsMarks() {
				return nil
			}
			mark, err := st.Schema().Mark(kind, attrsOf(attrs, match))
			if err != nil {
				return nil
			}
			tr := st.Tr()
			text := st.Schema().Text(match[1], mark.AddToSet(r.Marks()))
			if err := tr.ReplaceWith(start, end, text); err != nil {
				return nil
			}
			tr.RemoveStoredMark(kind)
			return tr
		},
	}
}

func attrsOf(fn func([]string) model.Attrs, match []string) model.Attrs {
	if fn == nil {
		return nil
	}
	return fn(match)
}

// Markdown returns the standard rules: headings, quotes, lists, inline
// code, links and typographic replacements.
func Markdown() []Rule {
	return []Rule{
		TextblockTypeRule("heading", `^(#{1,6})\s$`, model.Heading, func(m []string) model.Attrs {
			return model.Attrs{"level": len(m[1])}
		}),
		WrappingRule("blockquote", `^\s*>\s$`, model.Blockquote, nil, nil),
		WrappingRule("bulletList", `^\s*([-+*])\s$`, model.BulletList, nil, nil),
		WrappingRule("orderedList", `^(\d+)\.\s$`, model.OrderedList,
			func(m []string) model.Attrs {
				n, err := strconv.Atoi(m[1])
				if err != nil || n < 1 {
					n = 1
				}
				return model.Attrs{"start": n}
			},
			func(m []string, list *model.Node) bool {
				n, _ := strconv.Atoi(m[1])
				start, _ := list.Attr("start").(int)
				return list.ChildCount()+start == n
			}),
		MarkRule("code", "`([^`]+)`$", model.Code, nil),
		MarkRule("link", `\[([^\[\]]+)\]\((https?://[^\s()]+)\)$`, model.Link, func(m []string) model.Attrs {
			return model.Attrs{"href": m[2]}
		}),
		TextRule("emDash", `--$`, "—"),
		TextRule("ellipsis", `\.\.\.$`, "…"),
	}
}

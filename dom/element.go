package dom

import (
	"context"
	"slices"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"
	"golang.org/x/net/html"

	"github.com/ardnew/hypereval/lang"
)

// Element is a read-only view of a node in a [Document].
type Element struct {
	node *html.Node
	doc  *Document
}

var (
	_ lang.TypeNamer      = (*Element)(nil)
	_ lang.PropertyReader = (*Element)(nil)
	_ lang.MethodProvider = (*Element)(nil)
)

// Node returns the underlying node.
func (e *Element) Node() *html.Node { return e.node }

// TypeName implements [lang.TypeNamer], so "is an Element" holds.
func (e *Element) TypeName() string { return "Element" }

func (e *Element) selection() *goquery.Selection {
	return goquery.NewDocumentFromNode(e.node).Selection
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}

	return "", false
}

// String renders the element as a short CSS-like descriptor such as
// "div#main.card".
func (e *Element) String() string {
	if e.node.Type == html.DocumentNode {
		return "#document"
	}

	var sb strings.Builder

	sb.WriteString(e.node.Data)

	if id, ok := e.Attr("id"); ok && id != "" {
		sb.WriteString("#" + id)
	}

	for _, c := range e.classes() {
		sb.WriteString("." + lang.ToString(c))
	}

	return sb.String()
}

// MarshalJSON renders the element as an object of its identifying
// properties.
func (e *Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.summary())
}

// MarshalYAML renders the element like [Element.MarshalJSON].
func (e *Element) MarshalYAML() (any, error) {
	return e.summary(), nil
}

func (e *Element) summary() map[string]any {
	m := map[string]any{"tagName": e.tagName()}

	if id, ok := e.Attr("id"); ok {
		m["id"] = id
	}

	if c, ok := e.Attr("class"); ok {
		m["className"] = c
	}

	if text := strings.TrimSpace(e.selection().Text()); text != "" {
		m["textContent"] = text
	}

	return m
}

func (e *Element) tagName() string {
	if e.node.Type != html.ElementNode {
		return ""
	}

	return strings.ToUpper(e.node.Data)
}

func (e *Element) classes() []any {
	c, _ := e.Attr("class")

	fields := strings.Fields(c)
	out := make([]any, len(fields))

	for i, f := range fields {
		out[i] = f
	}

	return out
}

// elementsOf wraps the element nodes among nodes.
func (e *Element) elementsOf(nodes []*html.Node) []any {
	out := []any{}

	for _, n := range nodes {
		if n.Type == html.ElementNode {
			out = append(out, e.doc.element(n))
		}
	}

	return out
}

func (e *Element) elementOrNull(n *html.Node) any {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}

	return e.doc.element(n)
}

// Property implements [lang.PropertyReader].
func (e *Element) Property(name string) (any, bool) {
	if attr, ok := strings.CutPrefix(name, "@"); ok {
		if v, ok := e.Attr(attr); ok {
			return v, true
		}

		return nil, true
	}

	switch name {
	case "id":
		v, _ := e.Attr("id")

		return v, true

	case "className":
		v, _ := e.Attr("class")

		return v, true

	case "classList":
		return e.classes(), true

	case "tagName", "nodeName":
		return e.tagName(), true

	case "localName":
		return e.node.Data, true

	case "textContent", "innerText":
		return e.selection().Text(), true

	case "innerHTML":
		s, err := e.selection().Html()
		if err != nil {
			return nil, false
		}

		return s, true

	case "outerHTML":
		s, err := goquery.OuterHtml(e.selection())
		if err != nil {
			return nil, false
		}

		return s, true

	case "value":
		v, ok := e.Attr("value")
		if !ok {
			return nil, true
		}

		return v, true

	case "children":
		return e.elementsOf(e.selection().Children().Nodes), true

	case "childElementCount":
		return float64(len(e.selection().Children().Nodes)), true

	case "parentElement":
		return e.elementOrNull(e.node.Parent), true

	case "firstElementChild":
		return e.elementOrNull(firstElement(e.node.FirstChild, forward)), true

	case "lastElementChild":
		return e.elementOrNull(firstElement(e.node.LastChild, backward)), true

	case "nextElementSibling":
		return e.elementOrNull(firstElement(e.node.NextSibling, forward)), true

	case "previousElementSibling":
		return e.elementOrNull(firstElement(e.node.PrevSibling, backward)), true

	case "attributes":
		m := make(map[string]any, len(e.node.Attr))
		for _, a := range e.node.Attr {
			m[a.Key] = a.Val
		}

		return m, true

	case "dataset":
		m := map[string]any{}

		for _, a := range e.node.Attr {
			if key, ok := strings.CutPrefix(a.Key, "data-"); ok {
				m[camelCase(key)] = a.Val
			}
		}

		return m, true

	case "style":
		return parseStyle(e), true

	case "hidden", "disabled", "checked", "selected", "required":
		_, ok := e.Attr(name)

		return ok, true
	}

	if v, ok := e.Attr(name); ok {
		return v, true
	}

	return nil, false
}

//nolint:gochecknoglobals
var (
	elementProperties = []string{
		"attributes", "checked", "childElementCount", "children", "classList",
		"className", "dataset", "disabled", "firstElementChild", "hidden", "id",
		"innerHTML", "innerText", "lastElementChild", "localName",
		"nextElementSibling", "nodeName", "outerHTML", "parentElement",
		"previousElementSibling", "required", "selected", "style", "tagName",
		"textContent", "value",
	}
	elementMethods = []string{
		"closest", "getAttribute", "hasAttribute", "matches", "querySelector",
		"querySelectorAll",
	}
)

// PropertyNames returns the names of the element's properties and methods,
// including its attributes, in lexical order.
func (e *Element) PropertyNames() []string {
	names := slices.Concat(elementProperties, elementMethods)

	for _, a := range e.node.Attr {
		names = append(names, a.Key)
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// Method implements [lang.MethodProvider].
func (e *Element) Method(name string) (lang.Callable, bool) {
	switch name {
	case "getAttribute":
		return lang.Func(func(_ context.Context, _ any, args []any) (any, error) {
			if v, ok := e.Attr(firstString(args)); ok {
				return v, nil
			}

			return nil, nil
		}), true

	case "hasAttribute":
		return lang.Func(func(_ context.Context, _ any, args []any) (any, error) {
			_, ok := e.Attr(firstString(args))

			return ok, nil
		}), true

	case "matches":
		return lang.Func(func(_ context.Context, _ any, args []any) (any, error) {
			matched, _, err := e.doc.Matches(e, firstString(args))

			return matched, err
		}), true

	case "querySelector":
		return lang.Func(func(ctx context.Context, _ any, args []any) (any, error) {
			found, err := e.doc.QueryWithin(ctx, e, firstString(args))
			if err != nil || len(found) == 0 {
				return nil, err
			}

			return found[0], nil
		}), true

	case "querySelectorAll":
		return lang.Func(func(ctx context.Context, _ any, args []any) (any, error) {
			return e.doc.QueryWithin(ctx, e, firstString(args))
		}), true

	case "closest":
		return lang.Func(func(_ context.Context, _ any, args []any) (any, error) {
			sel, err := e.doc.compile(firstString(args))
			if err != nil {
				return nil, err
			}

			found := e.selection().ClosestMatcher(sel)
			if len(found.Nodes) == 0 {
				return nil, nil
			}

			return e.doc.element(found.Nodes[0]), nil
		}), true
	}

	return nil, false
}

func firstString(args []any) string {
	if len(args) == 0 {
		return ""
	}

	return lang.ToString(args[0])
}

type direction int

const (
	forward direction = iota
	backward
)

// firstElement returns n or the nearest element sibling of n in the given
// direction.
func firstElement(n *html.Node, dir direction) *html.Node {
	for n != nil && n.Type != html.ElementNode {
		if dir == forward {
			n = n.NextSibling
		} else {
			n = n.PrevSibling
		}
	}

	return n
}

// camelCase converts a data attribute suffix such as "user-id" to "userId".
func camelCase(s string) string {
	var sb strings.Builder

	upper := false

	for _, r := range s {
		if r == '-' {
			upper = true

			continue
		}

		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}

		sb.WriteRune(r)
	}

	return sb.String()
}

// parseStyle reads the inline style declarations of e into a map keyed by
// property name as written, such as "font-size".
func parseStyle(e *Element) map[string]any {
	m := map[string]any{}

	style, _ := e.Attr("style")

	for decl := range strings.SplitSeq(style, ";") {
		key, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}

		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}

		m[key] = strings.TrimSpace(val)
	}

	return m
}

package dom

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/net/html"

	"github.com/ardnew/hypereval/lang"
	"github.com/ardnew/hypereval/log"
)

// Document is a parsed HTML document acting as the host environment of an
// expression runtime. It is safe for concurrent use; the document itself is
// never modified.
type Document struct {
	doc       *goquery.Document
	globals   map[string]any
	selectors cmap.ConcurrentMap[string, cascadia.Selector]
	elements  sync.Map // *html.Node -> *Element
	logger    log.Logger
}

var (
	_ lang.Host             = (*Document)(nil)
	_ lang.ScopedQuerier    = (*Document)(nil)
	_ lang.Matcher          = (*Document)(nil)
	_ lang.PropertyResolver = (*Document)(nil)
)

// Option configures a [Document].
type Option func(*Document)

// WithLogger sets the logger used for query tracing.
func WithLogger(logger log.Logger) Option {
	return func(d *Document) {
		d.logger = logger.With(slog.String("host", "dom"))
	}
}

// WithGlobals adds host globals visible to expressions. They shadow the
// document globals of the same name.
func WithGlobals(m map[string]any) Option {
	return func(d *Document) {
		for k, v := range m {
			d.globals[k] = lang.Normalize(v)
		}
	}
}

// Parse reads an HTML document from r.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, ErrParseDocument.Wrap(err)
	}

	return newDocument(doc, opts...), nil
}

// ParseString parses an HTML document from s.
func ParseString(s string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(s), opts...)
}

// FromNode wraps an already parsed node tree.
func FromNode(root *html.Node, opts ...Option) *Document {
	return newDocument(goquery.NewDocumentFromNode(root), opts...)
}

func newDocument(doc *goquery.Document, opts ...Option) *Document {
	d := &Document{
		doc:       doc,
		globals:   map[string]any{},
		selectors: cmap.New[cascadia.Selector](),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	return d
}

// Root returns the element wrapping the document node.
func (d *Document) Root() *Element {
	if len(d.doc.Nodes) == 0 {
		return nil
	}

	return d.element(d.doc.Nodes[0])
}

// element returns the unique wrapper for n.
func (d *Document) element(n *html.Node) *Element {
	if e, ok := d.elements.Load(n); ok {
		return e.(*Element)
	}

	e, _ := d.elements.LoadOrStore(n, &Element{node: n, doc: d})

	return e.(*Element)
}

func (d *Document) wrap(nodes []*html.Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = d.element(n)
	}

	return out
}

// compile returns the compiled form of selector, compiling it on first use.
func (d *Document) compile(selector string) (cascadia.Selector, error) {
	selector = strings.TrimSpace(selector)

	if sel, ok := d.selectors.Get(selector); ok {
		return sel, nil
	}

	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, ErrInvalidSelector.Wrap(err).With(slog.String("selector", selector))
	}

	d.selectors.SetIfAbsent(selector, sel)

	return sel, nil
}

// Query implements [lang.Host]. It returns every element matching selector
// in document order.
func (d *Document) Query(ctx context.Context, selector string) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, context.Cause(ctx)
	}

	sel, err := d.compile(selector)
	if err != nil {
		return nil, err
	}

	found := d.wrap(d.doc.FindMatcher(sel).Nodes)

	d.logger.TraceContext(ctx, "query",
		slog.String("selector", selector),
		slog.Int("matches", len(found)),
	)

	return found, nil
}

// QueryWithin implements [lang.ScopedQuerier]. It returns the descendants of
// root that match selector.
func (d *Document) QueryWithin(ctx context.Context, root any, selector string) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, context.Cause(ctx)
	}

	n, ok := d.nodeOf(root)
	if !ok {
		return nil, ErrNotElement.With(slog.String("type", lang.TypeName(root)))
	}

	sel, err := d.compile(selector)
	if err != nil {
		return nil, err
	}

	found := d.wrap(goquery.NewDocumentFromNode(n).FindMatcher(sel).Nodes)

	d.logger.TraceContext(ctx, "scoped query",
		slog.String("selector", selector),
		slog.Int("matches", len(found)),
	)

	return found, nil
}

// Matches implements [lang.Matcher]. Only elements are tested; any other
// value is left to the caller.
func (d *Document) Matches(v any, pattern string) (matched, ok bool, err error) {
	n, ok := d.nodeOf(v)
	if !ok {
		return false, false, nil
	}

	sel, err := d.compile(pattern)
	if err != nil {
		return false, true, err
	}

	return n.Type == html.ElementNode && sel.Match(n), true, nil
}

// Property implements [lang.PropertyResolver] for raw nodes of this
// document's tree.
func (d *Document) Property(v any, name string) (any, bool) {
	n, ok := v.(*html.Node)
	if !ok || n == nil {
		return nil, false
	}

	return d.element(n).Property(name)
}

// Global implements [lang.Host].
//
// The document globals are "document" (the document node), "html", "head",
// "body", and "title". Globals added with [WithGlobals] take precedence.
func (d *Document) Global(name string) (any, bool) {
	if v, ok := d.globals[name]; ok {
		return v, true
	}

	switch name {
	case "document":
		if root := d.Root(); root != nil {
			return root, true
		}

	case "html", "head", "body":
		if found := d.doc.Find(name).First(); len(found.Nodes) > 0 {
			return d.element(found.Nodes[0]), true
		}

	case "title":
		return strings.TrimSpace(d.doc.Find("title").First().Text()), true
	}

	return nil, false
}

// GlobalNames returns the names [Document.Global] answers, in lexical order.
func (d *Document) GlobalNames() []string {
	names := slices.Collect(maps.Keys(d.globals))
	names = append(names, "body", "document", "head", "html", "title")

	slices.Sort(names)

	return slices.Compact(names)
}

// nodeOf returns the node behind v, which may be an [Element] of any
// document or a raw node.
func (d *Document) nodeOf(v any) (*html.Node, bool) {
	switch t := v.(type) {
	case *Element:
		if t != nil && t.node != nil {
			return t.node, true
		}

	case *html.Node:
		if t != nil {
			return t, true
		}
	}

	return nil, false
}

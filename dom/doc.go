// Package dom hosts expression evaluation against a parsed HTML document.
//
// A [Document] implements [lang.Host] together with the optional
// [lang.ScopedQuerier], [lang.Matcher], and [lang.PropertyResolver]
// capabilities. Selector literals evaluate to every matching [Element] in
// document order, "in" restricts a selector to the descendants of other
// elements, and "matches" tests elements against a selector.
//
// Elements expose the familiar read-only surface of a browser element:
//
//	id, className, classList, tagName, localName, textContent, innerHTML,
//	outerHTML, value, children, parentElement, dataset, style, attributes
//
// Any other property name reads the attribute of that name, and "@name"
// always reads an attribute. The methods getAttribute, hasAttribute,
// matches, querySelector, querySelectorAll, and closest are available to
// method calls.
//
// Each node is wrapped by exactly one Element per Document, so elements
// obtained from different queries compare equal when they refer to the same
// node.
package dom

package lang

import (
	"log/slog"

	"github.com/expr-lang/expr/ast"

	"github.com/ardnew/hypereval/log"
)

// hyphenPatcher reconstructs hyphenated names from the subtraction chains
// the expression parser produces for them.
//
// DSL names may contain hyphens (e.g. "item-count"), which the parser reads
// as subtraction. A chain is rewritten to a single identifier or member
// access only when the combined name is visible from the context, so real
// subtraction between two bound names is left alone.
type hyphenPatcher struct {
	ec     *ExecutionContext
	logger log.Logger
}

// Visit implements ast.Visitor.
func (p *hyphenPatcher) Visit(node *ast.Node) {
	binNode, ok := (*node).(*ast.BinaryNode)
	if !ok || binNode.Operator != "-" {
		return
	}

	rightIdent, ok := binNode.Right.(*ast.IdentifierNode)
	if !ok {
		return
	}

	switch left := binNode.Left.(type) {
	case *ast.MemberNode:
		p.patchMember(node, left, rightIdent)

	case *ast.BinaryNode:
		if left.Operator == "-" {
			p.patchChain(node, left, rightIdent)
		}

	case *ast.IdentifierNode:
		p.patchTopLevel(node, left, rightIdent)
	}
}

// patchMember rewrites MemberNode(base, "prop") - IdentNode("name") to
// MemberNode(base, "prop-name").
func (p *hyphenPatcher) patchMember(
	node *ast.Node,
	left *ast.MemberNode,
	right *ast.IdentifierNode,
) {
	prop, ok := left.Property.(*ast.StringNode)
	if !ok {
		return
	}

	combined := prop.Value + "-" + right.Value

	basePath, ok := extractMemberPath(left.Node)
	if !ok || !p.hasChild(basePath, combined) {
		return
	}

	ast.Patch(node, &ast.MemberNode{
		Node:     left.Node,
		Property: &ast.StringNode{Value: combined},
	})

	p.logger.Trace("patch hyphenated",
		slog.String("combined_name", combined),
		slog.String("patch_type", "member"))
}

// patchChain handles a chain whose inner links were not patched because
// only the complete name is bound.
func (p *hyphenPatcher) patchChain(
	node *ast.Node,
	left *ast.BinaryNode,
	right *ast.IdentifierNode,
) {
	base, property, ok := extractHyphenChain(left)
	if !ok {
		return
	}

	combined := property + "-" + right.Value

	if base == nil {
		if p.hasTopLevel(combined) {
			ast.Patch(node, &ast.IdentifierNode{Value: combined})
			p.logger.Trace("patch hyphenated",
				slog.String("combined_name", combined),
				slog.String("patch_type", "chain"))
		}

		return
	}

	basePath, ok := extractMemberPath(base)
	if !ok || !p.hasChild(basePath, combined) {
		return
	}

	ast.Patch(node, &ast.MemberNode{
		Node:     base,
		Property: &ast.StringNode{Value: combined},
	})
	p.logger.Trace("patch hyphenated",
		slog.String("combined_name", combined),
		slog.String("patch_type", "chain"))
}

// patchTopLevel rewrites IdentNode("a") - IdentNode("b") to IdentNode("a-b").
func (p *hyphenPatcher) patchTopLevel(
	node *ast.Node,
	left *ast.IdentifierNode,
	right *ast.IdentifierNode,
) {
	combined := left.Value + "-" + right.Value
	if p.hasTopLevel(combined) {
		ast.Patch(node, &ast.IdentifierNode{Value: combined})
		p.logger.Trace("patch hyphenated",
			slog.String("combined_name", combined),
			slog.String("patch_type", "top-level"))
	}
}

// extractHyphenChain walks an unpatched chain of subtractions and returns
// its base node and accumulated hyphenated name. base is nil for a chain of
// bare identifiers.
func extractHyphenChain(
	bin *ast.BinaryNode,
) (base ast.Node, property string, ok bool) {
	if bin.Operator != "-" {
		return nil, "", false
	}

	rightIdent, ok := bin.Right.(*ast.IdentifierNode)
	if !ok {
		return nil, "", false
	}

	switch left := bin.Left.(type) {
	case *ast.MemberNode:
		prop, ok := left.Property.(*ast.StringNode)
		if !ok {
			return nil, "", false
		}

		return left.Node, prop.Value + "-" + rightIdent.Value, true

	case *ast.BinaryNode:
		innerBase, innerProp, ok := extractHyphenChain(left)
		if !ok {
			return nil, "", false
		}

		return innerBase, innerProp + "-" + rightIdent.Value, true

	case *ast.IdentifierNode:
		return nil, left.Value + "-" + rightIdent.Value, true

	default:
		return nil, "", false
	}
}

// extractMemberPath flattens a member chain into its path segments.
func extractMemberPath(node ast.Node) ([]string, bool) {
	switch n := node.(type) {
	case *ast.IdentifierNode:
		return []string{n.Value}, true

	case *ast.MemberNode:
		prop, ok := n.Property.(*ast.StringNode)
		if !ok {
			return nil, false
		}

		base, ok := extractMemberPath(n.Node)
		if !ok {
			return nil, false
		}

		return append(base, prop.Value), true

	default:
		return nil, false
	}
}

func (p *hyphenPatcher) hasTopLevel(name string) bool {
	if _, ok := p.ec.Slot(name); ok {
		return true
	}

	_, tier := Lookup(p.ec, name, ScopeDefault)

	return tier != TierNone
}

func (p *hyphenPatcher) hasChild(basePath []string, childName string) bool {
	v := p.resolvePath(basePath)
	if IsNullish(v) {
		return false
	}

	return !IsAbsent(GetProperty(p.ec, v, childName))
}

// resolvePath reads the value at a dotted path.
func (p *hyphenPatcher) resolvePath(segments []string) any {
	if len(segments) == 0 {
		return Absent
	}

	v, ok := p.ec.Slot(segments[0])
	if !ok {
		v = Resolve(p.ec, segments[0], ScopeDefault)
	}

	for _, seg := range segments[1:] {
		v = GetProperty(p.ec, v, seg)
		if IsAbsent(v) {
			return Absent
		}
	}

	return v
}

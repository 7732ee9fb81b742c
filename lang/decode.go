package lang

import (
	"fmt"
	"log/slog"

	"github.com/goccy/go-yaml"
)

// Decode parses a serialized syntax tree. JSON is accepted as a subset of
// YAML.
func Decode(data []byte) (Node, error) {
	var raw any

	err := yaml.Unmarshal(data, &raw)
	if err != nil {
		return nil, ErrDecode.Wrap(err)
	}

	return DecodeNode(raw)
}

// DecodeNode converts the generic map form of a node (as produced by a JSON
// or YAML decoder) into a [Node]. Every map must carry a "type" tag naming
// its kind.
func DecodeNode(raw any) (Node, error) {
	m, ok := asMap(raw)
	if !ok {
		return nil, ErrMalformedNode.With(
			slog.String("issue", "node is not a mapping"),
			slog.String("got", fmt.Sprintf("%T", raw)),
		)
	}

	tag, ok := m["type"].(string)
	if !ok || tag == "" {
		return nil, ErrMissingNodeType
	}

	d := decoder{m: m, kind: Kind(tag)}

	switch d.kind {
	case KindLiteral:
		return &Literal{Value: Normalize(m["value"])}, nil

	case "string", "number", "boolean":
		return &Literal{Value: Normalize(m["value"])}, nil

	case "null":
		return &Literal{Value: nil}, nil

	case KindIdentifier:
		name, err := d.str("name")
		if err != nil {
			return nil, err
		}

		scope, _ := m["scope"].(string)

		switch ScopeTag(scope) {
		case ScopeDefault, ScopeLocal, ScopeGlobal:
		default:
			return nil, d.malformed("unknown scope " + scope)
		}

		return &Identifier{Name: name, Scope: ScopeTag(scope)}, nil

	case KindMember:
		obj, err := d.node("object")
		if err != nil {
			return nil, err
		}

		computed, _ := m["computed"].(bool)

		prop, err := d.nameOrNode("property")
		if err != nil {
			return nil, err
		}

		return &MemberExpression{Object: obj, Property: prop, Computed: computed}, nil

	case KindPossessive:
		obj, err := d.node("object")
		if err != nil {
			return nil, err
		}

		prop, err := d.nameOrNode("property")
		if err != nil {
			return nil, err
		}

		name, err := propertyName(prop)
		if err != nil {
			return nil, err
		}

		return &PossessiveExpression{Object: obj, Property: name}, nil

	case KindBinary:
		op, err := d.str("operator")
		if err != nil {
			return nil, err
		}

		left, err := d.node("left")
		if err != nil {
			return nil, err
		}

		right, err := d.node("right")
		if err != nil {
			return nil, err
		}

		return &BinaryExpression{Operator: op, Left: left, Right: right}, nil

	case KindUnary:
		op, err := d.str("operator")
		if err != nil {
			return nil, err
		}

		key := "argument"
		if _, ok := m[key]; !ok {
			key = "operand"
		}

		operand, err := d.node(key)
		if err != nil {
			return nil, err
		}

		return &UnaryExpression{Operator: op, Operand: operand}, nil

	case KindCall:
		callee, err := d.node("callee")
		if err != nil {
			return nil, err
		}

		args, err := d.nodes("arguments")
		if err != nil {
			return nil, err
		}

		return &CallExpression{Callee: callee, Arguments: args}, nil

	case KindNew:
		callee, err := d.nameOrNode("callee")
		if err != nil {
			return nil, err
		}

		id, ok := callee.(*Identifier)
		if !ok {
			return nil, d.malformed("constructor must be a name")
		}

		args, err := d.nodes("arguments")
		if err != nil {
			return nil, err
		}

		return &NewExpression{Name: id.Name, Arguments: args}, nil

	case KindSelector:
		key := "value"
		if _, ok := m[key]; !ok {
			key = "css"
		}

		sel, err := d.str(key)
		if err != nil {
			return nil, err
		}

		return &Selector{Value: sel}, nil

	case KindTemplate:
		s, err := d.str("value")
		if err != nil {
			return nil, err
		}

		return &TemplateLiteral{Value: s}, nil

	case KindArray:
		key := "elements"
		if _, ok := m[key]; !ok {
			key = "values"
		}

		elems, err := d.nodes(key)
		if err != nil {
			return nil, err
		}

		return &ArrayLiteral{Elements: elems}, nil

	case KindObject:
		return d.object()

	case KindConditional:
		test, err := d.node("test")
		if err != nil {
			return nil, err
		}

		cons, err := d.node("consequent")
		if err != nil {
			return nil, err
		}

		var alt Node

		if _, ok := m["alternate"]; ok && m["alternate"] != nil {
			alt, err = d.node("alternate")
			if err != nil {
				return nil, err
			}
		}

		return &ConditionalExpression{Test: test, Consequent: cons, Alternate: alt}, nil
	}

	return nil, ErrUnsupportedNode.With(attrKind(d.kind))
}

// decoder reads the fields of one node map.
type decoder struct {
	m    map[string]any
	kind Kind
}

func (d decoder) malformed(issue string) error {
	return ErrMalformedNode.With(attrKind(d.kind), slog.String("issue", issue))
}

func (d decoder) str(key string) (string, error) {
	s, ok := d.m[key].(string)
	if !ok {
		return "", d.malformed("missing string field " + key)
	}

	return s, nil
}

func (d decoder) node(key string) (Node, error) {
	raw, ok := d.m[key]
	if !ok || raw == nil {
		return nil, d.malformed("missing field " + key)
	}

	n, err := DecodeNode(raw)
	if err != nil {
		return nil, WrapError(err).With(slog.String("field", key))
	}

	return n, nil
}

// nameOrNode accepts either a bare string (read as an identifier) or a
// node.
func (d decoder) nameOrNode(key string) (Node, error) {
	if s, ok := d.m[key].(string); ok {
		return &Identifier{Name: s}, nil
	}

	return d.node(key)
}

func (d decoder) nodes(key string) ([]Node, error) {
	raw, ok := d.m[key]
	if !ok || raw == nil {
		return nil, nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, d.malformed("field " + key + " is not a list")
	}

	out := make([]Node, len(list))

	for i, e := range list {
		n, err := DecodeNode(e)
		if err != nil {
			return nil, WrapError(err).With(
				slog.String("field", key), slog.Int("index", i))
		}

		out[i] = n
	}

	return out, nil
}

func (d decoder) object() (Node, error) {
	list, _ := d.m["properties"].([]any)
	props := make([]Property, 0, len(list))

	for i, e := range list {
		pm, ok := asMap(e)
		if !ok {
			return nil, d.malformed(fmt.Sprintf("property %d is not a mapping", i))
		}

		pd := decoder{m: pm, kind: d.kind}

		key, err := pd.nameOrNode("key")
		if err != nil {
			return nil, err
		}

		val, err := pd.node("value")
		if err != nil {
			return nil, err
		}

		props = append(props, Property{Key: key, Value: val})
	}

	return &ObjectLiteral{Properties: props}, nil
}

func asMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true

	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}

		return out, true
	}

	return nil, false
}

// EncodeNode returns the canonical map form of node, the inverse of
// [DecodeNode].
func EncodeNode(node Node) map[string]any {
	if node == nil {
		return nil
	}

	m := map[string]any{"type": string(node.Kind())}

	switch n := node.(type) {
	case *Literal:
		m["value"] = n.Value

	case *Identifier:
		m["name"] = n.Name
		if n.Scope != ScopeDefault {
			m["scope"] = string(n.Scope)
		}

	case *MemberExpression:
		m["object"] = EncodeNode(n.Object)
		m["property"] = EncodeNode(n.Property)
		m["computed"] = n.Computed

	case *PossessiveExpression:
		m["object"] = EncodeNode(n.Object)
		m["property"] = n.Property

	case *BinaryExpression:
		m["operator"] = n.Operator
		m["left"] = EncodeNode(n.Left)
		m["right"] = EncodeNode(n.Right)

	case *UnaryExpression:
		m["operator"] = n.Operator
		m["argument"] = EncodeNode(n.Operand)

	case *CallExpression:
		m["callee"] = EncodeNode(n.Callee)
		m["arguments"] = encodeNodes(n.Arguments)

	case *NewExpression:
		m["callee"] = n.Name
		m["arguments"] = encodeNodes(n.Arguments)

	case *Selector:
		m["value"] = n.Value

	case *TemplateLiteral:
		m["value"] = n.Value

	case *ArrayLiteral:
		m["elements"] = encodeNodes(n.Elements)

	case *ObjectLiteral:
		props := make([]any, len(n.Properties))
		for i, p := range n.Properties {
			props[i] = map[string]any{
				"key":   EncodeNode(p.Key),
				"value": EncodeNode(p.Value),
			}
		}

		m["properties"] = props

	case *ConditionalExpression:
		m["test"] = EncodeNode(n.Test)
		m["consequent"] = EncodeNode(n.Consequent)

		if n.Alternate != nil {
			m["alternate"] = EncodeNode(n.Alternate)
		}
	}

	return m
}

func encodeNodes(nodes []Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = EncodeNode(n)
	}

	return out
}

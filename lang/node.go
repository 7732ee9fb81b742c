package lang

// Node is one element of a parsed program. The set of node types is closed:
// every implementation lives in this file and [Runtime.Evaluate] dispatches
// over all of them in a single type switch.
type Node interface {
	Kind() Kind
	node()
}

// Kind is the discriminant tag carried by every node.
type Kind string

const (
	KindLiteral     Kind = "literal"
	KindIdentifier  Kind = "identifier"
	KindMember      Kind = "memberExpression"
	KindPossessive  Kind = "possessiveExpression"
	KindBinary      Kind = "binaryExpression"
	KindUnary       Kind = "unaryExpression"
	KindCall        Kind = "callExpression"
	KindNew         Kind = "newExpression"
	KindSelector    Kind = "selector"
	KindTemplate    Kind = "templateLiteral"
	KindArray       Kind = "arrayLiteral"
	KindObject      Kind = "objectLiteral"
	KindConditional Kind = "conditionalExpression"
)

// ScopeTag restricts identifier resolution to a single tier.
type ScopeTag string

const (
	ScopeDefault ScopeTag = ""
	ScopeLocal   ScopeTag = "local"
	ScopeGlobal  ScopeTag = "global"
)

type (
	// Literal is a constant value. Numbers are float64, strings may contain
	// template markers.
	Literal struct {
		Value any
	}

	// Identifier is a bare name, optionally tagged with a scope.
	Identifier struct {
		Name  string
		Scope ScopeTag
	}

	// MemberExpression is obj.prop (Computed false) or obj[expr].
	MemberExpression struct {
		Object   Node
		Property Node
		Computed bool
	}

	// PossessiveExpression is X's Y or Y of X.
	PossessiveExpression struct {
		Object   Node
		Property string
	}

	BinaryExpression struct {
		Operator string
		Left     Node
		Right    Node
	}

	UnaryExpression struct {
		Operator string
		Operand  Node
	}

	CallExpression struct {
		Callee    Node
		Arguments []Node
	}

	// NewExpression constructs a value from a constructor resolved by name.
	NewExpression struct {
		Name      string
		Arguments []Node
	}

	// Selector is a host query such as .item, #main or <li/>.
	Selector struct {
		Value string
	}

	TemplateLiteral struct {
		Value string
	}

	ArrayLiteral struct {
		Elements []Node
	}

	ObjectLiteral struct {
		Properties []Property
	}

	// Property is one key/value pair of an object literal.
	Property struct {
		Key   Node
		Value Node
	}

	ConditionalExpression struct {
		Test       Node
		Consequent Node
		Alternate  Node
	}
)

func (*Literal) Kind() Kind               { return KindLiteral }
func (*Identifier) Kind() Kind            { return KindIdentifier }
func (*MemberExpression) Kind() Kind      { return KindMember }
func (*PossessiveExpression) Kind() Kind  { return KindPossessive }
func (*BinaryExpression) Kind() Kind      { return KindBinary }
func (*UnaryExpression) Kind() Kind       { return KindUnary }
func (*CallExpression) Kind() Kind        { return KindCall }
func (*NewExpression) Kind() Kind         { return KindNew }
func (*Selector) Kind() Kind              { return KindSelector }
func (*TemplateLiteral) Kind() Kind       { return KindTemplate }
func (*ArrayLiteral) Kind() Kind          { return KindArray }
func (*ObjectLiteral) Kind() Kind         { return KindObject }
func (*ConditionalExpression) Kind() Kind { return KindConditional }

func (*Literal) node()               {}
func (*Identifier) node()            {}
func (*MemberExpression) node()      {}
func (*PossessiveExpression) node()  {}
func (*BinaryExpression) node()      {}
func (*UnaryExpression) node()       {}
func (*CallExpression) node()        {}
func (*NewExpression) node()         {}
func (*Selector) node()              {}
func (*TemplateLiteral) node()       {}
func (*ArrayLiteral) node()          {}
func (*ObjectLiteral) node()         {}
func (*ConditionalExpression) node() {}

// Lit returns a literal node. Go numeric values are normalized to float64.
func Lit(v any) *Literal {
	if n, ok := numberValue(v); ok {
		return &Literal{Value: n}
	}

	return &Literal{Value: v}
}

// Ident returns an untagged identifier node.
func Ident(name string) *Identifier {
	return &Identifier{Name: name}
}

// ScopedIdent returns an identifier restricted to the given scope tier.
func ScopedIdent(name string, scope ScopeTag) *Identifier {
	return &Identifier{Name: name, Scope: scope}
}

// Member returns a non-computed member access obj.name.
func Member(obj Node, name string) *MemberExpression {
	return &MemberExpression{Object: obj, Property: Ident(name)}
}

// Index returns a computed member access obj[key].
func Index(obj, key Node) *MemberExpression {
	return &MemberExpression{Object: obj, Property: key, Computed: true}
}

// Possess returns a possessive access obj's name.
func Possess(obj Node, name string) *PossessiveExpression {
	return &PossessiveExpression{Object: obj, Property: name}
}

func Binary(op string, left, right Node) *BinaryExpression {
	return &BinaryExpression{Operator: op, Left: left, Right: right}
}

func Unary(op string, operand Node) *UnaryExpression {
	return &UnaryExpression{Operator: op, Operand: operand}
}

// Assign returns the assignment name = value.
func Assign(name string, value Node) *BinaryExpression {
	return Binary("=", Ident(name), value)
}

func Call(callee Node, args ...Node) *CallExpression {
	return &CallExpression{Callee: callee, Arguments: args}
}

func New(name string, args ...Node) *NewExpression {
	return &NewExpression{Name: name, Arguments: args}
}

func Sel(query string) *Selector {
	return &Selector{Value: query}
}

func Tmpl(raw string) *TemplateLiteral {
	return &TemplateLiteral{Value: raw}
}

func Array(elems ...Node) *ArrayLiteral {
	return &ArrayLiteral{Elements: elems}
}

func Object(props ...Property) *ObjectLiteral {
	return &ObjectLiteral{Properties: props}
}

// Prop returns an object literal entry keyed by a bare name.
func Prop(key string, value Node) Property {
	return Property{Key: Ident(key), Value: value}
}

func Cond(test, consequent, alternate Node) *ConditionalExpression {
	return &ConditionalExpression{
		Test:       test,
		Consequent: consequent,
		Alternate:  alternate,
	}
}

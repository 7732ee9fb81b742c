package lang

import "strings"

// Canonical binary operator names. These are the registry names consulted
// before the built-in semantics are applied.
const (
	OpAddition           = "addition"
	OpSubtraction        = "subtraction"
	OpMultiplication     = "multiplication"
	OpDivision           = "division"
	OpModulo             = "modulo"
	OpEquals             = "equals"
	OpNotEquals          = "notEquals"
	OpStrictEquals       = "strictEquals"
	OpStrictNotEquals    = "strictNotEquals"
	OpGreaterThan        = "greaterThan"
	OpGreaterThanOrEqual = "greaterThanOrEqual"
	OpLessThan           = "lessThan"
	OpLessThanOrEqual    = "lessThanOrEqual"
	OpAnd                = "and"
	OpOr                 = "or"
	OpContains           = "contains"
	OpNotContains        = "notContains"
	OpIn                 = "in"
	OpIsIn               = "isIn"
	OpIsNotIn            = "isNotIn"
	OpMatches            = "matches"
	OpNotMatches         = "notMatches"
	OpIsA                = "isA"
	OpIsNotA             = "isNotA"
	OpAs                 = "as"
	OpAssign             = "assign"
)

// Canonical unary operator names.
const (
	OpNot          = "not"
	OpNo           = "no"
	OpSome         = "some"
	OpExists       = "exists"
	OpDoesNotExist = "doesNotExist"
	OpNegate       = "negate"
	OpPositive     = "positive"
)

var binaryOperators = map[string]string{
	"+":   OpAddition,
	"-":   OpSubtraction,
	"*":   OpMultiplication,
	"/":   OpDivision,
	"%":   OpModulo,
	"mod": OpModulo,

	"==":     OpEquals,
	"is":     OpEquals,
	"equals": OpEquals,
	"!=":     OpNotEquals,
	"is not": OpNotEquals,

	"===":                    OpStrictEquals,
	"is really":              OpStrictEquals,
	"really equals":          OpStrictEquals,
	"is really equal to":     OpStrictEquals,
	"!==":                    OpStrictNotEquals,
	"is not really":          OpStrictNotEquals,
	"is not really equal to": OpStrictNotEquals,

	">":                           OpGreaterThan,
	"is greater than":             OpGreaterThan,
	">=":                          OpGreaterThanOrEqual,
	"is greater than or equal to": OpGreaterThanOrEqual,
	"<":                           OpLessThan,
	"is less than":                OpLessThan,
	"<=":                          OpLessThanOrEqual,
	"is less than or equal to":    OpLessThanOrEqual,

	"and": OpAnd,
	"&&":  OpAnd,
	"or":  OpOr,
	"||":  OpOr,

	"contains":         OpContains,
	"includes":         OpContains,
	"does not contain": OpNotContains,
	"does not include": OpNotContains,
	"in":               OpIn,
	"is in":            OpIsIn,
	"is not in":        OpIsNotIn,

	"matches":        OpMatches,
	"match":          OpMatches,
	"does not match": OpNotMatches,

	"is a":      OpIsA,
	"is an":     OpIsA,
	"is not a":  OpIsNotA,
	"is not an": OpIsNotA,

	"as": OpAs,
	"=":  OpAssign,
}

var unaryOperators = map[string]string{
	"not":            OpNot,
	"!":              OpNot,
	"no":             OpNo,
	"some":           OpSome,
	"exists":         OpExists,
	"exist":          OpExists,
	"does not exist": OpDoesNotExist,
	"-":              OpNegate,
	"+":              OpPositive,
}

// normalizeOperator folds case and collapses runs of whitespace so that
// natural-language spellings match regardless of layout.
func normalizeOperator(op string) string {
	return strings.Join(strings.Fields(strings.ToLower(op)), " ")
}

// BinaryOperatorName returns the canonical name of a binary operator
// spelling. Canonical names are accepted as their own spelling.
func BinaryOperatorName(op string) (string, bool) {
	if name, ok := binaryOperators[normalizeOperator(op)]; ok {
		return name, true
	}

	for _, name := range binaryOperators {
		if name == op {
			return name, true
		}
	}

	return "", false
}

// UnaryOperatorName returns the canonical name of a unary operator spelling.
func UnaryOperatorName(op string) (string, bool) {
	if name, ok := unaryOperators[normalizeOperator(op)]; ok {
		return name, true
	}

	for _, name := range unaryOperators {
		if name == op {
			return name, true
		}
	}

	return "", false
}

// BinaryOperators returns every accepted binary operator spelling.
func BinaryOperators() []string { return sortedKeys(binaryOperators) }

// UnaryOperators returns every accepted unary operator spelling.
func UnaryOperators() []string { return sortedKeys(unaryOperators) }

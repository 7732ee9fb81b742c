// Package builtin provides the stock implementations an expression runtime
// can dispatch operators, references, and function calls to.
//
// Implementations are grouped by category:
//
//   - reference: the context slots me, you, it, result, and event
//   - comparison: equality, ordering, membership, pattern, and type tests
//   - arithmetic: the numeric operators, including unary negation
//   - logical: and, or, and the unary truth and existence tests
//   - property: possessive member access
//   - conversion: the "as" operator and its function-call forms
//   - command: side-effecting calls such as log and increment
//
// [Register] installs implementations eagerly into a [lang.Registry].
// [Define] declares them on a [lang.LazyRegistry] so each is constructed on
// first use, and [DefineCommands] does the same for a [lang.Commands] set.
// Every entry point accepts [WithCategories] to select a subset.
//
// The stock operator implementations reproduce the evaluator's built-in
// semantics, so registering them changes nothing observable except that the
// registry now reports them. They are most useful as a base to wrap or
// replace selectively.
package builtin

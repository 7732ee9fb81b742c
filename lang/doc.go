// Package lang evaluates syntax trees of a small, dynamically scoped DSL of
// the hyperscript family.
//
// Trees are produced elsewhere (see [Decode] for the serialized form, or
// build them with [Lit], [Ident], [Binary] and friends) and evaluated by a
// [Runtime] against an [ExecutionContext].
//
// # Names
//
// A bare identifier is resolved through four tiers, first match wins:
//
//  1. locals (per evaluation)
//  2. globals (shared by every context of a runtime)
//  3. variables (shared; the target of plain assignment)
//  4. host globals
//
// A "local" scope tag searches only locals; a "global" tag searches globals
// and then host globals. Names that resolve nowhere evaluate to [Absent],
// never to an error, so "x or default" works.
//
// # Dispatch
//
// Operators, reference words (me, it, result) and plain function calls are
// first looked up in the runtime's [Registry] under a canonical name such as
// "greaterThan" or "addition". Registering an [Implementation] under that
// name replaces the built-in semantics. A [LazyRegistry] can stand behind
// the registry to load implementations on first use; it guarantees a single
// load per name however many callers ask concurrently.
//
// # Templates
//
// Strings containing ${...} markers are interpolated: see
// [Runtime.Interpolate].
//
//	hsl(${rand} 100% 90%)     → hsl(180 100% 90%)
//	${x % y}                   → 1
//	${n > 1 ? "items" : "item"}
package lang

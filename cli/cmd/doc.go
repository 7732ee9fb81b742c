// Package cmd implements the hypereval subcommands.
//
// Commands write their results to standard output unless the context
// carries another writer ([WithOutput]), and read "-" from standard input
// unless it carries another reader ([WithInput]).
package cmd

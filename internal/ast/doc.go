// Package ast defines the program tree produced by the parser and consumed
// by the interpreter. Every node embeds a Span so diagnostics can point back
// into the source.
package ast

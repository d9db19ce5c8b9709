// Package interpreter evaluates parsed programs.
//
// An Order is one running instance of a program. StartOrder declares the
// program's globals and functions, Run executes the actions block. Every
// expression and statement is evaluated by walking the tree; statements
// report non-local control flow (break, continue, return) as an explicit
// interrupt value instead of unwinding the Go stack.
//
// Concurrency comes from `spawn` expressions and `par` blocks, both backed
// by goroutines. Tasks share the global scope and the channel registry;
// errors of spawned tasks are routed to the order's fault channel and
// surface from Run.
package interpreter

// Package registry provides the central "glue" for the native standard
// library.
//
// Native modules register their functions under a module name (e.g. "http")
// and a function name (e.g. "get"). Each function declares its parameters
// as an ordered list of slot descriptors; when the interpreter calls a
// native, the registry peels the call's positional and named arguments off
// one slot at a time, validates and converts them, invokes the Go function
// and converts its result back into a runtime value.
//
// The set of modules is closed: it is fixed when the application starts and
// validated once, so a typo in a handler's declaration is caught before any
// program runs.
package registry

// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the lifecycle of an order: loading a program,
// checking or compiling it, and running it against a router. It is decoupled
// from any specific entrypoint like a CLI or server.
package app

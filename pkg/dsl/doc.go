/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing tapevm programs.

It allows developers to write tape programs with a fluent builder instead of counting
'+' and '>' by hand. Loops are closures, so brackets are always balanced.

Example usage:

	package main

	import (
		"github.com/aretw0/tapevm/pkg/dsl"
	)

	func main() {
		program, err := dsl.New().
			PrintText("Sum: ").
			Move(1).Read().
			Move(1).Read().
			Loop(func(b *dsl.Builder) { b.Move(-1).Add(1).Move(1).Add(-1) }).
			Move(-1).Print().
			Build()
		// ... pass program to engine.Execute(ctx, tapevm.Request{Program: program})
	}
*/
package dsl

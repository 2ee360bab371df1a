/*
Package dsl provides a Go DSL for programmatically constructing items and fixation sequences.

It replaces hand-written domain literals (pointer coordinates, region numbering, durations)
with a fluent builder, which is useful for unit tests, examples and synthetic data.

Example usage:

	catalogue := dsl.New()
	catalogue.Add("1").
		Condition("garden-path").
		Region("pre", domain.NewPoint(0, 0), domain.NewPoint(10, 0)).
		Region("critical", domain.NewPoint(10, 0), domain.NewPoint(25, 0))

	loader, err := catalogue.Build() // a *memory.Loader, usable as ports.ItemLoader

	trial, err := dsl.Fixations().
		At(2, 0, 0, 180).
		At(12, 0, 210, 400).
		Off(430, 500).Exclude().
		At(4, 0, 520, 700).
		Trial(0, catalogue.Item("1"), domain.WithIncludeSaccades(true))
*/
package dsl

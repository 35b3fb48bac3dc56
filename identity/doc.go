// Package identity describes who a unit of work runs as. A Principal is
// carried in context.Context and copied, never shared, when work moves from
// the goroutine that created it to the worker that executes it.
package identity

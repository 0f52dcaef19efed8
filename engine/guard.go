package engine

// guardFloat captures the current value of *field, sets it to value, and
// returns a restore function. Solvers that need to temporarily relax a
// Config bound call this and `defer` the returned function so the original
// value is restored on every exit path, including a panic.
func guardFloat(field *float64, value float64) func() {
	old := *field
	*field = value
	return func() { *field = old }
}

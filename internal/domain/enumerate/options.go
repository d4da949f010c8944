package enumerate

// Option applies a configuration option to the Enumerator.
type Option func(*Enumerator)

// WithMaxPending sets the largest number of pending matches EnumerateChecked
// accepts.
func WithMaxPending(n int) Option {
	return func(e *Enumerator) {
		if n > 0 {
			e.maxPending = n
		}
	}
}

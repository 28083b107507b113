package observe

// Signal wraps one adapter result. A degraded signal carries its zero-value
// placeholder plus the reason, so callers decide policy explicitly instead
// of relying on swallowed errors.
type Signal[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

func OK[T any](v T) Signal[T] {
	return Signal[T]{Value: v}
}

func DegradedSignal[T any](reason string) Signal[T] {
	return Signal[T]{Degraded: true, Reason: reason}
}

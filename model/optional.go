package model

// Opt is an explicitly tri-state property value: either unset, meaning the
// value is inherited from a lower-precedence source, or set to a concrete
// value (which may itself be a zero value such as false or 0).
type Opt[T any] struct {
	val T
	set bool
}

// Some returns an Opt holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{val: v, set: true}
}

// IsSet reports whether the value is explicitly set.
func (o Opt[T]) IsSet() bool { return o.set }

// Get returns the value and whether it is set.
func (o Opt[T]) Get() (T, bool) { return o.val, o.set }

// Or returns the value if set, otherwise def.
func (o Opt[T]) Or(def T) T {
	if o.set {
		return o.val
	}
	return def
}

// Merge returns over when it is set, otherwise o.
func (o Opt[T]) Merge(over Opt[T]) Opt[T] {
	if over.set {
		return over
	}
	return o
}

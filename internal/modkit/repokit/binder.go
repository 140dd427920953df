package repokit

// Binder builds a domain repo over a Queryer; services bind once per transaction.
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a function to Binder.
type BindFunc[T any] func(Queryer) T

func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

package handle

// Ref is a handle that is statically known to reference a record of type T.
type Ref[T any] struct {
	h Handle
}

// Of wraps an untyped handle. No check is made here, the arena verifies the
// slot kind when the reference is dereferenced.
func Of[T any](h Handle) Ref[T] { return Ref[T]{h: h} }

func (r Ref[T]) Handle() Handle { return r.h }
func (r Ref[T]) IsNil() bool    { return r.h == Nil }
func (r Ref[T]) String() string { return r.h.String() }

// Handles converts a slice of typed references to their untyped handles.
func Handles[T any](refs []Ref[T]) []Handle {
	hs := make([]Handle, len(refs))
	for i, r := range refs {
		hs[i] = r.h
	}
	return hs
}

package geom

import "iter"

// Instances is the vertex stage: it yields each instance record exactly
// once, in order, without filtering or transforming it. Culling and
// projection belong to the expansion functions, which see whole instances.
func Instances[T any](records []T) iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, r := range records {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Expand runs fn over every record through the vertex stage and collects
// the strips it emits. A nil strip from fn contributes nothing.
func Expand[T any](records []T, fn func(T) []Strip) []Strip {
	var out []Strip
	for _, r := range Instances(records) {
		out = append(out, fn(r)...)
	}
	return out
}

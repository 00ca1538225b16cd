package filter

import "volumepipe/pkg/volume"

// Identity returns a functor that copies its input.
func Identity[T volume.Pixel]() func(T) T {
	return func(v T) T { return v }
}

// Cast returns a functor converting between pixel types.
func Cast[I, O volume.Pixel]() func(I) O {
	return func(v I) O { return O(v) }
}

// Scale returns a functor multiplying by a constant.
func Scale[T volume.Pixel](k float64) func(T) T {
	return func(v T) T { return T(float64(v) * k) }
}

// Add2 returns a functor summing two pixels.
func Add2[T volume.Pixel]() func(T, T) T {
	return func(a, b T) T { return a + b }
}

// Multiply3 returns a functor multiplying three pixels.
func Multiply3[T volume.Pixel]() func(T, T, T) T {
	return func(a, b, c T) T { return a * b * c }
}

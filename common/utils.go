package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
// Builders use it to fall back to package defaults when an option was given a zero value.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// ChunkCount returns how many chunks of chunkSize are needed to cover n elements.
// A non-positive chunkSize is treated as a single chunk covering everything.
//
// Parameters:
//   - n: total number of elements
//   - chunkSize: elements per chunk
//
// Returns:
//   - int: number of chunks (0 when n is 0)
func ChunkCount(n, chunkSize int) int {
	if n <= 0 {
		return 0
	}
	if chunkSize <= 0 {
		return 1
	}
	return (n + chunkSize - 1) / chunkSize
}

// Package color provides colour space conversions and the 4x4 colour
// matrices used by the post-processing filters.
package color

// Matrix is a 4x4 colour matrix in row-major order. Applied to a straight
// RGBA column vector: out[i] = sum_j M[i*4+j] * in[j].
type Matrix [16]float32

// Identity returns the identity colour matrix.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Apply multiplies c by the matrix.
func (m Matrix) Apply(c [4]float32) [4]float32 {
	var out [4]float32
	for i := range 4 {
		row := m[i*4 : i*4+4]
		out[i] = row[0]*c[0] + row[1]*c[1] + row[2]*c[2] + row[3]*c[3]
	}
	return out
}

// Mix interpolates between the identity and m by amount in [0, 1].
func (m Matrix) Mix(amount float32) Matrix {
	id := Identity()
	var out Matrix
	for i := range m {
		out[i] = id[i] + (m[i]-id[i])*amount
	}
	return out
}

// Greyscale returns a luminance-preserving desaturation matrix.
func Greyscale(amount float32) Matrix {
	const r, g, b = 0.2126, 0.7152, 0.0722
	return Matrix{
		r, g, b, 0,
		r, g, b, 0,
		r, g, b, 0,
		0, 0, 0, 1,
	}.Mix(amount)
}

// Sepia returns the classic sepia tone matrix.
func Sepia(amount float32) Matrix {
	return Matrix{
		0.393, 0.769, 0.189, 0,
		0.349, 0.686, 0.168, 0,
		0.272, 0.534, 0.131, 0,
		0, 0, 0, 1,
	}.Mix(amount)
}

// Package geom implements the vertex and geometry stages of the renderer.
//
// Each primitive kind has an instance record and an expansion function that
// turns one record into a bounded triangle strip in clip space. The same
// functions feed the software rasterizer and the GPU vertex buffers, so the
// two backends draw identical geometry.
package geom

// Vertex is one expanded vertex: clip-space position, texture coordinate
// and premultiplied colour.
//
// For textured programs UV is normalized to the page; for tile blocks it
// holds local cell coordinates in [0, BlockSize].
type Vertex struct {
	Pos   Vec2
	UV    Vec2
	Color [4]float32
}

// Strip is a triangle strip: vertices i, i+1, i+2 form triangle i.
type Strip []Vertex

// VertexSize is the packed size of a Vertex in bytes.
const VertexSize = 8 * 4

// StripToList appends the triangles of s to dst as a triangle list.
// Winding alternates in a strip; the list keeps the strip's orientation so
// culling-free pipelines render both identically.
func StripToList(dst []Vertex, s Strip) []Vertex {
	for i := 0; i+2 < len(s); i++ {
		if i%2 == 0 {
			dst = append(dst, s[i], s[i+1], s[i+2])
		} else {
			dst = append(dst, s[i+1], s[i], s[i+2])
		}
	}
	return dst
}

// StripsToList flattens several strips into one triangle list.
func StripsToList(dst []Vertex, strips []Strip) []Vertex {
	for _, s := range strips {
		dst = StripToList(dst, s)
	}
	return dst
}

// premul converts a straight colour to premultiplied.
func premul(c [4]float32) [4]float32 {
	return [4]float32{c[0] * c[3], c[1] * c[3], c[2] * c[3], c[3]}
}

func finiteColor(c [4]float32) bool {
	return finite(c[0], c[1], c[2], c[3])
}

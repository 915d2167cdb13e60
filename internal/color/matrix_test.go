package color

import (
	"math"
	"testing"
)

func TestMatrix_IdentityIsIdentity(t *testing.T) {
	inputs := [][4]float32{
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{0.25, 0.5, 0.75, 0.3},
	}
	for _, in := range inputs {
		if got := Identity().Apply(in); got != in {
			t.Errorf("Identity().Apply(%v) = %v", in, got)
		}
	}
}

func TestGreyscale_EqualChannels(t *testing.T) {
	tests := []struct {
		name string
		in   [4]float32
	}{
		{"red", [4]float32{1, 0, 0, 1}},
		{"mixed", [4]float32{0.2, 0.7, 0.4, 0.5}},
		{"white", [4]float32{1, 1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Greyscale(1).Apply(tt.in)
			if !floatNear(got[0], got[1], 1e-6) || !floatNear(got[1], got[2], 1e-6) {
				t.Errorf("Greyscale(1).Apply(%v) = %v, want equal rgb", tt.in, got)
			}
			if got[3] != tt.in[3] {
				t.Errorf("alpha = %v, want %v", got[3], tt.in[3])
			}
		})
	}
}

func TestMatrix_MixZeroIsIdentity(t *testing.T) {
	if got := Sepia(0); got != Identity() {
		t.Errorf("Sepia(0) = %v, want identity", got)
	}
	if got := Greyscale(0); got != Identity() {
		t.Errorf("Greyscale(0) = %v, want identity", got)
	}
}

func TestLuminance(t *testing.T) {
	if got := Luminance(1, 1, 1); !floatNear(got, 1, 1e-6) {
		t.Errorf("Luminance(white) = %v, want 1", got)
	}
	if got := Luminance(0, 1, 0); !floatNear(got, 0.6, 1e-6) {
		t.Errorf("Luminance(green) = %v, want 0.6", got)
	}
}

func TestToLinearToSRGB_RoundTrip(t *testing.T) {
	in := [4]float32{0.1, 0.5, 0.9, 0.4}
	got := ToSRGB(ToLinear(in))
	for i := range got {
		if !floatNear(got[i], in[i], 1e-5) {
			t.Errorf("channel %d = %v, want %v", i, got[i], in[i])
		}
	}
}

func TestToLinear_Curve(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"black", 0, 0},
		{"white", 1, 1},
		{"linear segment end", 0.04045, 0.04045 / 12.92},
		{"curve start", 0.04046, float32(math.Pow((0.04046+0.055)/1.055, 2.4))},
		{"half", 0.5, float32(math.Pow((0.5+0.055)/1.055, 2.4))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToLinear([4]float32{tt.in, tt.in, tt.in, 0.25})
			for i := range 3 {
				if !floatNear(got[i], tt.want, 1e-6) {
					t.Errorf("ToLinear(%v)[%d] = %v, want %v", tt.in, i, got[i], tt.want)
				}
			}
			if got[3] != 0.25 {
				t.Errorf("alpha = %v, want 0.25", got[3])
			}
		})
	}
}

func TestToSRGB_Curve(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"black", 0, 0},
		{"white", 1, 1},
		{"negative clamps", -0.5, 0},
		{"linear segment end", 0.0031308, 0.0031308 * 12.92},
		{"curve", 0.21404, float32(1.055*math.Pow(0.21404, 1.0/2.4) - 0.055)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToSRGB([4]float32{tt.in, 0, 1, 0.75})
			if !floatNear(got[0], tt.want, 1e-6) {
				t.Errorf("ToSRGB(%v)[0] = %v, want %v", tt.in, got[0], tt.want)
			}
			if got[3] != 0.75 {
				t.Errorf("alpha = %v, want 0.75", got[3])
			}
		})
	}
}

func TestToSRGB_EightBitRoundTrip(t *testing.T) {
	const tol = 1.0 / 255
	for i := range 256 {
		v := float32(i) / 255
		c := [4]float32{v, v, v, 1}
		if got := ToSRGB(ToLinear(c)); !floatNear(got[0], v, tol) {
			t.Errorf("sRGB %d/255 round trip = %v", i, got[0])
		}
		if got := ToLinear(ToSRGB(c)); !floatNear(got[0], v, tol) {
			t.Errorf("linear %d/255 round trip = %v", i, got[0])
		}
	}
}

func floatNear(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

package image

import (
	"errors"
	"math"
	"testing"
)

func TestNewFrame(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr error
	}{
		{"valid", 4, 3, nil},
		{"zero width", 0, 3, ErrInvalidDimensions},
		{"negative height", 4, -1, ErrInvalidDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFrame(tt.w, tt.h)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewFrame(%d, %d) error = %v, want %v", tt.w, tt.h, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(f.Pix()) != tt.w*tt.h {
				t.Errorf("len(Pix) = %d, want %d", len(f.Pix()), tt.w*tt.h)
			}
		})
	}
}

func TestFrame_SetAt(t *testing.T) {
	f := MustFrame(3, 2)
	c := RGBA{R: 0.5, G: 0.25, B: 0, A: 0.5}
	f.Set(2, 1, c)
	if got := f.At(2, 1); got != c {
		t.Errorf("At(2,1) = %v, want %v", got, c)
	}
	f.Set(5, 5, c) // ignored
	if got := f.At(-1, 0); got != Transparent {
		t.Errorf("At(-1,0) = %v, want transparent", got)
	}
	if got := f.AtClamped(10, 10); got != c {
		t.Errorf("AtClamped(10,10) = %v, want %v", got, c)
	}
}

func TestRGBA_StraightPremultiply(t *testing.T) {
	c := RGBA{R: 1, G: 0.5, B: 0.25, A: 0.5}
	p := c.Premultiply()
	s := p.Straight()
	if math.Abs(float64(s.R-c.R)) > 1e-6 || math.Abs(float64(s.G-c.G)) > 1e-6 {
		t.Errorf("round trip = %v, want %v", s, c)
	}
	if got := (RGBA{R: 1, A: 0}).Straight(); got != Transparent {
		t.Errorf("Straight of zero alpha = %v, want transparent", got)
	}
}

func TestRGBA_Over(t *testing.T) {
	top := RGBA{R: 0.5, A: 0.5}
	bottom := RGBA{B: 1, A: 1}
	got := top.Over(bottom)
	want := RGBA{R: 0.5, B: 0.5, A: 1}
	if got != want {
		t.Errorf("Over = %v, want %v", got, want)
	}
}

func TestRGBA_Finite(t *testing.T) {
	if !(RGBA{1, 1, 1, 1}).Finite() {
		t.Error("finite colour reported as non-finite")
	}
	if (RGBA{R: float32(math.NaN())}).Finite() {
		t.Error("NaN colour reported as finite")
	}
	if (RGBA{A: float32(math.Inf(1))}).Finite() {
		t.Error("Inf colour reported as finite")
	}
}

func TestFrame_CopyFrom(t *testing.T) {
	a := MustFrame(2, 2)
	a.Fill(RGBA{1, 1, 1, 1})
	b := MustFrame(2, 2)
	if err := b.CopyFrom(a); err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if b.At(1, 1) != (RGBA{1, 1, 1, 1}) {
		t.Errorf("copied pixel = %v", b.At(1, 1))
	}
	if err := MustFrame(3, 2).CopyFrom(a); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("CopyFrom mismatched = %v, want ErrSizeMismatch", err)
	}
}

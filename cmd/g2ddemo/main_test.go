package main

import (
	"context"
	"testing"

	"github.com/gogpu/g2d"
	"github.com/gogpu/g2d/atlas"
)

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    g2d.Backend
		wantErr bool
	}{
		{"cpu", g2d.BackendCPU, false},
		{"gpu", g2d.BackendGPU, false},
		{"auto", g2d.BackendAuto, false},
		{"metal", 0, true},
	}
	for _, tt := range tests {
		got, err := parseBackend(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseBackend(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseBackend(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPopulate(t *testing.T) {
	s, err := g2d.NewScene(320, 240, g2d.WithLoader(atlas.MapLoader(builtinImages())))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := populate(s, 2, true); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if ids := s.LayerIDs(); len(ids) != 4 {
		t.Errorf("LayerIDs = %v, want 4 layers", ids)
	}
	s.Update(1.0 / 60)
	if err := s.Render(context.Background()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	bounds := s.Image().Bounds()
	if bounds.Dx() != 320 || bounds.Dy() != 240 {
		t.Errorf("image bounds = %v", bounds)
	}
}

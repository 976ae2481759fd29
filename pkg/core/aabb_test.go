package core

import (
	"math"
	"testing"
)

func TestAABB_Slabs(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name     string
		ray      Ray
		wantHit  bool
		wantNear float64
		wantFar  float64
	}{
		{
			name:     "through the center",
			ray:      NewRay(NewVec3(0, 0, 5), NewVec3(0, 0, -1)),
			wantHit:  true,
			wantNear: 4,
			wantFar:  6,
		},
		{
			name:     "from inside",
			ray:      NewRay(NewVec3(0, 0, 0), NewVec3(1, 0, 0)),
			wantHit:  true,
			wantNear: -1,
			wantFar:  1,
		},
		{
			name:    "parallel outside",
			ray:     NewRay(NewVec3(0, 2, 5), NewVec3(0, 0, -1)),
			wantHit: false,
		},
		{
			name:    "diagonal miss",
			ray:     NewRay(NewVec3(3, 0, 5), NewVec3(0, 1, -1)),
			wantHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			near, far, ok := box.Slabs(tt.ray)
			if ok != tt.wantHit {
				t.Fatalf("Expected hit=%t, got %t", tt.wantHit, ok)
			}
			if !ok {
				return
			}
			if math.Abs(near-tt.wantNear) > 1e-12 || math.Abs(far-tt.wantFar) > 1e-12 {
				t.Errorf("Expected [%f, %f], got [%f, %f]", tt.wantNear, tt.wantFar, near, far)
			}
		})
	}
}

func TestAABB_CenterSizeExpand(t *testing.T) {
	box := NewAABBFromPoints(NewVec3(2, 0, 1), NewVec3(0, 1, -1))

	if box.Min != NewVec3(0, 0, -1) || box.Max != NewVec3(2, 1, 1) {
		t.Fatalf("Unexpected bounds %v", box)
	}
	if c := box.Center(); c != NewVec3(1, 0.5, 0) {
		t.Errorf("Center = %v, want (1,0.5,0)", c)
	}
	if s := box.Size(); s != NewVec3(2, 1, 2) {
		t.Errorf("Size = %v, want (2,1,2)", s)
	}

	grown := box.Expand(0.5)
	if grown.Min != NewVec3(-0.5, -0.5, -1.5) || grown.Max != NewVec3(2.5, 1.5, 1.5) {
		t.Errorf("Expand(0.5) = %v", grown)
	}
	if empty := NewAABBFromPoints(); empty != (AABB{}) {
		t.Errorf("Expected zero box for no points, got %v", empty)
	}
}

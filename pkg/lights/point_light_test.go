package lights

import (
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

var _ core.Light = (*PointLight)(nil)

func TestPointLight_Accessors(t *testing.T) {
	light := NewPointLight(core.NewVec3(1, 5, -2), core.NewVec3(0.9, 0.8, 0.7))

	if !light.Position().Equals(core.NewVec3(1, 5, -2)) {
		t.Errorf("Unexpected position %v", light.Position())
	}
	if !light.Color().Equals(core.NewVec3(0.9, 0.8, 0.7)) {
		t.Errorf("Unexpected color %v", light.Color())
	}
}

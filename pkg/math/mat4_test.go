package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTransformVec3(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		in   Vec3
		want Vec3
	}{
		{"translate", Translate(10, 20, 30), Vec3{1, 2, 3}, Vec3{11, 22, 33}},
		{"scale", Scale(2, 2, 2), Vec3{1, 2, 3}, Vec3{2, 4, 6}},
		{"identity", Identity(), Vec3{4, 5, 6}, Vec3{4, 5, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.TransformVec3(tt.in); got != tt.want {
				t.Errorf("TransformVec3: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTRSOrder(t *testing.T) {
	// Scale by 2, rotate 90 degrees around Z, then move by (10, 0, 0).
	m := TRS(Vec3{10, 0, 0}, QuatFromAxisAngle(Vec3{0, 0, 1}, float32(math.Pi/2)), Vec3{2, 2, 2})
	got := m.TransformVec3(Vec3{1, 0, 0})

	if !got.ApproxEqual(Vec3{10, 2, 0}, 0.001) {
		t.Errorf("TRS: got %v, want (10, 2, 0)", got)
	}
}

func TestOrtho(t *testing.T) {
	m := Ortho(0, 100, 0, 50, -1, 1)
	got := m.TransformVec3(Vec3{100, 50, 0})
	if !got.ApproxEqual(Vec3{1, 1, 0}, 0.0001) {
		t.Errorf("Ortho corner: got %v, want (1, 1, 0)", got)
	}
}

package math

import (
	"testing"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Mul(t *testing.T) {
	got := Vec3{1, 2, 3}.Mul(Vec3{2, 0.5, -1})
	want := Vec3{2, 1, -3}
	if got != want {
		t.Errorf("Vec3.Mul() = %v, want %v", got, want)
	}
}

func TestVec3Splat(t *testing.T) {
	if got := Splat(0.5); got != (Vec3{0.5, 0.5, 0.5}) {
		t.Errorf("Splat(0.5) = %v", got)
	}
}

func TestVec3ApproxEqual(t *testing.T) {
	if !(Vec3{1, 1, 1}).ApproxEqual(Vec3{1.0005, 0.9995, 1}, 0.001) {
		t.Error("expected vectors within eps to be equal")
	}
	if (Vec3{1, 1, 1}).ApproxEqual(Vec3{1.1, 1, 1}, 0.001) {
		t.Error("expected vectors outside eps to differ")
	}
}

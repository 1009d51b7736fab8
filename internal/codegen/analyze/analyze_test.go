package analyze

import (
	"testing"

	"github.com/ros2rust/ros2gen/internal/idl/ast"
)

func ptr(ft ast.FieldType) *ast.FieldType { return &ft }

func TestDependenciesCollectsCrossPackageReferences(t *testing.T) {
	msg := ast.Message{
		Fields: []ast.Field{
			{Name: "position", Type: ast.FieldType{Kind: ast.KindNamespacedType, Package: "geometry_msgs", Name: "Point"}},
			{Name: "same_pkg", Type: ast.FieldType{Kind: ast.KindNamespacedType, Name: "Other"}},
			{Name: "plain", Type: ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.Int32}},
		},
	}
	deps := Dependencies(msg, "my_pkg")
	if len(deps) != 1 || !deps["geometry_msgs"] {
		t.Fatalf("expected only geometry_msgs, got %v", deps)
	}
}

func TestDependenciesDescendsIntoArraysAndSequences(t *testing.T) {
	elem := ast.FieldType{Kind: ast.KindNamespacedType, Package: "sensor_msgs", Name: "Image"}
	msg := ast.Message{
		Fields: []ast.Field{
			{Name: "images", Type: ast.FieldType{Kind: ast.KindSequence, Element: &elem}},
		},
	}
	deps := Dependencies(msg, "my_pkg")
	if !deps["sensor_msgs"] {
		t.Fatalf("expected sensor_msgs dependency, got %v", deps)
	}
}

func TestDependenciesExcludesSelfReference(t *testing.T) {
	msg := ast.Message{
		Fields: []ast.Field{
			{Name: "recursive", Type: ast.FieldType{Kind: ast.KindNamespacedType, Package: "my_pkg", Name: "Node"}},
		},
	}
	deps := Dependencies(msg, "my_pkg")
	if len(deps) != 0 {
		t.Fatalf("expected no external dependencies, got %v", deps)
	}
}

func TestNeedsLargeFixedArraySupport(t *testing.T) {
	small := ast.Message{
		Fields: []ast.Field{
			{Name: "data", Type: ast.FieldType{Kind: ast.KindArray, Element: ptr(ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.Int32}), Size: 32}},
		},
	}
	if NeedsLargeFixedArraySupport(small) {
		t.Errorf("size-32 array should not require large-array support")
	}

	large := ast.Message{
		Fields: []ast.Field{
			{Name: "data", Type: ast.FieldType{Kind: ast.KindArray, Element: ptr(ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.Int32}), Size: 33}},
		},
	}
	if !NeedsLargeFixedArraySupport(large) {
		t.Errorf("size-33 array should require large-array support")
	}
}

func TestNeedsLargeFixedArraySupportNestedInSequence(t *testing.T) {
	inner := ast.FieldType{Kind: ast.KindArray, Element: ptr(ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.UInt8}), Size: 64}
	msg := ast.Message{
		Fields: []ast.Field{
			{Name: "rows", Type: ast.FieldType{Kind: ast.KindSequence, Element: &inner}},
		},
	}
	if !NeedsLargeFixedArraySupport(msg) {
		t.Errorf("expected nested large array to be detected through a sequence")
	}
}

func TestServiceDependenciesUnionsRequestAndResponse(t *testing.T) {
	svc := ast.Service{
		Request:  ast.Message{Fields: []ast.Field{{Name: "a", Type: ast.FieldType{Kind: ast.KindNamespacedType, Package: "pkg_a", Name: "A"}}}},
		Response: ast.Message{Fields: []ast.Field{{Name: "b", Type: ast.FieldType{Kind: ast.KindNamespacedType, Package: "pkg_b", Name: "B"}}}},
	}
	deps := ServiceDependencies(svc, "self_pkg")
	if !deps["pkg_a"] || !deps["pkg_b"] || len(deps) != 2 {
		t.Fatalf("expected pkg_a and pkg_b, got %v", deps)
	}
}

func TestActionDependenciesUnionsAllThreeSections(t *testing.T) {
	act := ast.Action{
		Goal:     ast.Message{Fields: []ast.Field{{Name: "g", Type: ast.FieldType{Kind: ast.KindNamespacedType, Package: "pkg_g", Name: "G"}}}},
		Result:   ast.Message{Fields: []ast.Field{{Name: "r", Type: ast.FieldType{Kind: ast.KindNamespacedType, Package: "pkg_r", Name: "R"}}}},
		Feedback: ast.Message{Fields: []ast.Field{{Name: "f", Type: ast.FieldType{Kind: ast.KindNamespacedType, Package: "pkg_f", Name: "F"}}}},
	}
	deps := ActionDependencies(act, "self_pkg")
	if len(deps) != 3 {
		t.Fatalf("expected 3 dependencies, got %v", deps)
	}
}

package emit

import (
	"strings"
	"testing"

	"github.com/ros2rust/ros2gen/internal/idl/ast"
)

func TestGenerateMessagePackageProducesBothLayers(t *testing.T) {
	msg := ast.Message{
		Fields: []ast.Field{
			{Name: "x", Type: ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.Float64}},
			{Name: "label", Type: ast.FieldType{Kind: ast.KindString}},
		},
		Constants: []ast.Constant{
			{Name: "MAX", Type: ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.Int32}, Value: ast.ConstantValue{Kind: ast.ConstInteger, Integer: 10}},
		},
	}

	pkg, err := GenerateMessagePackage("geometry_msgs", "Point", msg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pkg.SourceFiles) != 2 {
		t.Fatalf("expected idiomatic + wire source files, got %d", len(pkg.SourceFiles))
	}
	idiomatic := pkg.SourceFiles[0].Content
	if !strings.Contains(idiomatic, "pub struct Point") {
		t.Errorf("expected idiomatic struct, got:\n%s", idiomatic)
	}
	if !strings.Contains(idiomatic, "pub x: f64") {
		t.Errorf("expected primitive field, got:\n%s", idiomatic)
	}
	if !strings.Contains(idiomatic, "pub label: std::string::String") {
		t.Errorf("expected idiomatic string field, got:\n%s", idiomatic)
	}
	if !strings.Contains(idiomatic, "const MAX: i32 = 10") {
		t.Errorf("expected constant, got:\n%s", idiomatic)
	}

	wire := pkg.SourceFiles[1].Content
	if !strings.Contains(wire, "pub label: rosidl_runtime_rs::String") {
		t.Errorf("expected wire string field, got:\n%s", wire)
	}
	if !strings.Contains(wire, "#[repr(C)]") {
		t.Errorf("expected repr(C) on wire struct, got:\n%s", wire)
	}
}

func TestGenerateMessagePackageManifestIncludesDependencies(t *testing.T) {
	msg := ast.Message{
		Fields: []ast.Field{
			{Name: "position", Type: ast.FieldType{Kind: ast.KindNamespacedType, Package: "geometry_msgs", Name: "Point"}},
		},
	}
	pkg, err := GenerateMessagePackage("my_pkg", "Robot", msg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(pkg.ManifestText, `geometry_msgs = "*"`) {
		t.Errorf("expected manifest to declare geometry_msgs dependency, got:\n%s", pkg.ManifestText)
	}
	if !strings.Contains(pkg.ManifestText, "rosidl_runtime_rs") {
		t.Errorf("expected runtime support dependency, got:\n%s", pkg.ManifestText)
	}
}

func TestGenerateMessagePackageLargeArrayFlag(t *testing.T) {
	msg := ast.Message{
		Fields: []ast.Field{
			{Name: "data", Type: ast.FieldType{
				Kind:    ast.KindArray,
				Element: &ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.UInt8},
				Size:    64,
			}},
		},
	}
	pkg, err := GenerateMessagePackage("my_pkg", "Buffer", msg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(pkg.ManifestText, "serde-big-array") {
		t.Errorf("expected large-array helper dependency, got:\n%s", pkg.ManifestText)
	}
}

func TestGenerateServicePackageProducesRequestAndResponse(t *testing.T) {
	svc := ast.Service{
		Request:  ast.Message{Fields: []ast.Field{{Name: "a", Type: ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.Int64}}}},
		Response: ast.Message{Fields: []ast.Field{{Name: "sum", Type: ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.Int64}}}},
	}
	pkg, err := GenerateServicePackage("my_pkg", "AddTwoInts", svc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idiomatic := pkg.SourceFiles[0].Content
	if !strings.Contains(idiomatic, "AddTwoIntsRequest") || !strings.Contains(idiomatic, "AddTwoIntsResponse") {
		t.Errorf("expected both request and response structs, got:\n%s", idiomatic)
	}
}

func TestGenerateActionPackageProducesGoalResultFeedback(t *testing.T) {
	act := ast.Action{
		Goal:     ast.Message{Fields: []ast.Field{{Name: "order", Type: ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.Int32}}}},
		Result:   ast.Message{Fields: []ast.Field{{Name: "sequence", Type: ast.FieldType{Kind: ast.KindSequence, Element: &ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.Int32}}}}},
		Feedback: ast.Message{Fields: []ast.Field{{Name: "partial_sequence", Type: ast.FieldType{Kind: ast.KindSequence, Element: &ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.Int32}}}}},
	}
	pkg, err := GenerateActionPackage("my_pkg", "Fibonacci", act, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idiomatic := pkg.SourceFiles[0].Content
	for _, want := range []string{"FibonacciGoal", "FibonacciResult", "FibonacciFeedback"} {
		if !strings.Contains(idiomatic, want) {
			t.Errorf("expected %s in generated source, got:\n%s", want, idiomatic)
		}
	}
}

func TestRenderRootModuleGroupsByKind(t *testing.T) {
	entries := []InterfaceEntry{
		{Kind: KindMessage, Camel: "Point", Snake: "point"},
		{Kind: KindService, Camel: "AddTwoInts", Snake: "add_two_ints"},
		{Kind: KindAction, Camel: "Fibonacci", Snake: "fibonacci"},
	}
	text, err := RenderRootModule(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"pub mod msg", "pub mod ffi", "point::Point", "add_two_ints::AddTwoIntsRequest", "fibonacci::FibonacciGoal"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in root module, got:\n%s", want, text)
		}
	}
}

func TestConversionExprForNamespacedField(t *testing.T) {
	expr := conversionExpr(ast.FieldType{Kind: ast.KindNamespacedType, Package: "geometry_msgs", Name: "Point"}, "wire.position")
	if expr != "wire.position.into()" {
		t.Errorf("got %q", expr)
	}
}

func TestGenerateMessagePackageRejectsUnknownDependency(t *testing.T) {
	msg := ast.Message{
		Fields: []ast.Field{
			{Name: "position", Type: ast.FieldType{Kind: ast.KindNamespacedType, Package: "geometry_msgs", Name: "Point"}},
		},
	}
	_, err := GenerateMessagePackage("my_pkg", "Robot", msg, map[string]bool{"std_msgs": true})
	if err == nil {
		t.Fatal("expected an error for a dependency outside the known package set")
	}
}

func TestConversionExprForPrimitiveArrayIsCopy(t *testing.T) {
	elem := ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.UInt8}
	expr := conversionExpr(ast.FieldType{Kind: ast.KindArray, Element: &elem, Size: 4}, "wire.data")
	if expr != "wire.data" {
		t.Errorf("expected a plain copy expression, got %q", expr)
	}
}

func TestConversionExprForMessageSequenceDoesNotCallMissingMethod(t *testing.T) {
	elem := ast.FieldType{Kind: ast.KindNamespacedType, Package: "geometry_msgs", Name: "Point"}
	expr := conversionExpr(ast.FieldType{Kind: ast.KindSequence, Element: &elem}, "wire.points")
	if strings.Contains(expr, "to_vec_converted") {
		t.Errorf("expected no reference to a nonexistent Sequence method, got %q", expr)
	}
	want := "wire.points.as_slice().iter().cloned().map(::std::convert::Into::into).collect()"
	if expr != want {
		t.Errorf("got %q, want %q", expr, want)
	}
}

func TestGenerateServicePackageImplementsServiceTrait(t *testing.T) {
	svc := ast.Service{
		Request:  ast.Message{Fields: []ast.Field{{Name: "a", Type: ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.Int64}}}},
		Response: ast.Message{Fields: []ast.Field{{Name: "sum", Type: ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.Int64}}}},
	}
	pkg, err := GenerateServicePackage("my_pkg", "AddTwoInts", svc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idiomatic := pkg.SourceFiles[0].Content
	if !strings.Contains(idiomatic, "impl rosidl_runtime_rs::Service for AddTwoInts") {
		t.Errorf("expected a Service trait implementation, got:\n%s", idiomatic)
	}
	if !strings.Contains(idiomatic, "type Request = AddTwoIntsRequest") || !strings.Contains(idiomatic, "type Response = AddTwoIntsResponse") {
		t.Errorf("expected associated types binding request/response, got:\n%s", idiomatic)
	}
	if !strings.Contains(idiomatic, "fn get_type_support() -> *const std::ffi::c_void") {
		t.Errorf("expected a shared type-support accessor, got:\n%s", idiomatic)
	}
}

func TestGenerateActionPackageImplementsActionTrait(t *testing.T) {
	act := ast.Action{
		Goal:     ast.Message{Fields: []ast.Field{{Name: "order", Type: ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.Int32}}}},
		Result:   ast.Message{Fields: []ast.Field{{Name: "sequence", Type: ast.FieldType{Kind: ast.KindSequence, Element: &ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.Int32}}}}},
		Feedback: ast.Message{Fields: []ast.Field{{Name: "partial_sequence", Type: ast.FieldType{Kind: ast.KindSequence, Element: &ast.FieldType{Kind: ast.KindPrimitive, Primitive: ast.Int32}}}}},
	}
	pkg, err := GenerateActionPackage("my_pkg", "Fibonacci", act, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idiomatic := pkg.SourceFiles[0].Content
	if !strings.Contains(idiomatic, "impl rosidl_runtime_rs::Action for Fibonacci") {
		t.Errorf("expected an Action trait implementation, got:\n%s", idiomatic)
	}
	for _, want := range []string{"type Goal = FibonacciGoal", "type Result = FibonacciResult", "type Feedback = FibonacciFeedback"} {
		if !strings.Contains(idiomatic, want) {
			t.Errorf("expected %s, got:\n%s", want, idiomatic)
		}
	}
}

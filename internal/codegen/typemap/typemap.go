// Package typemap translates parsed IDL field types and identifiers into
// Rust source fragments, in two layers: a
// wire-level ("ffi") layer compatible with the middleware C ABI, and an
// idiomatic layer using owned Rust types.
package typemap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ros2rust/ros2gen/internal/idl/ast"
)

// Layer selects which of the two parallel module trees a type string targets.
type Layer int

const (
	Idiomatic Layer = iota
	Wire
)

var primitiveRustType = map[ast.Primitive]string{
	ast.Bool:    "bool",
	ast.Byte:    "u8",
	ast.Char:    "u8",
	ast.Int8:    "i8",
	ast.UInt8:   "u8",
	ast.Int16:   "i16",
	ast.UInt16:  "u16",
	ast.Int32:   "i32",
	ast.UInt32:  "u32",
	ast.Int64:   "i64",
	ast.UInt64:  "u64",
	ast.Float32: "f32",
	ast.Float64: "f64",
}

// rustKeywords is the reserved-word list from the original implementation's
// type mapper; a trailing underscore escapes any field name found here.
var rustKeywords = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true, "crate": true,
	"else": true, "enum": true, "extern": true, "false": true, "fn": true, "for": true,
	"if": true, "impl": true, "in": true, "let": true, "loop": true, "match": true,
	"mod": true, "move": true, "mut": true, "pub": true, "ref": true, "return": true,
	"self": true, "Self": true, "static": true, "struct": true, "super": true,
	"trait": true, "true": true, "type": true, "unsafe": true, "use": true, "where": true,
	"while": true, "async": true, "await": true, "dyn": true, "abstract": true,
	"become": true, "box": true, "do": true, "final": true, "macro": true,
	"override": true, "priv": true, "typeof": true, "unsized": true, "virtual": true,
	"yield": true, "try": true,
}

// EscapeKeyword appends a trailing underscore to name if it collides with a
// Rust reserved word. It is total and idempotent: no reserved word ends in
// an underscore, so an escaped name is never itself a keyword and escaping
// it again returns it unchanged.
func EscapeKeyword(name string) string {
	if rustKeywords[name] {
		return name + "_"
	}
	return name
}

// RustTypeForField renders the Rust type string for ft in the given layer.
// selfPackage names the emitting package, used to decide whether a
// namespaced type is a same-package (unqualified) or cross-package
// reference.
func RustTypeForField(ft ast.FieldType, layer Layer, selfPackage string) string {
	switch ft.Kind {
	case ast.KindPrimitive:
		return primitiveRustType[ft.Primitive]

	case ast.KindString:
		if layer == Wire {
			return "rosidl_runtime_rs::String"
		}
		return "std::string::String"

	case ast.KindBoundedString:
		if layer == Wire {
			return fmt.Sprintf("rosidl_runtime_rs::BoundedString<%d>", ft.BoundSize)
		}
		return "std::string::String"

	case ast.KindWString:
		if layer == Wire {
			return "rosidl_runtime_rs::WString"
		}
		return "std::string::String"

	case ast.KindBoundedWString:
		if layer == Wire {
			return fmt.Sprintf("rosidl_runtime_rs::BoundedWString<%d>", ft.BoundSize)
		}
		return "std::string::String"

	case ast.KindArray:
		elem := RustTypeForField(*ft.Element, layer, selfPackage)
		return fmt.Sprintf("[%s; %d]", elem, ft.Size)

	case ast.KindSequence:
		elem := RustTypeForField(*ft.Element, layer, selfPackage)
		if layer == Wire {
			return fmt.Sprintf("rosidl_runtime_rs::Sequence<%s>", elem)
		}
		return fmt.Sprintf("std::vec::Vec<%s>", elem)

	case ast.KindBoundedSequence:
		elem := RustTypeForField(*ft.Element, layer, selfPackage)
		if layer == Wire {
			return fmt.Sprintf("rosidl_runtime_rs::BoundedSequence<%s, %d>", elem, ft.BoundSize)
		}
		return fmt.Sprintf("std::vec::Vec<%s>", elem)

	case ast.KindNamespacedType:
		crossPackage := ft.Package != "" && ft.Package != selfPackage
		if crossPackage {
			if layer == Wire {
				return fmt.Sprintf("%s::ffi::msg::%s", ft.Package, ft.Name)
			}
			return fmt.Sprintf("%s::msg::%s", ft.Package, ft.Name)
		}
		if layer == Wire {
			return fmt.Sprintf("crate::ffi::msg::%s", ft.Name)
		}
		return fmt.Sprintf("crate::msg::%s", ft.Name)

	default:
		panic(fmt.Sprintf("typemap: unhandled FieldTypeKind %v", ft.Kind))
	}
}

// ConstantValueToRust renders a parsed constant/default literal as Rust
// source text. Float literals are given a decimal point if the language's
// own formatting omitted one (e.g. "100" -> "100.0"). String literals are
// double-quoted with backslash, double quote and control characters
// escaped in Rust syntax.
func ConstantValueToRust(v ast.ConstantValue) string {
	switch v.Kind {
	case ast.ConstInteger:
		return strconv.FormatInt(v.Integer, 10)
	case ast.ConstFloat:
		s := strconv.FormatFloat(v.Float, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case ast.ConstBool:
		return strconv.FormatBool(v.Bool)
	case ast.ConstString:
		var sb strings.Builder
		sb.WriteByte('"')
		for _, r := range v.String {
			switch {
			case r == '\\' || r == '"':
				sb.WriteByte('\\')
				sb.WriteRune(r)
			case r < 0x20 || r == 0x7f:
				fmt.Fprintf(&sb, `\u{%x}`, r)
			default:
				sb.WriteRune(r)
			}
		}
		sb.WriteByte('"')
		return sb.String()
	default:
		panic(fmt.Sprintf("typemap: unhandled ConstantKind %v", v.Kind))
	}
}

// ToUpperCamelCase converts a snake_case identifier to UpperCamelCase.
func ToUpperCamelCase(s string) string {
	parts := strings.Split(s, "_")
	var sb strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(p[:1]))
		sb.WriteString(p[1:])
	}
	return sb.String()
}

// ToSnakeCase converts an UpperCamelCase identifier to snake_case.
func ToSnakeCase(s string) string {
	var sb strings.Builder
	prevUpper := false
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !prevUpper {
				sb.WriteByte('_')
			}
			sb.WriteRune(r - 'A' + 'a')
			prevUpper = true
		} else {
			sb.WriteRune(r)
			prevUpper = false
		}
	}
	return sb.String()
}

// SanitizeCrateName replaces the IDL-legal '-' with '_', the convention
// required whenever a package name is used as a Rust identifier or crate
// name; the cache and discovery layers keep the original IDL form.
func SanitizeCrateName(pkg string) string {
	return strings.ReplaceAll(pkg, "-", "_")
}

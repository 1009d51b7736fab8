// Package analyze walks a parsed interface's AST to extract cross-package
// dependencies and to detect type features that affect what the emitter
// puts in the generated manifest.
package analyze

import "github.com/ros2rust/ros2gen/internal/idl/ast"

// largeFixedArrayThreshold is the standard-library derivation boundary
// for trait implementations over fixed-size Rust arrays; any field whose
// type transitively contains a fixed array longer than this needs the
// auxiliary serialization helper dependency.
const largeFixedArrayThreshold = 32

// Dependencies returns the set of foreign package names referenced by msg,
// with selfPackage removed (self-references are not external dependencies).
func Dependencies(msg ast.Message, selfPackage string) map[string]bool {
	deps := map[string]bool{}
	for _, f := range msg.Fields {
		collectFieldType(f.Type, deps)
	}
	for _, c := range msg.Constants {
		collectFieldType(c.Type, deps)
	}
	delete(deps, selfPackage)
	delete(deps, "")
	return deps
}

func collectFieldType(ft ast.FieldType, deps map[string]bool) {
	switch ft.Kind {
	case ast.KindArray, ast.KindSequence, ast.KindBoundedSequence:
		collectFieldType(*ft.Element, deps)
	case ast.KindNamespacedType:
		if ft.Package != "" {
			deps[ft.Package] = true
		}
	}
}

// NeedsLargeFixedArraySupport reports whether any field's type transitively
// contains a fixed array whose size exceeds largeFixedArrayThreshold.
func NeedsLargeFixedArraySupport(msg ast.Message) bool {
	for _, f := range msg.Fields {
		if fieldTypeNeedsLargeArraySupport(f.Type) {
			return true
		}
	}
	return false
}

func fieldTypeNeedsLargeArraySupport(ft ast.FieldType) bool {
	switch ft.Kind {
	case ast.KindArray:
		if ft.Size > largeFixedArrayThreshold {
			return true
		}
		return fieldTypeNeedsLargeArraySupport(*ft.Element)
	case ast.KindSequence, ast.KindBoundedSequence:
		return fieldTypeNeedsLargeArraySupport(*ft.Element)
	default:
		return false
	}
}

// ServiceDependencies unions dependencies across a service's request and
// response.
func ServiceDependencies(svc ast.Service, selfPackage string) map[string]bool {
	deps := Dependencies(svc.Request, selfPackage)
	for d := range Dependencies(svc.Response, selfPackage) {
		deps[d] = true
	}
	return deps
}

// ActionDependencies unions dependencies across an action's goal, result,
// and feedback.
func ActionDependencies(act ast.Action, selfPackage string) map[string]bool {
	deps := Dependencies(act.Goal, selfPackage)
	for d := range Dependencies(act.Result, selfPackage) {
		deps[d] = true
	}
	for d := range Dependencies(act.Feedback, selfPackage) {
		deps[d] = true
	}
	return deps
}

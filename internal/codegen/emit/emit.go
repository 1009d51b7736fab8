// Package emit renders a GeneratedPackage (manifest, build script, root
// module, and dual-layer source files) from a parsed interface.
// Rendering goes through a small set of fixed, internal
// templates (templates.go) — this is not a general template engine.
package emit

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/ros2rust/ros2gen/internal/codegen/analyze"
	"github.com/ros2rust/ros2gen/internal/codegen/typemap"
	"github.com/ros2rust/ros2gen/internal/idl/ast"
	"github.com/ros2rust/ros2gen/internal/rosidlerr"
)

// SourceFile is one generated file and its path relative to the package
// root.
type SourceFile struct {
	Path    string
	Content string
}

// GeneratedPackage is the pure value produced by one emitter call: no
// filesystem binding until the orchestrator writes it out.
type GeneratedPackage struct {
	ManifestText    string
	BuildScriptText string
	RootModuleText  string
	SourceFiles     []SourceFile
}

// InterfaceKind discriminates which of the three IDL file kinds is being
// rendered; it also names the module/directory segment the emitter uses
// (msg/srv/action).
type InterfaceKind string

const (
	KindMessage InterfaceKind = "msg"
	KindService InterfaceKind = "srv"
	KindAction  InterfaceKind = "action"
)

// InterfaceEntry names one interface for the root-module index.
type InterfaceEntry struct {
	Kind  InterfaceKind
	Camel string // e.g. "Point"
	Snake string // e.g. "point"
}

type renderedField struct {
	Name         string
	Type         string
	FromWireExpr string
}

type renderedConstant struct {
	Name  string
	Type  string
	Value string
}

func renderFields(fields []ast.Field, layer typemap.Layer, selfPackage string) []renderedField {
	out := make([]renderedField, 0, len(fields))
	for _, f := range fields {
		out = append(out, renderedField{
			Name:         typemap.EscapeKeyword(f.Name),
			Type:         typemap.RustTypeForField(f.Type, layer, selfPackage),
			FromWireExpr: conversionExpr(f.Type, "wire."+typemap.EscapeKeyword(f.Name)),
		})
	}
	return out
}

func renderConstants(constants []ast.Constant, layer typemap.Layer, selfPackage string) []renderedConstant {
	out := make([]renderedConstant, 0, len(constants))
	for _, c := range constants {
		out = append(out, renderedConstant{
			Name:  c.Name,
			Type:  typemap.RustTypeForField(c.Type, layer, selfPackage),
			Value: typemap.ConstantValueToRust(c.Value),
		})
	}
	return out
}

// conversionExpr renders the Rust expression converting a wire-level field
// access into its idiomatic value: primitives and fixed
// arrays of primitives copy; strings construct via From; sequences of
// primitives convert by a single Into; sequences of message types clone
// each wire element and convert it individually since Sequence<T> has no
// bulk conversion of its own; namespaced fields recurse into the foreign
// conversion impl.
func conversionExpr(ft ast.FieldType, wireExpr string) string {
	switch {
	case ft.Kind == ast.KindPrimitive:
		return wireExpr
	case ft.Kind == ast.KindArray && ft.Element.Kind == ast.KindPrimitive:
		return wireExpr
	case ft.Kind == ast.KindArray:
		return wireExpr + ".map(::std::convert::Into::into)"
	case ft.Kind == ast.KindString || ft.Kind == ast.KindWString ||
		ft.Kind == ast.KindBoundedString || ft.Kind == ast.KindBoundedWString:
		return wireExpr + ".into()"
	case ft.Kind == ast.KindSequence || ft.Kind == ast.KindBoundedSequence:
		if ft.Element.Kind == ast.KindPrimitive {
			return wireExpr + ".into()"
		}
		return wireExpr + ".as_slice().iter().cloned().map(::std::convert::Into::into).collect()"
	case ft.Kind == ast.KindNamespacedType:
		return wireExpr + ".into()"
	default:
		return wireExpr
	}
}

// validateDependencies enforces that every cross-package reference names
// a package the caller knows about. A
// nil knownPackages set skips the check (used by callers, such as this
// package's own tests, that only care about rendering).
func validateDependencies(deps map[string]bool, knownPackages map[string]bool) error {
	if knownPackages == nil {
		return nil
	}
	for dep := range deps {
		if !knownPackages[dep] {
			return rosidlerr.EmitError(fmt.Sprintf("referenced package %q is not among the known interface packages", dep))
		}
	}
	return nil
}

func typeSupportSymbol(packageName, kind, interfaceName string) string {
	return fmt.Sprintf("%s__%s__%s__get_type_support", typemap.SanitizeCrateName(packageName), kind, interfaceName)
}

type traitBindingData struct {
	Package           string
	InterfaceName     string
	TypeSupportSymbol string
}

func renderServiceTrait(pkg, interfaceName string) (string, error) {
	data := traitBindingData{
		Package:           pkg,
		InterfaceName:     interfaceName,
		TypeSupportSymbol: typeSupportSymbol(pkg, string(KindService), interfaceName),
	}
	var buf bytes.Buffer
	if err := serviceTraitTmpl.Execute(&buf, data); err != nil {
		return "", rosidlerr.EmitError(err.Error())
	}
	return buf.String(), nil
}

func renderActionTrait(pkg, interfaceName string) (string, error) {
	data := traitBindingData{Package: pkg, InterfaceName: interfaceName}
	var buf bytes.Buffer
	if err := actionTraitTmpl.Execute(&buf, data); err != nil {
		return "", rosidlerr.EmitError(err.Error())
	}
	return buf.String(), nil
}

type structData struct {
	Package       string
	Kind          InterfaceKind
	InterfaceName string
	StructName    string
	Fields        []renderedField
	Constants     []renderedConstant
}

func renderIdiomaticStruct(pkg string, kind InterfaceKind, interfaceName, structName string, msg ast.Message) (string, error) {
	data := structData{
		Package:       pkg,
		Kind:          kind,
		InterfaceName: interfaceName,
		StructName:    structName,
		Fields:        renderFields(msg.Fields, typemap.Idiomatic, pkg),
		Constants:     renderConstants(msg.Constants, typemap.Idiomatic, pkg),
	}
	var buf bytes.Buffer
	if err := structTmpl.Execute(&buf, data); err != nil {
		return "", rosidlerr.EmitError(err.Error())
	}
	return buf.String(), nil
}

type wireStructData struct {
	StructName        string
	Fields            []renderedField
	Constants         []renderedConstant
	TypeSupportSymbol string
}

func renderWireStruct(pkg string, kind InterfaceKind, interfaceName, structName string, msg ast.Message) (string, error) {
	data := wireStructData{
		StructName:        structName,
		Fields:            renderFields(msg.Fields, typemap.Wire, pkg),
		Constants:         renderConstants(msg.Constants, typemap.Wire, pkg),
		TypeSupportSymbol: typeSupportSymbol(pkg, string(kind), interfaceName),
	}
	var buf bytes.Buffer
	if err := wireStructTmpl.Execute(&buf, data); err != nil {
		return "", rosidlerr.EmitError(err.Error())
	}
	return buf.String(), nil
}

// RenderManifest renders the Cargo.toml text for a package carrying the
// given cross-package dependency set and large-fixed-array flag.
func RenderManifest(packageName string, deps map[string]bool, needsLargeArraySupport bool) (string, error) {
	names := make([]string, 0, len(deps))
	for d := range deps {
		names = append(names, d)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	err := manifestTmpl.Execute(&buf, struct {
		CrateName              string
		Dependencies           []string
		NeedsLargeArraySupport bool
	}{
		CrateName:              typemap.SanitizeCrateName(packageName),
		Dependencies:           names,
		NeedsLargeArraySupport: needsLargeArraySupport,
	})
	if err != nil {
		return "", rosidlerr.EmitError(err.Error())
	}
	return buf.String(), nil
}

// RenderBuildScript renders build.rs for packageName.
func RenderBuildScript(packageName string) (string, error) {
	var buf bytes.Buffer
	err := buildScriptTmpl.Execute(&buf, struct{ CrateName string }{typemap.SanitizeCrateName(packageName)})
	if err != nil {
		return "", rosidlerr.EmitError(err.Error())
	}
	return buf.String(), nil
}

// RenderRootModule renders lib.rs declaring the dual msg/srv/action and
// ffi::{msg,srv,action} module trees for every interface in entries.
func RenderRootModule(entries []InterfaceEntry) (string, error) {
	var messages, services, actions []InterfaceEntry
	for _, e := range entries {
		switch e.Kind {
		case KindMessage:
			messages = append(messages, e)
		case KindService:
			services = append(services, e)
		case KindAction:
			actions = append(actions, e)
		}
	}
	sortEntries := func(es []InterfaceEntry) {
		sort.Slice(es, func(i, j int) bool { return es[i].Camel < es[j].Camel })
	}
	sortEntries(messages)
	sortEntries(services)
	sortEntries(actions)

	var buf bytes.Buffer
	err := rootModuleTmpl.Execute(&buf, struct {
		Messages []InterfaceEntry
		Services []InterfaceEntry
		Actions  []InterfaceEntry
	}{messages, services, actions})
	if err != nil {
		return "", rosidlerr.EmitError(err.Error())
	}
	return buf.String(), nil
}

func entryFor(kind InterfaceKind, interfaceName string) InterfaceEntry {
	return InterfaceEntry{Kind: kind, Camel: interfaceName, Snake: typemap.ToSnakeCase(interfaceName)}
}

// GenerateMessagePackage renders the GeneratedPackage for a single .msg
// interface.
func GenerateMessagePackage(packageName, interfaceName string, msg ast.Message, knownPackages map[string]bool) (GeneratedPackage, error) {
	deps := analyze.Dependencies(msg, packageName)
	if err := validateDependencies(deps, knownPackages); err != nil {
		return GeneratedPackage{}, err
	}
	needsLarge := analyze.NeedsLargeFixedArraySupport(msg)

	idiomatic, err := renderIdiomaticStruct(packageName, KindMessage, interfaceName, interfaceName, msg)
	if err != nil {
		return GeneratedPackage{}, err
	}
	wire, err := renderWireStruct(packageName, KindMessage, interfaceName, interfaceName, msg)
	if err != nil {
		return GeneratedPackage{}, err
	}
	manifest, err := RenderManifest(packageName, deps, needsLarge)
	if err != nil {
		return GeneratedPackage{}, err
	}
	buildScript, err := RenderBuildScript(packageName)
	if err != nil {
		return GeneratedPackage{}, err
	}
	rootModule, err := RenderRootModule([]InterfaceEntry{entryFor(KindMessage, interfaceName)})
	if err != nil {
		return GeneratedPackage{}, err
	}

	snake := typemap.ToSnakeCase(interfaceName)
	return GeneratedPackage{
		ManifestText:    manifest,
		BuildScriptText: buildScript,
		RootModuleText:  rootModule,
		SourceFiles: []SourceFile{
			{Path: filepath.Join("src", "msg", snake+".rs"), Content: idiomatic},
			{Path: filepath.Join("src", "ffi", "msg", snake+"_rmw.rs"), Content: wire},
		},
	}, nil
}

// GenerateServicePackage renders the GeneratedPackage for a single .srv
// interface: request and response struct pairs in both layers.
func GenerateServicePackage(packageName, interfaceName string, svc ast.Service, knownPackages map[string]bool) (GeneratedPackage, error) {
	deps := analyze.ServiceDependencies(svc, packageName)
	if err := validateDependencies(deps, knownPackages); err != nil {
		return GeneratedPackage{}, err
	}
	needsLarge := analyze.NeedsLargeFixedArraySupport(svc.Request) || analyze.NeedsLargeFixedArraySupport(svc.Response)

	reqIdiomatic, err := renderIdiomaticStruct(packageName, KindService, interfaceName, interfaceName+"Request", svc.Request)
	if err != nil {
		return GeneratedPackage{}, err
	}
	respIdiomatic, err := renderIdiomaticStruct(packageName, KindService, interfaceName, interfaceName+"Response", svc.Response)
	if err != nil {
		return GeneratedPackage{}, err
	}
	reqWire, err := renderWireStruct(packageName, KindService, interfaceName, interfaceName+"Request", svc.Request)
	if err != nil {
		return GeneratedPackage{}, err
	}
	respWire, err := renderWireStruct(packageName, KindService, interfaceName, interfaceName+"Response", svc.Response)
	if err != nil {
		return GeneratedPackage{}, err
	}
	trait, err := renderServiceTrait(packageName, interfaceName)
	if err != nil {
		return GeneratedPackage{}, err
	}
	manifest, err := RenderManifest(packageName, deps, needsLarge)
	if err != nil {
		return GeneratedPackage{}, err
	}
	buildScript, err := RenderBuildScript(packageName)
	if err != nil {
		return GeneratedPackage{}, err
	}
	rootModule, err := RenderRootModule([]InterfaceEntry{entryFor(KindService, interfaceName)})
	if err != nil {
		return GeneratedPackage{}, err
	}

	snake := typemap.ToSnakeCase(interfaceName)
	return GeneratedPackage{
		ManifestText:    manifest,
		BuildScriptText: buildScript,
		RootModuleText:  rootModule,
		SourceFiles: []SourceFile{
			{Path: filepath.Join("src", "srv", snake+".rs"), Content: reqIdiomatic + "\n" + respIdiomatic + "\n" + trait},
			{Path: filepath.Join("src", "ffi", "srv", snake+"_rmw.rs"), Content: reqWire + "\n" + respWire},
		},
	}, nil
}

// GenerateActionPackage renders the GeneratedPackage for a single .action
// interface: goal, result, and feedback struct triples in both layers.
func GenerateActionPackage(packageName, interfaceName string, act ast.Action, knownPackages map[string]bool) (GeneratedPackage, error) {
	deps := analyze.ActionDependencies(act, packageName)
	if err := validateDependencies(deps, knownPackages); err != nil {
		return GeneratedPackage{}, err
	}
	needsLarge := analyze.NeedsLargeFixedArraySupport(act.Goal) ||
		analyze.NeedsLargeFixedArraySupport(act.Result) ||
		analyze.NeedsLargeFixedArraySupport(act.Feedback)

	sections := []struct {
		suffix string
		msg    ast.Message
	}{
		{"Goal", act.Goal},
		{"Result", act.Result},
		{"Feedback", act.Feedback},
	}

	var idiomaticBuf, wireBuf bytes.Buffer
	for _, s := range sections {
		idiomatic, err := renderIdiomaticStruct(packageName, KindAction, interfaceName, interfaceName+s.suffix, s.msg)
		if err != nil {
			return GeneratedPackage{}, err
		}
		wire, err := renderWireStruct(packageName, KindAction, interfaceName, interfaceName+s.suffix, s.msg)
		if err != nil {
			return GeneratedPackage{}, err
		}
		idiomaticBuf.WriteString(idiomatic)
		idiomaticBuf.WriteString("\n")
		wireBuf.WriteString(wire)
		wireBuf.WriteString("\n")
	}
	actionTrait, err := renderActionTrait(packageName, interfaceName)
	if err != nil {
		return GeneratedPackage{}, err
	}
	idiomaticBuf.WriteString(actionTrait)

	manifest, err := RenderManifest(packageName, deps, needsLarge)
	if err != nil {
		return GeneratedPackage{}, err
	}
	buildScript, err := RenderBuildScript(packageName)
	if err != nil {
		return GeneratedPackage{}, err
	}
	rootModule, err := RenderRootModule([]InterfaceEntry{entryFor(KindAction, interfaceName)})
	if err != nil {
		return GeneratedPackage{}, err
	}

	snake := typemap.ToSnakeCase(interfaceName)
	return GeneratedPackage{
		ManifestText:    manifest,
		BuildScriptText: buildScript,
		RootModuleText:  rootModule,
		SourceFiles: []SourceFile{
			{Path: filepath.Join("src", "action", snake+".rs"), Content: idiomaticBuf.String()},
			{Path: filepath.Join("src", "ffi", "action", snake+"_rmw.rs"), Content: wireBuf.String()},
		},
	}, nil
}

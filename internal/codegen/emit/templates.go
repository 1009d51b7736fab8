package emit

import "text/template"

// Templates are internal and fixed: the emitter is not a general-purpose
// template engine, just a handful of rendering functions over lists the
// analyzer and type mapper already computed.

var manifestTmpl = template.Must(template.New("manifest").Parse(`[package]
name = "{{.CrateName}}"
version = "0.1.0"
edition = "2021"

[dependencies]
rosidl_runtime_rs = { path = "../_runtime" }
serde = { version = "1", features = ["derive"] }
{{- if .NeedsLargeArraySupport}}
serde-big-array = "0.5"
{{- end}}
{{- range .Dependencies}}
{{.}} = "*"
{{- end}}

[build-dependencies]
`))

var buildScriptTmpl = template.Must(template.New("build_script").Parse(`fn main() {
    println!("cargo:rustc-link-lib={{.CrateName}}__rosidl_typesupport_c");
    println!("cargo:rustc-link-lib={{.CrateName}}__rosidl_generator_c");
}
`))

var rootModuleTmpl = template.Must(template.New("root_module").Parse(`// Generated by ros2gen. Do not edit by hand.

pub mod msg {
{{- range .Messages}}
    #[path = "msg/{{.Snake}}.rs"]
    pub mod {{.Snake}};
    pub use {{.Snake}}::{{.Camel}};
{{- end}}
{{- range .Services}}
    #[path = "srv/{{.Snake}}.rs"]
    pub mod {{.Snake}};
    pub use {{.Snake}}::{{.Camel}}Request;
    pub use {{.Snake}}::{{.Camel}}Response;
    pub use {{.Snake}}::{{.Camel}};
{{- end}}
{{- range .Actions}}
    #[path = "action/{{.Snake}}.rs"]
    pub mod {{.Snake}};
    pub use {{.Snake}}::{{.Camel}}Goal;
    pub use {{.Snake}}::{{.Camel}}Result;
    pub use {{.Snake}}::{{.Camel}}Feedback;
    pub use {{.Snake}}::{{.Camel}};
{{- end}}
}

pub mod ffi {
    pub mod msg {
{{- range .Messages}}
        #[path = "ffi/msg/{{.Snake}}_rmw.rs"]
        pub mod {{.Snake}};
        pub use {{.Snake}}::{{.Camel}};
{{- end}}
    }
    pub mod srv {
{{- range .Services}}
        #[path = "ffi/srv/{{.Snake}}_rmw.rs"]
        pub mod {{.Snake}};
        pub use {{.Snake}}::{{.Camel}}Request;
        pub use {{.Snake}}::{{.Camel}}Response;
{{- end}}
    }
    pub mod action {
{{- range .Actions}}
        #[path = "ffi/action/{{.Snake}}_rmw.rs"]
        pub mod {{.Snake}};
        pub use {{.Snake}}::{{.Camel}}Goal;
        pub use {{.Snake}}::{{.Camel}}Result;
        pub use {{.Snake}}::{{.Camel}}Feedback;
{{- end}}
    }
}
`))

// structTmpl renders one idiomatic struct plus its From<wire> conversion.
var structTmpl = template.Must(template.New("struct").Parse(`/// Generated from {{.Package}}/{{.Kind}}/{{.InterfaceName}}.{{.Kind}}
#[derive(Debug, Clone, PartialEq, Default)]
pub struct {{.StructName}} {
{{- range .Fields}}
    pub {{.Name}}: {{.Type}},
{{- end}}
}

impl {{.StructName}} {
{{- range .Constants}}
    pub const {{.Name}}: {{.Type}} = {{.Value}};
{{- end}}
}

impl From<crate::ffi::{{.Kind}}::{{.StructName}}> for {{.StructName}} {
    fn from(wire: crate::ffi::{{.Kind}}::{{.StructName}}) -> Self {
        Self {
{{- range .Fields}}
            {{.Name}}: {{.FromWireExpr}},
{{- end}}
        }
    }
}
`))

// serviceTraitTmpl renders the marker type binding a service's request and
// response structs together under rosidl_runtime_rs::Service, sharing one
// type-support accessor between them.
var serviceTraitTmpl = template.Must(template.New("service_trait").Parse(`/// Marker type for {{.Package}}/srv/{{.InterfaceName}}.
pub struct {{.InterfaceName}};

impl rosidl_runtime_rs::Service for {{.InterfaceName}} {
    type Request = {{.InterfaceName}}Request;
    type Response = {{.InterfaceName}}Response;

    fn get_type_support() -> *const std::ffi::c_void {
        extern "C" {
            fn {{.TypeSupportSymbol}}() -> *const std::ffi::c_void;
        }
        unsafe { {{.TypeSupportSymbol}}() }
    }
}
`))

// actionTraitTmpl renders the marker type binding an action's goal,
// result, and feedback structs together under rosidl_runtime_rs::Action.
var actionTraitTmpl = template.Must(template.New("action_trait").Parse(`/// Marker type for {{.Package}}/action/{{.InterfaceName}}.
pub struct {{.InterfaceName}};

impl rosidl_runtime_rs::Action for {{.InterfaceName}} {
    type Goal = {{.InterfaceName}}Goal;
    type Result = {{.InterfaceName}}Result;
    type Feedback = {{.InterfaceName}}Feedback;
}
`))

// wireStructTmpl renders one #[repr(C)]-shaped struct plus its type
// support accessor.
var wireStructTmpl = template.Must(template.New("wire_struct").Parse(`#[repr(C)]
#[derive(Debug, Clone)]
pub struct {{.StructName}} {
{{- range .Fields}}
    pub {{.Name}}: {{.Type}},
{{- end}}
}

impl {{.StructName}} {
{{- range .Constants}}
    pub const {{.Name}}: {{.Type}} = {{.Value}};
{{- end}}

    pub fn type_support() -> *const std::ffi::c_void {
        extern "C" {
            fn {{.TypeSupportSymbol}}() -> *const std::ffi::c_void;
        }
        unsafe { {{.TypeSupportSymbol}}() }
    }
}
`))

package annotations

// Built-in annotation schemas

// InvokeAnnotationSchema defines the schema for //bindgen:invoke
var InvokeAnnotationSchema = AnnotationSchema{
	Type:        InvokeAnnotation,
	Description: "Emits one bridge invocation stub per interface method",
	Parameters: map[string]ParameterSpec{
		"cmd_prefix": {
			Type:        StringType,
			Description: "Prefix prepended to every method name to form the command identifier",
			Validator:   ValidateCommandPrefix,
		},
		"on_decode_error": DecodePolicyParameterSpec(),
	},
	Examples: []string{
		"//bindgen:invoke",
		`//bindgen:invoke cmd_prefix="app_"`,
		`//bindgen:invoke cmd_prefix="plugin:fs|" on_decode_error="return"`,
	},
}

// EventsAnnotationSchema defines the schema for //bindgen:events
var EventsAnnotationSchema = AnnotationSchema{
	Type:        EventsAnnotation,
	Description: "Emits event names, listen bindings and subscriptions for a sealed interface",
	Parameters: map[string]ParameterSpec{
		"on_decode_error": DecodePolicyParameterSpec(),
	},
	Examples: []string{
		"//bindgen:events",
		`//bindgen:events on_decode_error="return"`,
	},
}

// SkeletonAnnotationSchema defines the schema for //bindgen:skeleton
var SkeletonAnnotationSchema = AnnotationSchema{
	Type:           SkeletonAnnotation,
	Description:    "Emits an Unimplemented<Interface> type from the functions of this file",
	TargetRequired: true,
	TargetName:     "interface name",
	Parameters: map[string]ParameterSpec{
		"host": {
			Type:        StringSliceType,
			Description: "Comma-separated packages whose parameters are injected by the host",
			Validator:   ValidateIdentifier,
		},
	},
	Examples: []string{
		"//bindgen:skeleton Commands",
		`//bindgen:skeleton Commands host="tauri,wails"`,
	},
}

// BuiltinSchemas returns every schema the generator understands
func BuiltinSchemas() []AnnotationSchema {
	return []AnnotationSchema{
		InvokeAnnotationSchema,
		EventsAnnotationSchema,
		SkeletonAnnotationSchema,
	}
}

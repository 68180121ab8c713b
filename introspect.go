package toolcall

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
)

// introspectType produces the resolved, sanitized parameter schema for a tool
// whose arguments are declared by the struct type typ. Pipeline: reflect a
// raw schema-with-references, reject reference cycles, inline local
// references (bounded by maxDepth), sanitize, then enforce that every
// parameter carries a description.
func introspectType(typ reflect.Type, toolName string, maxDepth int) (map[string]any, error) {
	if typ == nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("tool %q has no argument type", toolName)}
	}
	base := typ
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if base.Kind() != reflect.Struct {
		return nil, &ValidationError{Reason: fmt.Sprintf(
			"tool %q arguments must be declared as a struct type, got %s", toolName, base.Kind())}
	}
	if err := checkParameterKinds(base, toolName); err != nil {
		return nil, err
	}

	// Keep the referenced form ($ref into $defs) so the cycle check sees the
	// full reference graph; the resolver inlines everything afterwards.
	reflector := &jsonschema.Reflector{Anonymous: true}
	raw, err := schemaToMap(reflector.ReflectFromType(base))
	if err != nil {
		return nil, err
	}

	if err := assertNoRecursiveRefs(raw); err != nil {
		return nil, err
	}
	resolved, err := resolveRefs(raw, maxDepth)
	if err != nil {
		return nil, err
	}
	sanitized := sanitizeSchema(resolved)

	if err := requireParameterDescriptions(sanitized, toolName); err != nil {
		return nil, err
	}
	return sanitized, nil
}

// schemaToMap round-trips a reflected schema through JSON into a plain map so
// the resolver and sanitizer operate on one uniform tree shape.
func schemaToMap(schema *jsonschema.Schema) (map[string]any, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// checkParameterKinds rejects argument fields that cannot be described to a
// model. Silently mis-describing them would be worse than failing
// registration.
func checkParameterKinds(typ reflect.Type, toolName string) error {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		kind := field.Type.Kind()
		if kind == reflect.Pointer {
			kind = field.Type.Elem().Kind()
		}
		switch kind {
		case reflect.Chan, reflect.Func, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
			return &ValidationError{Reason: fmt.Sprintf(
				"parameter %q in tool %q has unsupported kind %s", fieldJSONName(field), toolName, kind)}
		}
	}
	return nil
}

// requireParameterDescriptions fails when any top-level parameter of the
// sanitized schema lacks a description, naming the offending parameter.
func requireParameterDescriptions(schema map[string]any, toolName string) error {
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		prop, isMap := props[name].(map[string]any)
		desc, _ := prop["description"].(string)
		if !isMap || desc == "" {
			return &ValidationError{Reason: fmt.Sprintf(
				"parameter %q in tool %q is missing a description; declare it with a struct tag: %s `jsonschema:\"description=...\"`",
				name, toolName, name)}
		}
	}
	return nil
}

func fieldJSONName(field reflect.StructField) string {
	tag := strings.Split(field.Tag.Get("json"), ",")[0]
	if tag != "" && tag != "-" {
		return tag
	}
	return field.Name
}

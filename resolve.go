package toolcall

import (
	"fmt"
	"strings"
)

// defaultMaxResolveDepth bounds reference inlining. Cycles are caught before
// inlining starts; the depth bound catches legitimate-looking but
// pathologically deep schemas that slip past the cycle check.
const defaultMaxResolveDepth = 20

// definitionsTable returns the schema's local definitions, preferring $defs
// over the legacy definitions key.
func definitionsTable(schema map[string]any) map[string]any {
	if defs, ok := schema["$defs"].(map[string]any); ok && len(defs) > 0 {
		return defs
	}
	if defs, ok := schema["definitions"].(map[string]any); ok {
		return defs
	}
	return nil
}

// refName extracts the definition name from a local reference such as
// "#/$defs/Node". Returns "" when the reference has no name segment.
func refName(ref string) string {
	parts := strings.Split(ref, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[len(parts)-1]
}

// assertNoRecursiveRefs walks the schema-with-references graph and fails if a
// local reference is reached that is already on the current path. It keeps an
// explicit path set instead of relying on the host stack, and runs strictly
// before inlining so the inliner never meets an infinite structure.
func assertNoRecursiveRefs(schema map[string]any) error {
	defs := definitionsTable(schema)
	var check func(node any, path map[string]bool) error
	check = func(node any, path map[string]bool) error {
		switch n := node.(type) {
		case map[string]any:
			if ref, ok := n["$ref"].(string); ok {
				if path[ref] {
					return &ValidationError{Reason: fmt.Sprintf(
						"recursive structure detected: %s; recursive structures are not allowed in tool inputs, use parent ids, lists, or a workflow loop instead", ref)}
				}
				if strings.HasPrefix(ref, "#") {
					if target, found := defs[refName(ref)]; found {
						path[ref] = true
						err := check(target, path)
						delete(path, ref)
						return err
					}
				}
				return nil
			}
			for _, v := range n {
				if err := check(v, path); err != nil {
					return err
				}
			}
		case []any:
			for _, item := range n {
				if err := check(item, path); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return check(schema, map[string]bool{})
}

// resolveRefs returns a copy of schema with every local reference replaced by
// the fields of its target definition. Fields already present on the
// referencing node win over the target's. The walk continues through nested
// properties, array items, and union branches; the definitions table is
// dropped from the result. Recursion is bounded by maxDepth (pass 0 for the
// default); exceeding the bound is a distinct, non-cycle failure.
func resolveRefs(schema map[string]any, maxDepth int) (map[string]any, error) {
	if maxDepth <= 0 {
		maxDepth = defaultMaxResolveDepth
	}
	defs := definitionsTable(schema)

	var inline func(node any, depth int) (any, error)
	inline = func(node any, depth int) (any, error) {
		if depth > maxDepth {
			return nil, &ValidationError{Reason: fmt.Sprintf(
				"maximum schema nesting depth (%d) exceeded while resolving references", maxDepth)}
		}
		switch n := node.(type) {
		case map[string]any:
			out := make(map[string]any, len(n))
			inlined := false
			if ref, ok := n["$ref"].(string); ok && strings.HasPrefix(ref, "#") {
				if target, found := defs[refName(ref)].(map[string]any); found {
					resolved, err := inline(target, depth+1)
					if err != nil {
						return nil, err
					}
					for k, v := range resolved.(map[string]any) {
						out[k] = v
					}
					inlined = true
				}
			}
			for k, v := range n {
				if k == "$defs" || k == "definitions" {
					continue
				}
				if k == "$ref" && inlined {
					continue
				}
				rv, err := inline(v, depth+1)
				if err != nil {
					return nil, err
				}
				out[k] = rv
			}
			return out, nil
		case []any:
			out := make([]any, len(n))
			for i, item := range n {
				rv, err := inline(item, depth+1)
				if err != nil {
					return nil, err
				}
				out[i] = rv
			}
			return out, nil
		default:
			return node, nil
		}
	}

	resolved, err := inline(schema, 0)
	if err != nil {
		return nil, err
	}
	return resolved.(map[string]any), nil
}

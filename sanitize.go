package toolcall

import "maps"

// schemaMetaKeys are stripped from every nesting level: provider manifest
// builders expect a plain parameter tree without schema-version markers, ids,
// titles, or leftover definitions tables.
var schemaMetaKeys = []string{"$defs", "$schema", "$id", "id", "title", "definitions"}

// sanitizeSchema rewrites a resolved schema tree for LLM consumption:
// metadata keys are removed at every level, an anyOf with exactly one
// non-null branch collapses to that branch (the enclosing node's description
// wins over the branch's), and every object node becomes closed
// (additionalProperties: false) unless it already states otherwise. The input
// is not mutated. sanitizeSchema(sanitizeSchema(x)) == sanitizeSchema(x).
func sanitizeSchema(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}
	out := make(map[string]any, len(schema))
	maps.Copy(out, schema)

	for _, key := range schemaMetaKeys {
		delete(out, key)
	}

	if anyOf, ok := out["anyOf"].([]any); ok {
		var nonNull map[string]any
		nonNullCount := 0
		for _, branch := range anyOf {
			m, isMap := branch.(map[string]any)
			if isMap && m["type"] == "null" {
				continue
			}
			nonNullCount++
			if isMap {
				nonNull = m
			}
		}
		if nonNullCount == 1 && nonNull != nil {
			merged := make(map[string]any, len(nonNull)+1)
			maps.Copy(merged, nonNull)
			if desc, ok := out["description"]; ok {
				merged["description"] = desc
			}
			return sanitizeSchema(merged)
		}
	}

	if out["type"] == "object" {
		if _, ok := out["additionalProperties"]; !ok {
			out["additionalProperties"] = false
		}
	}

	for key, value := range out {
		switch v := value.(type) {
		case map[string]any:
			out[key] = sanitizeSchema(v)
		case []any:
			items := make([]any, len(v))
			for i, item := range v {
				if m, ok := item.(map[string]any); ok {
					items[i] = sanitizeSchema(m)
				} else {
					items[i] = item
				}
			}
			out[key] = items
		}
	}
	return out
}

package pipeline

// The caption payload has no fixed schema upstream. Extraction is a
// best-effort walk over the decoded JSON value used only for display; the
// verbatim payload stays authoritative.

var directKeys = []string{"caption", "content", "text"}
var listKeys = []string{"captions", "results", "items", "data"}

// ExtractCaptions collects caption strings from an untyped payload.
// A string is a caption; arrays contribute each element recursively; objects
// contribute string values under caption/content/text and recurse under
// captions/results/items/data. Results are deduplicated preserving first
// occurrence. Unknown shapes contribute nothing; the function never panics.
func ExtractCaptions(payload interface{}) []string {
	captions := []string{}
	seen := make(map[string]struct{})

	add := func(s string) {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			captions = append(captions, s)
		}
	}

	var walk func(v interface{})
	walk = func(v interface{}) {
		switch val := v.(type) {
		case string:
			add(val)
		case []interface{}:
			for _, item := range val {
				walk(item)
			}
		case map[string]interface{}:
			for _, key := range directKeys {
				if s, ok := val[key].(string); ok {
					add(s)
				}
			}
			for _, key := range listKeys {
				if nested, ok := val[key]; ok {
					walk(nested)
				}
			}
		}
	}

	walk(payload)
	return captions
}

package pipeline

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestExtractCaptions(t *testing.T) {
	testCases := []struct {
		name    string
		payload string // JSON; decoded before extraction
		want    []string
	}{
		{
			name:    "captions list with duplicate",
			payload: `{"captions": ["a", "b", "a"]}`,
			want:    []string{"a", "b"},
		},
		{
			name:    "bare string",
			payload: `"a"`,
			want:    []string{"a"},
		},
		{
			name:    "empty object",
			payload: `{}`,
			want:    []string{},
		},
		{
			name:    "null",
			payload: `null`,
			want:    []string{},
		},
		{
			name:    "direct caption key",
			payload: `{"caption": "a witty line"}`,
			want:    []string{"a witty line"},
		},
		{
			name:    "nested objects under results",
			payload: `{"results": [{"text": "first"}, {"text": "second"}]}`,
			want:    []string{"first", "second"},
		},
		{
			name:    "mixed direct and list keys",
			payload: `{"content": "top", "data": {"items": ["deep"]}}`,
			want:    []string{"top", "deep"},
		},
		{
			name:    "non-string values ignored",
			payload: `{"captions": [1, true, "only this"], "caption": 42}`,
			want:    []string{"only this"},
		},
		{
			name:    "unknown keys contribute nothing",
			payload: `{"metadata": {"caption": "hidden"}}`,
			want:    []string{},
		},
		{
			name:    "top-level array",
			payload: `["x", ["y"], {"caption": "z"}]`,
			want:    []string{"x", "y", "z"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var payload interface{}
			if err := json.Unmarshal([]byte(tc.payload), &payload); err != nil {
				t.Fatalf("bad test payload: %v", err)
			}

			got := ExtractCaptions(payload)
			if got == nil {
				t.Fatal("ExtractCaptions returned nil, want non-nil slice")
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ExtractCaptions() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestExtractCaptionsNilPayload(t *testing.T) {
	got := ExtractCaptions(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("ExtractCaptions(nil) = %v, want empty non-nil slice", got)
	}
}

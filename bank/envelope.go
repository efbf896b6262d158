package bank

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// unwrap returns the first of paths present in doc, or doc itself.
func unwrap(doc gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := doc.Get(p); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return doc
}

// listOf finds the list in a response that may be a bare array or a paginated object.
func listOf(doc gjson.Result) gjson.Result {
	if doc.IsArray() {
		return doc
	}
	if results := doc.Get("results"); results.IsArray() {
		return results
	}
	return gjson.Parse("[]")
}

func decode(doc gjson.Result, v any) error {
	if !doc.Exists() {
		return nil
	}
	if err := json.Unmarshal([]byte(doc.Raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", doc.Type, err)
	}
	return nil
}

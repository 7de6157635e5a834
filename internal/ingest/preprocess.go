package ingest

import (
	"fmt"
	"sort"
	"strings"
)

var preprocessors = map[string]Preprocess{
	"none":       nil,
	"drop-empty": DropEmpty,
}

// DropEmpty drops documents with no id or no addressable text
func DropEmpty(doc RawDocument) (RawDocument, bool) {
	if strings.TrimSpace(doc.ID) == "" || strings.TrimSpace(doc.Lines) == "" {
		return doc, false
	}
	return doc, true
}

// LookupPreprocess resolves a preprocessor by name; "" means none
func LookupPreprocess(name string) (Preprocess, error) {
	if name == "" {
		return nil, nil
	}
	p, ok := preprocessors[name]
	if !ok {
		names := make([]string, 0, len(preprocessors))
		for n := range preprocessors {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown preprocessor %q (available: %s)", name, strings.Join(names, ", "))
	}
	return p, nil
}

//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

package node

import (
	"encoding/json"
	"strings"
)

// extractJSON best-effort extracts a JSON object embedded in generator
// output: surrounding code-fence markers are stripped, then the substring
// from the first '{' to the last '}' is parsed. It reports false for input
// that yields no object.
func extractJSON(raw string) (map[string]any, bool) {
	text := strings.TrimSpace(raw)
	text = stripCodeFences(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// stripCodeFences removes a leading ```lang line and a trailing ``` marker.
func stripCodeFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		// Drop the language tag on the opening fence line.
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

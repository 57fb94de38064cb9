package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// jsonToken matches, in order: a quoted string optionally followed by a colon
// (a key), a literal, or a number.
var jsonToken = regexp.MustCompile(`("(\\u[a-zA-Z0-9]{4}|\\[^u]|[^\\"])*"(\s*:)?|\b(true|false|null)\b|-?\d+(?:\.\d*)?(?:[eE][+\-]?\d+)?)`)

// outcomeKeys are the routing fields a reader scans for first.
var outcomeKeys = map[string]bool{
	`"success"`:        true,
	`"model_used"`:     true,
	`"attempt_number"`: true,
	`"error"`:          true,
}

// HighlightJSON colors a JSON document for the terminal. Routing outcome keys
// are bold, a false success or an error message is red and a true success is
// green; everything else gets the usual key/string/literal/number palette.
func HighlightJSON(doc string) string {
	if !Enabled() {
		return doc
	}

	var lastKey string
	return jsonToken.ReplaceAllStringFunc(doc, func(tok string) string {
		if strings.HasSuffix(tok, ":") {
			lastKey = strings.TrimSpace(strings.TrimSuffix(tok, ":"))
			if outcomeKeys[lastKey] {
				return BoldCode + Blue + lastKey + ResetCode + ":"
			}
			return Blue + lastKey + ResetCode + ":"
		}

		key := lastKey
		lastKey = ""

		switch {
		case key == `"success"` && tok == "true":
			return Green + BoldCode + tok + ResetCode
		case key == `"success"` && tok == "false":
			return Red + BoldCode + tok + ResetCode
		case key == `"error"` && strings.HasPrefix(tok, `"`):
			return Red + tok + ResetCode
		case strings.HasPrefix(tok, `"`):
			return Green + tok + ResetCode
		case tok == "true" || tok == "false":
			return Yellow + tok + ResetCode
		case tok == "null":
			return DimCode + tok + ResetCode
		default:
			return Purple + tok + ResetCode
		}
	})
}

// PrettyFormat indents v as JSON and highlights it. Strings and byte slices
// are taken as already-encoded JSON.
func PrettyFormat(v interface{}) string {
	var doc string
	switch t := v.(type) {
	case []byte:
		doc = string(t)
	case string:
		doc = t
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprintf("%+v", v)
		}
		doc = string(b)
	}
	return HighlightJSON(doc)
}

// PrettyPrint writes PrettyFormat(v) and a newline to w.
func PrettyPrint(w io.Writer, v interface{}) {
	_, _ = fmt.Fprintln(w, PrettyFormat(v))
}

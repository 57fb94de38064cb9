package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlightJSON_Disabled(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	in := `{"model":"openai/gpt-4","attempt":2,"ok":true}`
	assert.Equal(t, in, HighlightJSON(in))
}

func TestHighlightJSON_ColorsKeysAndValues(t *testing.T) {
	SetEnabled(true)

	out := HighlightJSON(`{"model":"openai/gpt-4","attempt":2}`)
	assert.Contains(t, out, Blue+`"model"`+ResetCode+":")
	assert.Contains(t, out, Green+`"openai/gpt-4"`+ResetCode)
	assert.Contains(t, out, Purple+"2"+ResetCode)
}

func TestPrettyPrint_IndentsStructs(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	var buf bytes.Buffer
	PrettyPrint(&buf, map[string]int{"attempt_number": 3})
	assert.Equal(t, "{\n  \"attempt_number\": 3\n}\n", buf.String())
}

func TestHighlightJSON_RouteOutcome(t *testing.T) {
	SetEnabled(true)

	ok := HighlightJSON(`{"success": true, "model_used": "b/two", "attempt_number": 2}`)
	assert.Contains(t, ok, BoldCode+Blue+`"success"`+ResetCode+":")
	assert.Contains(t, ok, Green+BoldCode+"true"+ResetCode)
	assert.Contains(t, ok, BoldCode+Blue+`"model_used"`+ResetCode+":")

	failed := HighlightJSON(`{"success": false, "model_used": null, "error": "All models failed to respond"}`)
	assert.Contains(t, failed, Red+BoldCode+"false"+ResetCode)
	assert.Contains(t, failed, DimCode+"null"+ResetCode)
	assert.Contains(t, failed, Red+`"All models failed to respond"`+ResetCode)

	// outside the outcome fields, booleans keep the plain palette
	plain := HighlightJSON(`{"is_moderated": true}`)
	assert.Contains(t, plain, Yellow+"true"+ResetCode)
	assert.Contains(t, plain, Blue+`"is_moderated"`+ResetCode+":")
}

package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLLMDumpWritesToInstalledWriter(t *testing.T) {
	var buf bytes.Buffer
	SetLLMWriter(&buf)
	defer SetLLMWriter(nil)

	LogLLMRequest("gpt-4o-mini", "system text", "user text", 1)
	LogLLMResponse("gpt-4o-mini", `{"decision":"hold"}`)

	out := buf.String()
	assert.Contains(t, out, "[LLM][request][gpt-4o-mini]")
	assert.Contains(t, out, "system text")
	assert.Contains(t, out, "user text")
	assert.Contains(t, out, "<image>")
	assert.Contains(t, out, "[LLM][response][gpt-4o-mini]")
	assert.Contains(t, out, `{"decision":"hold"}`)
}

func TestLLMDumpDisabledWithoutWriter(t *testing.T) {
	SetLLMWriter(nil)
	LogLLMRequest("gpt-4o-mini", "system", "user", 0)
	LogLLMResponse("gpt-4o-mini", "raw")
}

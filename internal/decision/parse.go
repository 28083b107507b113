package decision

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// Schema for the reply shape the system instruction demands. percentage is
// optional (defaults to 100) but must be numeric and in range when present;
// an unknown decision value fails the enum and triggers a retry upstream.
const directiveSchema = `{
	"type": "object",
	"required": ["decision"],
	"properties": {
		"decision": {"type": "string", "enum": ["buy", "sell", "hold"]},
		"percentage": {"type": "number", "minimum": 0, "maximum": 100},
		"reason": {"type": "string"}
	}
}`

var compiledSchema = jsonschema.MustCompileString("directive.json", directiveSchema)

// ParseDirective validates a raw model reply into a Directive. Any schema
// violation is an error; the caller's retry budget decides what happens
// next.
func ParseDirective(raw string) (*Directive, error) {
	obj, ok := extractJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("reply contains no JSON object")
	}
	if !gjson.Valid(obj) {
		return nil, fmt.Errorf("reply JSON is malformed")
	}

	var decoded any
	if err := json.Unmarshal([]byte(obj), &decoded); err != nil {
		return nil, fmt.Errorf("decoding reply failed: %w", err)
	}
	if err := compiledSchema.Validate(decoded); err != nil {
		return nil, fmt.Errorf("reply failed schema validation: %w", err)
	}

	parsed := gjson.Parse(obj)
	d := Directive{
		Action:     Action(strings.ToLower(strings.TrimSpace(parsed.Get("decision").String()))),
		Percentage: 100,
		Rationale:  strings.TrimSpace(parsed.Get("reason").String()),
	}
	if pct := parsed.Get("percentage"); pct.Exists() {
		d.Percentage = pct.Float()
	}
	if !d.Action.Valid() {
		return nil, fmt.Errorf("unrecognized action %q", d.Action)
	}
	return &d, nil
}

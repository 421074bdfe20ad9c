package llm

import (
	"fmt"
	"regexp"
	"strings"
)

// fencedBlockRe matches the first ```json ... ``` or bare ``` ... ``` block.
var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?[ \\t]*\\n?(.*?)\\n?```")

// MalformedOutputError means the model answered but the answer is not the expected
// structure. Transport failures are never reported with this type.
type MalformedOutputError struct {
	Message string
	Output  string
	Cause   error
}

func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed model output: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed model output: %s", e.Message)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

// ExtractJSONPayload pulls the JSON document out of a model response.
// When the text contains a fenced code block, the first block's body is used;
// otherwise the whole trimmed text is returned.
func ExtractJSONPayload(text string) (string, error) {
	payload := text
	if match := fencedBlockRe.FindStringSubmatch(text); match != nil {
		payload = match[1]
	}

	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", &MalformedOutputError{Message: "empty response", Output: text}
	}
	return payload, nil
}

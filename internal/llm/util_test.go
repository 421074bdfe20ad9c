package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONPayload(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"title\": \"A\"}\n```",
			expected: `{"title": "A"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"title\": \"A\"}\n```",
			expected: `{"title": "A"}`,
		},
		{
			name:     "code block with preamble and trailer",
			input:    "Here is the article:\n```json\n{\"title\": \"A\"}\n```\nEnjoy!",
			expected: `{"title": "A"}`,
		},
		{
			name:     "code block on one line",
			input:    "```json {\"title\": \"A\"}```",
			expected: `{"title": "A"}`,
		},
		{
			name:     "first of two blocks",
			input:    "```json\n{\"n\": 1}\n```\n```json\n{\"n\": 2}\n```",
			expected: `{"n": 1}`,
		},
		{
			name:     "plain JSON",
			input:    "  {\"title\": \"A\"}  \n",
			expected: `{"title": "A"}`,
		},
		{
			name:     "plain prose passes through",
			input:    "not json at all",
			expected: "not json at all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := ExtractJSONPayload(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, payload)
		})
	}
}

func TestExtractJSONPayload_Empty(t *testing.T) {
	for _, input := range []string{"", "   \n", "```json\n```"} {
		_, err := ExtractJSONPayload(input)
		require.Error(t, err, "input %q", input)

		var malformed *MalformedOutputError
		assert.True(t, errors.As(err, &malformed))
	}
}

func TestMalformedOutputError_Unwrap(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &MalformedOutputError{Message: "invalid JSON", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "invalid JSON")
	assert.Contains(t, err.Error(), "unexpected end of JSON input")
}

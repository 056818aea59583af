package taskconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRenameMapping(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]string
	}{
		{"lines", "a:b\nc:d", map[string]string{"a": "b", "c": "d"}},
		{"malformed line skipped", "a:b\n\nbad", map[string]string{"a": "b"}},
		{"empty side skipped", "a:\n:b\nx : y ", map[string]string{"x": "y"}},
		{"windows newlines", "a:b\r\nc:d\r\n", map[string]string{"a": "b", "c": "d"}},
		{"split on first colon", "ts:created:at", map[string]string{"ts": "created:at"}},
		{"json", `{"old_name": "new_name"}`, map[string]string{"old_name": "new_name"}},
		{"json padded", "  {\"a\":\"b\"}\n", map[string]string{"a": "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRenameMapping(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRenameMapping_Invalid(t *testing.T) {
	for _, text := range []string{"", "   \n ", "bad", "a:\n:b", `{"a": 1}`, `{"a": "b"`, `{}`} {
		_, err := ParseRenameMapping(text)
		assert.ErrorIs(t, err, ErrInvalidMapping, "text %q", text)
	}
}

func TestDeriveTargetType(t *testing.T) {
	assert.Equal(t, TargetSystemMySQL, DeriveTargetType(SourceMySQL))
	assert.Equal(t, TargetSystemClickHouse, DeriveTargetType(SourceClickHouse))
	assert.Equal(t, TargetSystemMinIO, DeriveTargetType(SourceMinIO))
	assert.Equal(t, TargetSystemMySQL, DeriveTargetType(SourceCSV))
	assert.Equal(t, TargetSystemMySQL, DeriveTargetType(""))
}

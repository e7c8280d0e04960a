package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSystemPrompt(t *testing.T) {
	got := SystemPrompt("persona", "hola")
	require.Equal(t, []ChatMessage{
		{Role: RoleSystem, Content: "persona"},
		{Role: RoleUser, Content: "hola"},
	}, got)
}

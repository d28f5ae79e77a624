package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSiteSettings/GoSiteSettings/internal/token"
)

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer

	printTable(&buf, []string{"ID", "Name"}, [][]string{{"1", "contact_email"}, {"2", "banner_text"}})

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "contact_email")
	assert.Contains(t, out, "banner_text")
	assert.NotContains(t, out, "|")
}

func TestTokenCommand(t *testing.T) {
	var buf bytes.Buffer

	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"token", "--length", "20"})

	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, Execute())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	tok := strings.TrimSpace(strings.TrimPrefix(lines[0], "token:"))
	hash := strings.TrimSpace(strings.TrimPrefix(lines[1], "hash:"))

	assert.Len(t, tok, 20)

	ok, err := token.Verify(tok, hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

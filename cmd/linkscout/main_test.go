package main

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedStdin(t *testing.T, input string) {
	t.Helper()
	orig := stdin
	stdin = bufio.NewReader(strings.NewReader(input))
	t.Cleanup(func() { stdin = orig })
}

func TestParseErrorCodesDefault(t *testing.T) {
	for _, raw := range []string{"", "  ", ","} {
		set, err := parseErrorCodes(raw)
		require.NoError(t, err, "raw=%q", raw)
		assert.True(t, set.Contains(404), "raw=%q", raw)
		assert.Equal(t, 1, set.Cardinality(), "raw=%q", raw)
	}
}

func TestParseErrorCodesList(t *testing.T) {
	set, err := parseErrorCodes(" 404 , 500,410 ")
	require.NoError(t, err)
	assert.True(t, set.Contains(404))
	assert.True(t, set.Contains(500))
	assert.True(t, set.Contains(410))
	assert.Equal(t, 3, set.Cardinality())
}

func TestParseErrorCodesRejectsGarbage(t *testing.T) {
	_, err := parseErrorCodes("404,nope")
	assert.Error(t, err)
}

func TestPromptStringTrimsInput(t *testing.T) {
	feedStdin(t, "  https://a.test  \n")
	assert.Equal(t, "https://a.test", promptString("url: ", "fallback"))
}

func TestPromptStringEmptyLineUsesFallback(t *testing.T) {
	feedStdin(t, "\n")
	assert.Equal(t, "fallback", promptString("url: ", "fallback"))
}

func TestPromptStringEOFUsesFallback(t *testing.T) {
	feedStdin(t, "")
	assert.Equal(t, "fallback", promptString("url: ", "fallback"))
}

func TestPromptIntParsesNumber(t *testing.T) {
	feedStdin(t, "3\n")
	assert.Equal(t, 3, promptInt("depth: ", 1))
}

func TestPromptIntFallsBackOnGarbage(t *testing.T) {
	feedStdin(t, "three\n")
	assert.Equal(t, 1, promptInt("depth: ", 1))
}

func TestPromptIntFallsBackOnEmpty(t *testing.T) {
	feedStdin(t, "\n")
	assert.Equal(t, 1, promptInt("depth: ", 1))
}

package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_Short(t *testing.T) {
	assert.Equal(t, []string{"bonjour"}, SplitText("  bonjour \n", 1000, 200))
	assert.Nil(t, SplitText("   ", 1000, 200))
}

func TestSplitText_RespectsSizeAndOverlap(t *testing.T) {
	words := make([]string, 0, 600)
	for i := 0; i < 600; i++ {
		words = append(words, "télétravail")
	}
	text := strings.Join(words, " ")

	chunks := SplitText(text, 1000, 200)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 1000)
		assert.False(t, strings.HasPrefix(c, " "))
		assert.True(t, strings.HasSuffix(c, "télétravail"), "chunk cut inside a word")
	}

	// consecutive chunks overlap
	first := []rune(chunks[0])
	tail := string(first[len(first)-30:])
	assert.Contains(t, chunks[1], tail)
}

func TestSplitText_PrefersParagraphs(t *testing.T) {
	para := strings.Repeat("a", 60)
	text := para + "\n\n" + para + "\n\n" + para

	chunks := SplitText(text, 100, 0)
	require.Len(t, chunks, 3)
	assert.Equal(t, para, chunks[0])
}

func TestSplitText_HardCut(t *testing.T) {
	chunks := SplitText(strings.Repeat("x", 25), 10, 0)
	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, chunks)
}

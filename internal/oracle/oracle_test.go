package oracle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCount_SeedScenario(t *testing.T) {
	lines := []string{
		"the quick brown fox jumps over the lazy dog",
		"the cow jumps over the moon",
		"the rain in spain falls mainly on the plains",
	}

	counts := Count(lines)

	require.Equal(t, int64(5), counts["the"])
	require.Equal(t, int64(2), counts["jumps"])
	require.Equal(t, int64(2), counts["over"])
	require.Equal(t, int64(1), counts["fox"])
	require.Equal(t, int64(1), counts["moon"])
	require.Equal(t, int64(1), counts["plains"])
}

func TestCount_SumEqualsTokenTotal(t *testing.T) {
	lines := []string{
		"  leading and trailing  ",
		"tabs\tbetween\twords",
		"repeat repeat repeat",
		"",
	}

	var total int64
	for _, line := range lines {
		total += int64(len(strings.Fields(line)))
	}

	counts := Count(lines)

	var sum int64
	for word, count := range counts {
		require.NotEmpty(t, word)
		require.Equal(t, word, strings.TrimSpace(word))
		require.Positive(t, count)
		sum += count
	}
	require.Equal(t, total, sum)
}

func TestCount_CaseSensitive(t *testing.T) {
	counts := Count([]string{"Word word WORD word"})

	require.Equal(t, int64(2), counts["word"])
	require.Equal(t, int64(1), counts["Word"])
	require.Equal(t, int64(1), counts["WORD"])
}

func TestCount_EmptyInput(t *testing.T) {
	require.Empty(t, Count(nil))
	require.Empty(t, Count([]string{"", "   ", "\t\n"}))
}

package gitblame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aliceSHA = "3f1c0a9e5d7b2c4e6f8a0b1c2d3e4f5a6b7c8d9e"
	bobSHA   = "9e8d7c6b5a4f3e2d1c0b9a8f7e6d5c4b3a2f1e0d"
)

func TestParseOutput(t *testing.T) {
	data := aliceSHA + ` 1 1 2
author Alice
author-mail <alice@example.com>
author-time 1333274400
author-tz +0000
committer Alice
committer-mail <alice@example.com>
committer-time 1333274400
committer-tz +0000
summary add churn counter
boundary
filename src/count.c
	int count;
` + aliceSHA + ` 2 2
	int total;
` + bobSHA + ` 3 3 1
author Bob
author-mail <bob@example.com>
author-time 1333360800
author-tz +0000
committer Bob
committer-mail <bob@example.com>
committer-time 1333360800
committer-tz +0000
summary reset counter
previous ` + aliceSHA + ` src/count.c
filename src/count.c
		count = 0;
` + aliceSHA + ` 5 4 1
filename src/count.c
	return total;
`

	got, err := parseOutput(data)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, []int{1, 2, 3, 4}, []int{got[0].FinalLine, got[1].FinalLine, got[2].FinalLine, got[3].FinalLine})
	assert.Equal(t, "int count;", got[0].Content)
	assert.Equal(t, "\tcount = 0;", got[2].Content)

	// metadata printed once is shared by later groups of the same commit
	for _, i := range []int{0, 1, 3} {
		assert.Equal(t, aliceSHA, got[i].CommitHash)
		assert.Equal(t, "Alice", got[i].Meta["author"])
		assert.Equal(t, "<alice@example.com>", got[i].Meta["author-mail"])
		assert.Equal(t, "src/count.c", got[i].Meta["filename"])
	}
	_, boundary := got[1].Meta["boundary"]
	assert.True(t, boundary)

	assert.Equal(t, bobSHA, got[2].CommitHash)
	assert.Equal(t, "Bob", got[2].Meta["author"])
	assert.Equal(t, aliceSHA+" src/count.c", got[2].Meta["previous"])
}

func TestParseOutputEmpty(t *testing.T) {
	got, err := parseOutput("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseOutputInvalid(t *testing.T) {
	for _, data := range []string{
		aliceSHA + " 1\n\tx\n",
		aliceSHA + " 1 x 1\n\tx\n",
		aliceSHA + " 1 1 1\nauthor A\n",
	} {
		_, err := parseOutput(data)
		assert.Error(t, err, "data %q", data)
	}
}

func TestToLineAuthor(t *testing.T) {
	l := line{CommitHash: bobSHA, FinalLine: 3, Meta: map[string]string{"author": "Bob Smith", "author-mail": "<bob@example.com>"}}
	got := toLineAuthor(l)
	assert.Equal(t, "Bob Smith", got.Name)
	assert.Equal(t, "bob@example.com", got.Email)
	assert.Equal(t, "Bob Smith <bob@example.com>", got.Label)
	assert.Equal(t, 3, got.Line)
}

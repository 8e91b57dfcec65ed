package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-marks/internal/models"
)

func TestJokeFileRepositoryList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "randomJokes.txt")
	content := "Why did the chicken cross the road?To get to the other side.\nno question mark here\n\nWhat is this? A test? Yes.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	jokes, err := NewJokeFileRepository(path, nil).List(context.Background())
	require.NoError(t, err)
	require.Len(t, jokes, 2)
	assert.Equal(t, models.Joke{Setup: "Why did the chicken cross the road?", Punchline: "To get to the other side."}, jokes[0])
	assert.Equal(t, models.Joke{Setup: "What is this?", Punchline: "A test? Yes."}, jokes[1])
}

func TestJokeFileRepositoryCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "randomJokes.txt")
	repo := NewJokeFileRepository(path, nil)

	jokes, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultJokes, jokes)

	_, err = os.Stat(path)
	require.NoError(t, err)

	reread, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultJokes, reread)
}

func TestParseJokeLine(t *testing.T) {
	joke, ok := ParseJokeLine("  Knock knock?   Who's there?  ")
	require.True(t, ok)
	assert.Equal(t, "Knock knock?", joke.Setup)
	assert.Equal(t, "Who's there?", joke.Punchline)

	_, ok = ParseJokeLine("just a statement")
	assert.False(t, ok)
}

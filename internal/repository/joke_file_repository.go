package repository

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-marks/internal/models"
)

// DefaultJokes seeds a joke file that does not exist yet.
var DefaultJokes = []models.Joke{
	{Setup: "Why did the chicken cross the road?", Punchline: "To get to the other side."},
	{Setup: "What happens if you boil a clown?", Punchline: "You get a laughing stock."},
	{Setup: "Why did the car get a flat tire?", Punchline: "Because there was a fork in the road!"},
	{Setup: "How did the hipster burn his mouth?", Punchline: "He ate his pizza before it was cool."},
	{Setup: "What did the janitor say when he jumped out of the closet?", Punchline: "SUPPLIES!!!!"},
	{Setup: "Why do programmers prefer dark mode?", Punchline: "Because light attracts bugs."},
	{Setup: "Why was the math book sad?", Punchline: "It had too many problems."},
}

// JokeFileRepository reads setup?punchline lines from a text file.
type JokeFileRepository struct {
	path   string
	logger *zap.Logger
}

// NewJokeFileRepository constructs a JokeFileRepository.
func NewJokeFileRepository(path string, logger *zap.Logger) *JokeFileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JokeFileRepository{path: path, logger: logger}
}

// Location returns the joke file path.
func (r *JokeFileRepository) Location() string {
	return r.path
}

// List returns every joke in file order. A missing file is created from
// DefaultJokes first. Lines without a question mark are skipped.
func (r *JokeFileRepository) List(ctx context.Context) ([]models.Joke, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := r.seed(); err != nil {
			return nil, err
		}
		r.logger.Info("joke file created with defaults", zap.String("file", r.path), zap.Int("jokes", len(DefaultJokes)))
		return append([]models.Joke(nil), DefaultJokes...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close() //nolint:errcheck

	jokes := make([]models.Joke, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if joke, ok := ParseJokeLine(scanner.Text()); ok {
			jokes = append(jokes, joke)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	return jokes, nil
}

func (r *JokeFileRepository) seed() error {
	var b strings.Builder
	for _, j := range DefaultJokes {
		b.WriteString(j.Setup)
		b.WriteString(j.Punchline)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(r.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("create joke file %s: %w", r.path, err)
	}
	return nil
}

// ParseJokeLine splits a line at its first question mark. The setup keeps the
// question mark; the punchline is trimmed.
func ParseJokeLine(line string) (models.Joke, bool) {
	trimmed := strings.TrimSpace(line)
	idx := strings.Index(trimmed, "?")
	if idx < 0 {
		return models.Joke{}, false
	}
	return models.Joke{
		Setup:     trimmed[:idx+1],
		Punchline: strings.TrimSpace(trimmed[idx+1:]),
	}, true
}

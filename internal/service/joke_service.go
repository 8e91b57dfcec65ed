package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-marks/internal/models"
	appErrors "github.com/noah-isme/sma-marks/pkg/errors"
)

const maxFunnyMeter = 10

type jokeRepository interface {
	List(ctx context.Context) ([]models.Joke, error)
}

// JokeService draws random jokes and remembers the one currently on screen.
type JokeService struct {
	repo   jokeRepository
	logger *zap.Logger

	mu      sync.Mutex
	jokes   []models.Joke
	current *models.Joke
	told    int
	rng     *rand.Rand
}

// NewJokeService constructs a JokeService. A nil rng seeds from the clock.
func NewJokeService(repo jokeRepository, rng *rand.Rand, logger *zap.Logger) *JokeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &JokeService{repo: repo, rng: rng, logger: logger}
}

// Next picks a random joke, withholding its punchline.
func (s *JokeService) Next(ctx context.Context) (*models.JokeDraw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.jokes == nil {
		jokes, err := s.repo.List(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load jokes")
		}
		s.jokes = jokes
	}
	if len(s.jokes) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no jokes available")
	}

	joke := s.jokes[s.rng.Intn(len(s.jokes))]
	s.current = &joke
	s.told++
	return &models.JokeDraw{Setup: joke.Setup, Told: s.told, FunnyMeter: s.rng.Intn(maxFunnyMeter) + 1}, nil
}

// Punchline reveals the punchline of the last drawn joke.
func (s *JokeService) Punchline() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", appErrors.Clone(appErrors.ErrNotFound, "no joke has been told yet")
	}
	return s.current.Punchline, nil
}

// Told returns how many jokes have been drawn.
func (s *JokeService) Told() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.told
}

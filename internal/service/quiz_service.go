package service

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/sma-marks/internal/models"
	appErrors "github.com/noah-isme/sma-marks/pkg/errors"
)

const (
	firstTryPoints  = 10
	secondTryPoints = 5
	maxAttempts     = 2
)

// QuizService starts arithmetic quiz sessions.
type QuizService struct {
	questions int
	newRand   func() *rand.Rand
}

// NewQuizService constructs a QuizService. newRand may be nil to seed from the clock.
func NewQuizService(questions int, newRand func() *rand.Rand) *QuizService {
	if questions <= 0 {
		questions = 10
	}
	if newRand == nil {
		newRand = func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }
	}
	return &QuizService{questions: questions, newRand: newRand}
}

// ParseDifficulty validates a difficulty name.
func ParseDifficulty(raw string) (models.QuizDifficulty, error) {
	d := models.QuizDifficulty(strings.ToLower(strings.TrimSpace(raw)))
	if d.Digits() == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown difficulty %q; expected easy, moderate or advanced", raw))
	}
	return d, nil
}

// Start opens a new session at the given difficulty.
func (s *QuizService) Start(difficulty models.QuizDifficulty) (*QuizSession, error) {
	digits := difficulty.Digits()
	if digits == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown difficulty %q", difficulty))
	}
	return &QuizSession{digits: digits, total: s.questions, rng: s.newRand()}, nil
}

// QuizSession walks through the questions of one quiz. It is not safe for
// concurrent use.
type QuizSession struct {
	digits   int
	total    int
	rng      *rand.Rand
	asked    int
	attempts int
	score    int
	current  *models.QuizProblem
}

// Next generates the next problem, or returns false when the quiz is over.
func (q *QuizSession) Next() (models.QuizProblem, bool) {
	if q.asked >= q.total {
		return models.QuizProblem{}, false
	}
	q.asked++
	q.attempts = 0
	low, high := operandRange(q.digits)
	p := models.QuizProblem{
		Number:   q.asked,
		Total:    q.total,
		Left:     low + q.rng.Intn(high-low+1),
		Right:    low + q.rng.Intn(high-low+1),
		Operator: "+",
	}
	if q.rng.Intn(2) == 1 {
		p.Operator = "-"
	}
	q.current = &p
	return p, true
}

// Answer judges raw against the current problem. Input that is not a whole
// number is rejected without using up an attempt.
func (q *QuizSession) Answer(raw string) (models.QuizFeedback, error) {
	if q.current == nil {
		return models.QuizFeedback{}, appErrors.Clone(appErrors.ErrConflict, "no open question")
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return models.QuizFeedback{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "please enter a valid number")
	}

	q.attempts++
	want := Solve(*q.current)
	if value == want {
		points := firstTryPoints
		if q.attempts > 1 {
			points = secondTryPoints
		}
		q.score += points
		q.current = nil
		return models.QuizFeedback{Correct: true, Points: points, Score: q.score}, nil
	}
	if q.attempts < maxAttempts {
		return models.QuizFeedback{RetryAllowed: true, Score: q.score}, nil
	}
	q.current = nil
	return models.QuizFeedback{CorrectAnswer: &want, Score: q.score}, nil
}

// Result reports the score so far and its rank.
func (q *QuizSession) Result() models.QuizResult {
	maxScore := q.total * firstTryPoints
	return models.QuizResult{Score: q.score, MaxScore: maxScore, Rank: Rank(q.score, maxScore)}
}

// Solve returns the correct answer to p.
func Solve(p models.QuizProblem) int {
	if p.Operator == "-" {
		return p.Left - p.Right
	}
	return p.Left + p.Right
}

// Rank grades a score normalised to 100.
func Rank(score, maxScore int) string {
	if maxScore <= 0 {
		return "F"
	}
	pct := score * 100 / maxScore
	switch {
	case pct >= 90:
		return "A+"
	case pct >= 80:
		return "A"
	case pct >= 70:
		return "B"
	case pct >= 60:
		return "C"
	case pct >= 50:
		return "D"
	default:
		return "F"
	}
}

func operandRange(digits int) (int, int) {
	low := 1
	for i := 1; i < digits; i++ {
		low *= 10
	}
	return low, low*10 - 1
}

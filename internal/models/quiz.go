package models

// QuizDifficulty selects the operand size of quiz problems.
type QuizDifficulty string

const (
	QuizEasy     QuizDifficulty = "easy"
	QuizModerate QuizDifficulty = "moderate"
	QuizAdvanced QuizDifficulty = "advanced"
)

// Digits returns the operand digit count for the difficulty, or 0 if unknown.
func (d QuizDifficulty) Digits() int {
	switch d {
	case QuizEasy:
		return 1
	case QuizModerate:
		return 2
	case QuizAdvanced:
		return 4
	default:
		return 0
	}
}

// QuizProblem is a single addition or subtraction question.
type QuizProblem struct {
	Number   int    `json:"number"`
	Total    int    `json:"total"`
	Left     int    `json:"left"`
	Operator string `json:"operator"`
	Right    int    `json:"right"`
}

// QuizFeedback reports how an answer was judged.
type QuizFeedback struct {
	Correct       bool `json:"correct"`
	Points        int  `json:"points"`
	RetryAllowed  bool `json:"retry_allowed"`
	CorrectAnswer *int `json:"correct_answer,omitempty"`
	Score         int  `json:"score"`
}

// QuizResult is the final outcome of a finished quiz.
type QuizResult struct {
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
	Rank     string `json:"rank"`
}

package cli

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-marks/internal/app"
	"github.com/noah-isme/sma-marks/internal/models"
	"github.com/noah-isme/sma-marks/internal/service"
	appErrors "github.com/noah-isme/sma-marks/pkg/errors"
)

// QuizSummary is the JSON result of a quiz run.
type QuizSummary struct {
	models.QuizResult
	Answered int  `json:"answered"`
	Finished bool `json:"finished"`
}

// NewQuizCommand creates the quiz command. Answers are read line by line from stdin.
func NewQuizCommand(rootOpts *RootOptions) *cobra.Command {
	var level string
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Play an arithmetic quiz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts, app.Options{}, false)
			if err != nil {
				return err
			}
			defer s.Close()

			difficulty, err := service.ParseDifficulty(level)
			if err != nil {
				return s.out.Fail(err)
			}
			quiz, err := s.app.Quiz.Start(difficulty)
			if err != nil {
				return s.out.Fail(err)
			}
			summary := playQuiz(s.out, quiz, bufio.NewScanner(cmd.InOrStdin()))

			if s.out.Format == "json" {
				return s.out.Success(summary)
			}
			fmt.Fprintf(s.out.Writer, "Final score: %d/%d  Rank: %s\n", summary.Score, summary.MaxScore, summary.Rank)
			return nil
		},
	}
	cmd.Flags().StringVarP(&level, "level", "l", string(models.QuizEasy), "difficulty (easy|moderate|advanced)")
	return cmd
}

// playQuiz asks every question until the input runs out.
func playQuiz(out *OutputFormatter, quiz *service.QuizSession, in *bufio.Scanner) QuizSummary {
	summary := QuizSummary{Finished: true}
	for {
		problem, ok := quiz.Next()
		if !ok {
			break
		}
		if !askProblem(out, quiz, problem, in) {
			summary.Finished = false
			break
		}
		summary.Answered++
	}
	summary.QuizResult = quiz.Result()
	return summary
}

// askProblem returns false when input ends before the question is closed.
func askProblem(out *OutputFormatter, quiz *service.QuizSession, p models.QuizProblem, in *bufio.Scanner) bool {
	for {
		out.Prompt("Question %d/%d: %d %s %d = ", p.Number, p.Total, p.Left, p.Operator, p.Right)
		if !in.Scan() {
			out.Prompt("\n")
			return false
		}
		feedback, err := quiz.Answer(in.Text())
		if err != nil {
			if errors.Is(err, appErrors.ErrValidation) {
				out.Prompt("Please enter a valid number.\n")
				continue
			}
			return false
		}
		switch {
		case feedback.Correct:
			out.Prompt("Correct! +%d points\n", feedback.Points)
			return true
		case feedback.RetryAllowed:
			out.Prompt("Incorrect, try once more.\n")
		default:
			out.Prompt("Incorrect. The answer was %d.\n", *feedback.CorrectAnswer)
			return true
		}
	}
}

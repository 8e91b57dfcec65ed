package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-marks/internal/app"
)

// JokeResult is a fully told joke.
type JokeResult struct {
	Setup      string `json:"setup"`
	Punchline  string `json:"punchline"`
	Told       int    `json:"told"`
	FunnyMeter int    `json:"funny_meter"`
}

// NewJokeCommand creates the joke command.
func NewJokeCommand(rootOpts *RootOptions) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "joke",
		Short: "Tell a random joke from JOKES_FILE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts, app.Options{}, false)
			if err != nil {
				return err
			}
			defer s.Close()

			results := make([]JokeResult, 0, count)
			for i := 0; i < count; i++ {
				draw, err := s.app.Jokes.Next(commandContext(cmd))
				if err != nil {
					return s.out.Fail(err)
				}
				punchline, err := s.app.Jokes.Punchline()
				if err != nil {
					return s.out.Fail(err)
				}
				results = append(results, JokeResult{Setup: draw.Setup, Punchline: punchline, Told: draw.Told, FunnyMeter: draw.FunnyMeter})
			}

			if s.out.Format == "json" {
				return s.out.Success(results)
			}
			for _, j := range results {
				fmt.Fprintf(s.out.Writer, "Joke #%d: %s\n  %s\n  Funny meter: %d/10\n", j.Told, j.Setup, j.Punchline, j.FunnyMeter)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of jokes to tell")
	return cmd
}

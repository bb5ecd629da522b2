package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"quizdesk/internal/app"
)

// NewPlayCmd runs one quiz session on the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take the quiz interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			rt, err := newRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()
			return play(cmd.Context(), rt.quiz, cmd.InOrStdin(), cmd.OutOrStdout(), name, email)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "student name")
	cmd.Flags().StringVar(&email, "email", "", "student email")
	return cmd
}

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// ask prints the prompt and reads one line. It returns false once input ends.
func (p *prompter) ask(prompt string) (string, bool) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

func play(ctx context.Context, quiz *app.QuizService, in io.Reader, out io.Writer, name, email string) error {
	p := &prompter{in: bufio.NewScanner(in), out: out}

	var ok bool
	if strings.TrimSpace(name) == "" {
		if name, ok = p.ask("Name: "); !ok {
			return io.ErrUnexpectedEOF
		}
	}
	if strings.TrimSpace(email) == "" {
		if email, ok = p.ask("Email: "); !ok {
			return io.ErrUnexpectedEOF
		}
	}

	started, err := quiz.StartQuiz(ctx, name, email)
	if err != nil {
		return err
	}
	defer quiz.EndSession(ctx, started.SessionID)
	printWarnings(out, started.Warnings)

	fmt.Fprintf(out, "Welcome %s, %d question(s) to go.\n", started.Student.Name, started.Progress.Total)
	if started.Complete {
		fmt.Fprintln(out, "No questions available.")
		printSummary(out, started.Summary)
		return nil
	}

	question := started.Question
	progress := started.Progress
	for question != nil {
		fmt.Fprintf(out, "\n[%d/%d] %s (%d pt)\n", progress.Answered+1, progress.Total, question.Text, question.Weight)
		for i, option := range question.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, option)
		}
		answer, ok := p.ask("> ")
		if !ok {
			fmt.Fprintln(out, "\nQuiz stopped.")
			return nil
		}
		answer = pickOption(question, answer)

		outcome, err := quiz.SubmitAnswer(ctx, started.SessionID, answer)
		if err != nil {
			return err
		}
		if outcome.Correct {
			fmt.Fprintf(out, "Correct! +%d\n", outcome.Awarded)
		} else {
			fmt.Fprintf(out, "Wrong. The correct answer is: %s\n", outcome.CorrectAnswer)
		}
		printWarnings(out, outcome.Warnings)

		question = outcome.Next
		progress = outcome.Progress
		if outcome.Complete {
			printSummary(out, outcome.Summary)
		}
	}
	return nil
}

// pickOption maps a 1-based option number onto the option text.
func pickOption(q *app.QuestionView, answer string) string {
	if len(q.Options) == 0 {
		return answer
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(q.Options) {
		return answer
	}
	return q.Options[n-1]
}

func printSummary(out io.Writer, s *app.Summary) {
	if s == nil {
		return
	}
	fmt.Fprintf(out, "\nScore: %d/%d (%.1f%%)\n", s.Score.Points, s.Possible, s.Score.Percentage)
	if len(s.Missed) > 0 {
		fmt.Fprintln(out, "Review:")
		for _, m := range s.Missed {
			fmt.Fprintf(out, "  %s -> %s\n", m.Text, m.CorrectAnswer)
		}
	}
	if !s.Persisted {
		fmt.Fprintln(out, "Your score could not be saved.")
	}
}

func printWarnings(out io.Writer, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
}

package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"quizdesk/internal/app"
	"quizdesk/internal/infra/jsonfile"
)

// NewAddQuestionCmd stores one question. Comma-separated options make it multiple choice.
func NewAddQuestionCmd(configPath *string) *cobra.Command {
	var text, answer, weight, options string
	cmd := &cobra.Command{
		Use:   "add-question",
		Short: "Add a question to the question bank",
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

			q, err := rt.teacher.AddQuestion(cmd.Context(), app.NewQuestion{
				Text:          text,
				CorrectAnswer: answer,
				Weight:        parseWeight(weight),
				Options:       app.SplitOptions(options),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added question #%d (%s, weight %d)\n", q.ID, q.Kind(), q.Weight)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "question text")
	cmd.Flags().StringVar(&answer, "answer", "", "correct answer")
	cmd.Flags().StringVar(&weight, "weight", "1", "points for a correct answer")
	cmd.Flags().StringVar(&options, "options", "", "comma-separated options for a multiple-choice question")
	return cmd
}

// parseWeight falls back to 1 when the value is not a number.
func parseWeight(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.WithField("weight", raw).Warn("weight is not a number, using 1")
		return 1
	}
	return n
}

// NewImportCmd stores the questions of a question file.
func NewImportCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a question file into the question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if file != "" {
				cfg.Quiz.QuestionsFile = file
			}
			rt, err := newRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			saved, err := rt.teacher.ImportFile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d question(s) from %s\n", len(saved), rt.file.Path())
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "question file (defaults to quiz.questionsFile)")
	return cmd
}

// NewExportCmd writes the active stored questions as a question file.
func NewExportCmd(configPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the active questions to a question file",
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

			questions, err := rt.bank.ActiveQuestions(cmd.Context())
			if err != nil {
				return err
			}
			if err := jsonfile.Write(out, questions); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d question(s) to %s\n", len(questions), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "vragen.json", "destination file")
	return cmd
}

// NewScoresCmd prints the score history, newest first.
func NewScoresCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Show the score history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Quiz.HistoryLimit
			}
			rt, err := newRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			entries, err := rt.teacher.ScoreHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tSTUDENT\tEMAIL\tPOINTS\tPERCENT")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.1f%%\n",
					e.RecordedAt.Local().Format("2006-01-02 15:04"), e.StudentName, e.StudentEmail, e.Points, e.Percentage)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (defaults to quiz.historyLimit, 0 for all)")
	return cmd
}

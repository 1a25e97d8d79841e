package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"geo-tutor/api/internal/app"
	"geo-tutor/api/internal/store"
	"geo-tutor/api/internal/tutor"
)

func (c *cli) newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the session and submission tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// opening a Postgres store migrates it
			return c.withStore(cmd.Context(), func(st app.Store) error {
				if _, ok := st.(*store.Memory); ok {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "store driver is memory: nothing to migrate")
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return err
			})
		},
	}
}

func newTopicsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List problem topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range tutor.Topics {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), t); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (c *cli) newNewCommand() *cobra.Command {
	var topic string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generate and store a new problem session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var pinned tutor.Topic
			if topic != "" {
				t, ok := tutor.ParseTopic(topic)
				if !ok {
					return fmt.Errorf("unknown topic %q; see 'tutorctl topics'", topic)
				}
				pinned = t
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				var (
					sess tutor.ProblemSession
					err  error
				)
				if pinned == "" {
					sess, err = a.Tutor.CreateSession(cmd.Context())
				} else {
					sess, err = a.Tutor.CreateSessionFor(cmd.Context(), pinned)
				}
				if err != nil {
					return fmt.Errorf("create session (%s): %w", tutor.Kind(err), err)
				}
				return printSession(cmd.OutOrStdout(), sess)
			})
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "topic to generate for (default: random)")
	return cmd
}

func (c *cli) newAnswerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "answer <session-id> <answer>",
		Short: "Grade an answer against a stored session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				g, err := a.Tutor.GradeSubmission(cmd.Context(), args[0], args[1])
				if err != nil {
					return fmt.Errorf("grade (%s): %w", tutor.Kind(err), err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "correct: %t\nfeedback: %s\n", g.IsCorrect, g.Feedback)
				return err
			})
		},
	}
}

func (c *cli) newHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history <session-id>",
		Short: "Show a session and its submissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st app.Store) error {
				sess, err := st.GetSessionByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				subs, err := st.ListSubmissions(cmd.Context(), sess.ID)
				if err != nil {
					return err
				}
				if err := printSession(cmd.OutOrStdout(), sess); err != nil {
					return err
				}
				return printSubmissions(cmd.OutOrStdout(), subs)
			})
		},
	}
}

func printSession(w io.Writer, s tutor.ProblemSession) error {
	_, err := fmt.Fprintf(w, "session: %s\ncreated: %s\nanswer:  %d\n\n%s\n",
		s.ID, s.CreatedAt.Format("2006-01-02 15:04:05"), s.FinalAnswer, strings.TrimSpace(s.ProblemText))
	return err
}

func printSubmissions(w io.Writer, subs []tutor.Submission) error {
	if len(subs) == 0 {
		_, err := fmt.Fprintln(w, "\nno submissions")
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d submission(s):\n", len(subs))
	if err != nil {
		return err
	}
	for _, s := range subs {
		mark := "✗"
		if s.IsCorrect {
			mark = "✓"
		}
		if _, err := fmt.Fprintf(w, "%s %s  %q  %s\n", mark, s.CreatedAt.Format("2006-01-02 15:04:05"), s.UserAnswer, s.Feedback); err != nil {
			return err
		}
	}
	return nil
}

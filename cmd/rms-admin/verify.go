package main

import (
	"errors"
	"fmt"

	"records-portal-api/services"

	"github.com/spf13/cobra"
)

// errViolations makes the command exit non-zero when the log is inconsistent.
var errViolations = errors.New("workflow log violations found")

func newVerifyLogCommand(app *App) *cobra.Command {
	var documentID int

	cmd := &cobra.Command{
		Use:   "verify-log",
		Short: "Replay workflow logs against the transition table",
		Long: `Walks every document's workflow log (or one document with --document)
and reports entries that do not follow the transition table or disagree
with the document's current status and handler.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.database()
			if err != nil {
				return err
			}
			audit := services.NewRMSService(db).Audit

			var checked int
			var violations []services.LogViolation
			if documentID > 0 {
				checked = 1
				violations, err = audit.Verify(cmd.Context(), documentID)
			} else {
				checked, violations, err = audit.VerifyAll(cmd.Context())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if app.Format == "json" {
				if violations == nil {
					violations = []services.LogViolation{}
				}
				if err := writeJSON(out, map[string]any{"checked": checked, "violations": violations}); err != nil {
					return err
				}
			} else {
				for _, v := range violations {
					fmt.Fprintf(out, "document %d log %d: %s\n", v.DocumentID, v.LogID, v.Message)
				}
				fmt.Fprintf(out, "%d document(s) checked, %d violation(s)\n", checked, len(violations))
			}

			if len(violations) > 0 {
				return errViolations
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&documentID, "document", 0, "verify a single document id")
	return cmd
}

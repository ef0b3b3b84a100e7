package main

import (
	"fmt"

	"formdeck/internal/ui"

	"github.com/spf13/cobra"
)

func newPromptCmd() *cobra.Command {
	opts := ui.PromptOptions{}
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Ask a single question and print the answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			answer, err := ui.Prompt(cmd.Context(), opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), answer)
			return err
		},
	}
	cmd.Flags().StringVarP(&opts.Title, "title", "t", "", "Prompt title")
	cmd.Flags().StringVarP(&opts.Question, "question", "q", "", "Question, rendered as markdown")
	cmd.Flags().StringVarP(&opts.DefaultAnswer, "default", "d", "", "Initial answer")
	return cmd
}

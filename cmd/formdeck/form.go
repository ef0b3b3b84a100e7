package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	appErrors "formdeck/internal/errors"
	"formdeck/internal/form"
	"formdeck/internal/ui"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

type formOptions struct {
	fields  string
	title   string
	content string
	copy    bool
}

func newFormCmd() *cobra.Command {
	opts := &formOptions{}
	cmd := &cobra.Command{
		Use:   "form",
		Short: "Render a field file as a form and print the submitted payload",
		Long: `Render the YAML field list in --fields as a modal form.

On submit the payload is printed as JSON. A cancelled form exits with an
error and prints nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runForm(cmd.Context(), cmd.OutOrStdout(), opts, copier(opts.copy))
		},
	}
	cmd.Flags().StringVarP(&opts.fields, "fields", "f", "", "YAML file describing the fields")
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Form title")
	cmd.Flags().StringVar(&opts.content, "content", "", "Markdown shown above the fields")
	cmd.Flags().BoolVarP(&opts.copy, "copy", "c", false, "Also copy the JSON payload to the clipboard")
	_ = cmd.MarkFlagRequired("fields")
	return cmd
}

func copier(enabled bool) func(string) error {
	if !enabled {
		return nil
	}
	return clipboard.WriteAll
}

func loadFields(path string) (form.Fields, error) {
	//nolint:gosec // G304: the field file is chosen by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fields: %w", err)
	}
	return form.ParseFields(data)
}

func runForm(ctx context.Context, out io.Writer, opts *formOptions, copyFn func(string) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fields, err := loadFields(opts.fields)
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	payload, err := ui.RunForm(ctx, ui.FormOptions{
		Title:   opts.title,
		Content: opts.content,
		Fields:  fields,
		Store:   store,
		Size:    ui.OverlaySizeWide,
	})
	if err != nil {
		return err
	}
	return writePayload(out, payload, copyFn)
}

// writePayload prints payload as indented JSON and, when copyFn is set,
// hands the same text to it.
func writePayload(out io.Writer, payload map[string]any, copyFn func(string) error) error {
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return appErrors.New(appErrors.CodeTypeMismatch, "payload is not JSON encodable", err)
	}
	if _, err := fmt.Fprintln(out, string(data)); err != nil {
		return err
	}
	if copyFn != nil {
		if err := copyFn(string(data)); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
	}
	return nil
}

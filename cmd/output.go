package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/ecofuelconnect/efc/internal/adapters/backend"
	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// emit prints value as JSON under --json, otherwise through human.
func (a *app) emit(cmd *cobra.Command, value any, human func(io.Writer) error) error {
	if a.asJSON {
		return writeJSON(cmd.OutOrStdout(), value)
	}

	return human(cmd.OutOrStdout())
}

// done prints a one-line confirmation, or {"ok":true} under --json.
func (a *app) done(cmd *cobra.Command, format string, args ...any) error {
	if a.asJSON {
		return writeJSON(cmd.OutOrStdout(), map[string]bool{"ok": true})
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "✓ "+format+"\n", args...)
	return err
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func writeTable(w io.Writer, empty string, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, empty)
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

type field struct {
	label string
	value string
}

func writeFields(w io.Writer, fields []field) error {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.label))
	}

	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width, f.label, f.value); err != nil {
			return err
		}
	}

	return nil
}

// writeAlert prints the single line a failed command leaves behind. Façade
// failures already carry wording meant for people.
func writeAlert(w io.Writer, err error) {
	message := err.Error()
	var apiErr *backend.Error
	if errors.As(err, &apiErr) {
		message = apiErr.Message
	}

	_, _ = fmt.Fprintf(w, "✗ %s\n", message)

	if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrNoSession) || errors.Is(err, domain.ErrSessionExpired) {
		_, _ = fmt.Fprintln(w, "  run `efc login` to sign in")
	}
}

func parseDate(flag string, raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}

	parsed, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be a date like 2026-03-10: %w", flag, err)
	}

	return parsed, nil
}

func formatDate(at time.Time) string {
	if at.IsZero() {
		return ""
	}

	return at.Format(dateLayout)
}

func formatQuantity(quantity float64, unit string) string {
	value := strconv.FormatFloat(quantity, 'f', -1, 64)
	if unit == "" {
		return value
	}

	return value + " " + unit
}

func formatBool(value bool, yes string, no string) string {
	if value {
		return yes
	}

	return no
}

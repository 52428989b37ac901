package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ecofuelconnect/efc/internal/domain"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
)

type diagProbe struct {
	OK      bool          `json:"ok"`
	Error   string        `json:"error,omitempty"`
	Elapsed time.Duration `json:"elapsedNs"`
}

type diagSample struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

type diagReport struct {
	APIURL  string       `json:"apiUrl"`
	Mode    string       `json:"mode"`
	Profile string       `json:"profile"`
	Session string       `json:"session"`
	Probe   diagProbe    `json:"probe"`
	Metrics []diagSample `json:"metrics"`
}

func newDiagCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diag",
		Short: "Probe the backend and print transport metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report := diagReport{
				APIURL:  app.client.BaseURL(),
				Mode:    string(app.cfg.Mode),
				Profile: string(app.cfg.Profile),
				Session: describeSession(cmd, app),
			}

			start := app.now()
			_, probeErr := app.api.Dashboard.Stats(cmd.Context())
			report.Probe = diagProbe{OK: probeErr == nil, Elapsed: app.now().Sub(start)}
			if probeErr != nil {
				report.Probe.Error = probeErr.Error()
			}

			families, err := app.registry.Gather()
			if err != nil {
				return fmt.Errorf("gather metrics: %w", err)
			}
			report.Metrics = samplesFrom(families)

			if err := app.emit(cmd, report, func(w io.Writer) error {
				return writeDiag(w, report)
			}); err != nil {
				return err
			}

			return probeErr
		},
	}
}

func describeSession(cmd *cobra.Command, app *app) string {
	session, err := app.sessions.Current(cmd.Context(), app.cfg.Profile)
	switch {
	case errors.Is(err, domain.ErrNoSession):
		return "none"
	case errors.Is(err, domain.ErrSessionExpired):
		return "expired"
	case err != nil:
		return "unreadable: " + err.Error()
	}

	if session.ExpiresAt.IsZero() {
		return session.DisplayName()
	}

	return fmt.Sprintf("%s (expires %s)", session.DisplayName(), formatExpiry(session.ExpiresAt))
}

func samplesFrom(families []*dto.MetricFamily) []diagSample {
	samples := make([]diagSample, 0, len(families))
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			sample := diagSample{Name: family.GetName()}
			for _, label := range metric.GetLabel() {
				if sample.Labels == nil {
					sample.Labels = map[string]string{}
				}
				sample.Labels[label.GetName()] = label.GetValue()
			}

			switch family.GetType() {
			case dto.MetricType_COUNTER:
				sample.Value = metric.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				sample.Value = metric.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				sample.Name += "_count"
				sample.Value = float64(metric.GetHistogram().GetSampleCount())
			default:
				continue
			}

			samples = append(samples, sample)
		}
	}

	return samples
}

func writeDiag(w io.Writer, report diagReport) error {
	probe := fmt.Sprintf("ok in %s", report.Probe.Elapsed.Round(time.Millisecond))
	if !report.Probe.OK {
		probe = "failed: " + report.Probe.Error
	}

	if err := writeFields(w, []field{
		{"api", report.APIURL},
		{"mode", report.Mode},
		{"profile", report.Profile},
		{"session", report.Session},
		{"probe", probe},
	}); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "\nmetrics:"); err != nil {
		return err
	}
	for _, sample := range report.Metrics {
		if _, err := fmt.Fprintf(w, "  %s%s %g\n", sample.Name, formatLabels(sample.Labels), sample.Value); err != nil {
			return err
		}
	}

	return nil
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}

	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%q", key, labels[key]))
	}

	return "{" + strings.Join(pairs, ",") + "}"
}

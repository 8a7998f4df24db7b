package obscheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"real-estate-service/internal/tools/common"
	"real-estate-service/internal/tools/ui"
)

type options struct {
	serviceURL string
	grafanaURL string
	window     time.Duration
	ci         bool
}

// NewRootCommand builds the observability smoke-check CLI. It drives a
// request through the service and verifies the resulting trace is visible
// through Grafana's Prometheus and Tempo datasources.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "obscheck",
		Short:         "Verify the tracing pipeline end to end",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.serviceURL, "service-url", "http://localhost:8080", "base URL of the running service")
	root.PersistentFlags().StringVar(&opts.grafanaURL, "grafana-url", "http://localhost:3001", "base URL of Grafana")
	root.PersistentFlags().DurationVar(&opts.window, "window", 5*time.Minute, "how far back to look for exemplars")
	root.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive mode with JSON output")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Generate traffic and verify a trace round trip",
		RunE: func(cmd *cobra.Command, args []string) error {
			action := func(ctx context.Context) ([]string, error) {
				return runCheck(ctx, *opts)
			}
			if opts.ci {
				details, err := action(cmd.Context())
				common.PrintCIResult(err == nil, "obscheck run", details, err)
				return err
			}
			_, err := ui.Run("obscheck run", action)
			return err
		},
	})

	return root
}

func runCheck(ctx context.Context, opts options) ([]string, error) {
	started := time.Now()
	if err := hitService(ctx, opts); err != nil {
		return nil, err
	}
	details := []string{"service responded to traffic"}

	traceID, err := fetchTraceIDFromExemplar(ctx, opts, started.Add(-opts.window))
	if err != nil {
		return details, err
	}
	details = append(details, "found exemplar trace "+traceID)

	if err := verifyTraceInTempo(ctx, opts, traceID); err != nil {
		return details, err
	}
	details = append(details, "trace retrievable from tempo")
	return details, nil
}

func hitService(ctx context.Context, opts options) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.serviceURL+"/api/v1/properties", nil)
	if err != nil {
		return fmt.Errorf("build service request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("reach service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("service returned %d", resp.StatusCode)
	}
	return nil
}

func grafanaGET(ctx context.Context, opts options, path string) ([]byte, error) {
	base, err := url.Parse(opts.grafanaURL)
	if err != nil {
		return nil, fmt.Errorf("parse grafana url: %w", err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse request path: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build grafana request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reach grafana: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read grafana response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("grafana returned %d for %s", resp.StatusCode, path)
	}
	return body, nil
}

type exemplarResponse struct {
	Data []struct {
		Exemplars []struct {
			Timestamp float64           `json:"timestamp"`
			Labels    map[string]string `json:"labels"`
		} `json:"exemplars"`
	} `json:"data"`
}

func fetchTraceIDFromExemplar(ctx context.Context, opts options, since time.Time) (string, error) {
	query := url.Values{}
	query.Set("query", `http_server_request_duration_seconds_bucket`)
	query.Set("start", fmt.Sprintf("%d", since.Unix()))
	query.Set("end", fmt.Sprintf("%d", time.Now().Unix()))
	path := "/api/datasources/proxy/uid/prometheus/api/v1/query_exemplars?" + query.Encode()

	body, err := grafanaGET(ctx, opts, path)
	if err != nil {
		return "", err
	}
	var parsed exemplarResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode exemplar response: %w", err)
	}

	cutoff := float64(since.Unix())
	for _, series := range parsed.Data {
		for _, ex := range series.Exemplars {
			if ex.Timestamp < cutoff {
				continue
			}
			if traceID := ex.Labels["trace_id"]; traceID != "" {
				return traceID, nil
			}
		}
	}
	return "", errors.New("no recent trace exemplar found")
}

func verifyTraceInTempo(ctx context.Context, opts options, traceID string) error {
	body, err := grafanaGET(ctx, opts, "/api/datasources/proxy/uid/tempo/api/traces/"+traceID)
	if err != nil {
		return fmt.Errorf("fetch trace %s: %w", traceID, err)
	}
	if len(body) == 0 {
		return fmt.Errorf("tempo returned empty trace %s", traceID)
	}
	return nil
}

package cli // import "github.com/jemtv/storyfeed/internal/cli"

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/jemtv/storyfeed/internal/config"
)

var healthCmd = cobra.Command{
	Use:   "healthcheck auto|endpoint",
	Short: `Perform a health check on the archive endpoint`,

	Long: `Perform a health check on the given endpoint.

The value "auto" probes the configured archive URL with a single story
page.
`,

	Example: `
$ storyfeed healthcheck auto
`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return doHealthCheck(args[0])
	},
}

func doHealthCheck(endpoint string) error {
	if endpoint == "auto" {
		u, err := url.Parse(config.Opts.ArchiveURL())
		if err != nil {
			return fmt.Errorf("cli: invalid archive URL: %w", err)
		}
		q := u.Query()
		q.Set("page", "1")
		q.Set("results_per_page", "1")
		q.Set("language", config.Opts.ArchiveLanguage())
		u.RawQuery = q.Encode()
		endpoint = u.String()
	}

	slog.Debug("Executing health check request",
		slog.String("endpoint", endpoint))

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(endpoint)
	if err != nil {
		return fmt.Errorf(`health check failure: %w`, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf(`health check failed with status code %d`,
			resp.StatusCode)
	}
	slog.Debug(`Health check is passing`)
	return nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"incident-training-service/internal/app"
	"incident-training-service/internal/config"
	"incident-training-service/internal/infra/postgres"
)

// NewReportCmd prints graded outcomes, or one user's detail, from Postgres.
func NewReportCmd(configPath *string) *cobra.Command {
	var (
		userID string
		format string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print incident outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			db := postgres.OpenDB(cfg.Postgres.URL)
			defer db.Close()

			store := postgres.NewStore(db)
			reports := app.NewReportService(store, store, store)

			var result any
			if userID != "" {
				result, err = reports.UserDetail(cmd.Context(), userID)
			} else {
				result, err = reports.Results(cmd.Context())
			}
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), format, result)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "report a single user's completed and pending incidents")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	return cmd
}

// writeReport renders v as indented JSON or as YAML with the same field names.
func writeReport(w io.Writer, format string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case "json", "":
		_, err = fmt.Fprintln(w, string(raw))
		return err
	case "yaml", "yml":
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/ropable/spacetraders-api/internal/infrastructure/config"
)

// Output formats
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// parseOutputFormat validates a --output value
func parseOutputFormat(value string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(value)); f {
	case outputTable, outputJSON, outputYAML:
		return f, nil
	case "":
		return outputTable, nil
	default:
		return "", fmt.Errorf("unsupported output format %q: use table, json or yaml", value)
	}
}

// resolveOutputFormat picks the --output flag, then the user default, then table
func resolveOutputFormat() (string, error) {
	if outputFormat != "" {
		return parseOutputFormat(outputFormat)
	}
	if handler, err := config.NewUserConfigHandler(); err == nil {
		if userCfg, err := handler.Load(); err == nil && userCfg.Output != "" {
			return parseOutputFormat(userCfg.Output)
		}
	}
	return outputTable, nil
}

// render writes v as JSON or YAML, or hands a tab writer to table
func render(w io.Writer, format string, v interface{}, table func(tw *tabwriter.Writer)) error {
	switch format {
	case outputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	}
}

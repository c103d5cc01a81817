package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fginsight/fginsight/internal/openapi"
)

func newOpenAPICmd() *cobra.Command {
	var (
		outputFile string
		format     string
		baseURL    string
	)

	cmd := &cobra.Command{
		Use:   "openapi <archive.fgcp>",
		Short: "Generate an OpenAPI specification",
		Long: `Generate an OpenAPI 3.1 specification for the HTTP surface the host
platform exposes once the project is published: the OData feed of every
table and the execution endpoint of every server command.`,
		Example: `  fginsight openapi crm.fgcp
  fginsight openapi crm.fgcp -o crm-api.json
  fginsight openapi crm.fgcp --format yaml --base-url https://apps.example.com/crm`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpenAPISpec(args[0], outputFile, format, baseURL)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write spec to file instead of stdout")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:8080", "Server URL recorded in the spec")

	return cmd
}

func runOpenAPISpec(path, outputFile, format, baseURL string) error {
	result, err := analyzeArchive(path)
	if err != nil {
		return err
	}

	doc := openapi.GenerateProjectSpec(result.Project, baseURL)

	var data []byte
	switch format {
	case "json":
		data, err = json.MarshalIndent(doc, "", "  ")
	case "yaml":
		data, err = marshalYAML(doc)
	default:
		return fmt.Errorf("unsupported format %q; use json or yaml", format)
	}
	if err != nil {
		return fmt.Errorf("encode spec: %w", err)
	}

	return writeOutput(outputFile, data)
}

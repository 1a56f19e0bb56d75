package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/ppiankov/appscope/internal/model"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := reportSchema()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(os.Stdout, string(data))
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

// reportSchema reflects the JSON Schema of model.Report
func reportSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&model.Report{})
	schema.Title = "AppScope report"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

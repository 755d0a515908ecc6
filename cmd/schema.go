package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/kplay-cli/kplay/recent"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().BoolP("recent", "r", false, "Generate the JSON Schema of `kplay recent --json`")
	schemaCmd.SetOut(os.Stdout)
}

// schemaCmd prints JSON schemas for the structured outputs of other commands.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON schemas for the --json outputs",
	Long:  "Generate the JSON Schema of `kplay resolve --json`, or of `kplay recent --json` with --recent",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(outputSchema(lo.Must(cmd.Flags().GetBool("recent")))))
	},
}

func outputSchema(recentEntries bool) *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.Namer = func(t reflect.Type) string {
		if t.Name() == "" {
			return ""
		}
		return filepath.Base(t.PkgPath()) + "." + t.Name()
	}

	if recentEntries {
		return reflector.Reflect([]*recent.Entry{})
	}
	return reflector.Reflect(&resolution{})
}

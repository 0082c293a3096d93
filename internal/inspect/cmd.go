package inspect

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/compose-network/rollup-configurator/configs"
	"github.com/compose-network/rollup-configurator/internal/filesystem"
	"github.com/compose-network/rollup-configurator/internal/output"
	"github.com/spf13/cobra"
)

var CMD = &cobra.Command{
	Use:   "inspect",
	Short: "Upload deployment artifacts to the inspection service",
}

func init() {
	for _, kind := range Kinds() {
		CMD.AddCommand(newKindCmd(kind))
	}
}

func newKindCmd(kind Kind) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s <artifact.zip>", kind),
		Short: fmt.Sprintf("Inspect a %s artifact archive", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.Values.Services.Validate(); err != nil {
				return err
			}
			format, err := output.ParseFormat(configs.Values.Output.Format)
			if err != nil {
				return err
			}

			path := args[0]
			data, err := filesystem.NewReader().ReadFile(path)
			if err != nil {
				return err
			}

			client := NewClient(configs.Values.Services.InspectURL, WithTimeout(configs.Values.Services.Timeout))
			result, err := client.Inspect(cmd.Context(), kind, filepath.Base(path), data)
			if err != nil {
				return err
			}

			return Print(cmd.OutOrStdout(), format, result)
		},
	}
}

// Print renders a result, one table per section in table format.
func Print(w io.Writer, format output.Format, r *Result) error {
	if format != output.FormatTable {
		return output.Render(w, format, r)
	}

	for _, s := range r.Sections() {
		t := output.Table{Header: []string{s.Title, "Value"}}
		for _, e := range s.Entries {
			t.Rows = append(t.Rows, []string{e.Key, fmt.Sprint(e.Value)})
		}
		output.RenderTable(w, t)
	}
	return nil
}

package catalog

import (
	"fmt"
	"strconv"

	"github.com/compose-network/rollup-configurator/configs"
	"github.com/compose-network/rollup-configurator/internal/flags"
	"github.com/compose-network/rollup-configurator/internal/output"
	"github.com/spf13/cobra"
)

var CMD = &cobra.Command{
	Use:   "catalog",
	Short: "Print the rollup parameter catalog",
	Long:  "Prints every configurable rollup parameter grouped by section. Basic mode hides advanced parameters.",
	RunE: func(cmd *cobra.Command, args []string) error {
		modeFlag, err := cmd.Flags().GetString("mode")
		if err != nil {
			return err
		}
		mode, err := ParseMode(modeFlag)
		if err != nil {
			return err
		}
		format, err := output.ParseFormat(configs.Values.Output.Format)
		if err != nil {
			return err
		}

		c, err := Embedded()
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}

		sections := c.Visible(mode)
		if format == output.FormatTable {
			output.RenderTable(cmd.OutOrStdout(), table(sections))
			return nil
		}
		return output.Render(cmd.OutOrStdout(), format, sections)
	},
}

func init() {
	flags.MustDeclare(CMD.Flags(), []flags.Def[string]{
		{Name: "mode", DefaultValue: string(ModeAdvanced), Description: "Visibility mode (basic or advanced)"},
	})
}

func table(sections []Section) output.Table {
	t := output.Table{Header: []string{"Section", "ID", "Kind", "Default", "Advanced"}}
	for _, s := range sections {
		for _, p := range s.Parameters {
			def := ""
			if p.SystemDefault != nil {
				def = fmt.Sprint(p.SystemDefault)
			}
			t.Rows = append(t.Rows, []string{s.ID, p.ID, string(p.Kind), def, strconv.FormatBool(p.Advanced)})
		}
	}
	return t
}

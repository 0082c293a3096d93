package l1

import (
	"fmt"
	"strconv"

	"github.com/compose-network/rollup-configurator/configs"
	"github.com/compose-network/rollup-configurator/internal/output"
	"github.com/spf13/cobra"
)

var CMD = &cobra.Command{
	Use:   "l1",
	Short: "List the supported L1 chains",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(configs.Values.Output.Format)
		if err != nil {
			return err
		}

		settings, err := supportedSettings(NewResolver())
		if err != nil {
			return err
		}

		if format == output.FormatTable {
			t := output.Table{Header: []string{"Chain ID", "Gas token", "Block time (s)", "Clique"}}
			for _, s := range settings {
				t.Rows = append(t.Rows, []string{
					strconv.FormatUint(s.ChainID, 10),
					s.GasToken,
					strconv.FormatUint(s.BlockTimeSeconds, 10),
					strconv.FormatBool(s.UseClique),
				})
			}
			output.RenderTable(cmd.OutOrStdout(), t)
			return nil
		}
		return output.Render(cmd.OutOrStdout(), format, settings)
	},
}

func supportedSettings(r *Resolver) ([]Settings, error) {
	chains := r.Supported()
	settings := make([]Settings, 0, len(chains))
	for _, c := range chains {
		s, err := r.Resolve(c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve supported chain %d: %w", c.ID, err)
		}
		settings = append(settings, s)
	}
	return settings, nil
}

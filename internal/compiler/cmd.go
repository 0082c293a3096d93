package compiler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/compose-network/rollup-configurator/configs"
	"github.com/compose-network/rollup-configurator/internal/bundle"
	"github.com/compose-network/rollup-configurator/internal/catalog"
	"github.com/compose-network/rollup-configurator/internal/deployconfig"
	"github.com/compose-network/rollup-configurator/internal/filesystem"
	"github.com/compose-network/rollup-configurator/internal/flags"
	"github.com/compose-network/rollup-configurator/internal/input"
	"github.com/compose-network/rollup-configurator/internal/output"
	"github.com/compose-network/rollup-configurator/internal/schema"
	"github.com/spf13/cobra"
)

var CMD = &cobra.Command{
	Use:   "compile <config-file|->",
	Short: "Validate a rollup configuration and compile it into a bundle",
	Long: "Reads a YAML or JSON record of parameter values, fills system defaults, validates every field " +
		"and prints the compiled bundle. Use - to read from stdin.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(configs.Values.Output.Format)
		if err != nil {
			return err
		}

		b, err := CompileFile(filesystem.NewReader(), args[0], configs.Values.L1.ChainID, cmd.Flags().Changed("l1-chain-id"))
		if err != nil {
			PrintErrors(cmd.ErrOrStderr(), err)
			return err
		}

		writer := filesystem.NewWriter()
		if path, _ := cmd.Flags().GetString("deploy-config"); path != "" {
			doc, err := deployconfig.Render(b, catalog.Default())
			if err != nil {
				return fmt.Errorf("failed to render deploy config: %w", err)
			}
			if err := writer.WriteJSON(path, doc); err != nil {
				return err
			}
			slog.With("path", path).Info("deploy config written")
		}
		if path, _ := cmd.Flags().GetString("out"); path != "" {
			if err := writer.WriteJSON(path, b); err != nil {
				return err
			}
			slog.With("path", path).Info("bundle written")
			return nil
		}

		if format == output.FormatTable {
			output.RenderTable(cmd.OutOrStdout(), BundleTable(b))
			return nil
		}
		return output.Render(cmd.OutOrStdout(), format, b)
	},
}

func init() {
	flags.MustDeclare(CMD.Flags(), []flags.Def[string]{
		{Name: "out", Description: "Write the bundle as JSON to this path instead of stdout"},
		{Name: "deploy-config", Description: "Also write the OP Stack deploy-config JSON to this path"},
	})
}

// CompileFile reads a record from path ("-" for stdin) and compiles it against
// chainID. An l1_chain_id in the record wins unless override is set.
func CompileFile(r filesystem.Reader, path string, chainID uint64, override bool) (*bundle.Bundle, error) {
	data, err := r.ReadFile(path)
	if err != nil {
		return nil, err
	}

	record, err := input.Decode(data, input.FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	embedded, found, err := input.SplitChainID(record)
	if err != nil {
		return nil, err
	}
	if found && !override {
		chainID = embedded
	}

	c := NewDefault()
	b, err := c.Compile(record, chainID)
	if err != nil {
		return nil, err
	}

	c.logger.With("path", path, "l1_chain_id", chainID, "fields", len(b.FieldIDs())).Info("configuration compiled")
	return b, nil
}

// PrintErrors writes a table of every invalid field when err carries them.
func PrintErrors(w io.Writer, err error) {
	var errs *schema.Errors
	if !errors.As(err, &errs) {
		return
	}
	output.RenderTable(w, ErrorTable(errs))
}

func ErrorTable(errs *schema.Errors) output.Table {
	t := output.Table{Header: []string{"Field", "Reason", "Message"}}
	for _, id := range errs.IDs() {
		if ce, ok := errs.Configuration[id]; ok {
			t.Rows = append(t.Rows, []string{id, "no_default", ce.Error()})
			continue
		}
		fe := errs.Fields[id]
		t.Rows = append(t.Rows, []string{id, string(fe.Reason), fe.Message})
	}
	return t
}

func BundleTable(b *bundle.Bundle) output.Table {
	t := output.Table{Header: []string{"Key", "Value"}}
	t.Rows = append(t.Rows,
		[]string{bundle.KeyL1ChainID, fmt.Sprint(b.L1ChainID())},
		[]string{bundle.KeyL1BlockTime, fmt.Sprint(b.L1BlockTime())},
		[]string{bundle.KeyL1UseClique, fmt.Sprint(b.L1UseClique())},
	)
	for _, id := range b.FieldIDs() {
		v, _ := b.Get(id)
		t.Rows = append(t.Rows, []string{id, v.String()})
	}
	return t
}

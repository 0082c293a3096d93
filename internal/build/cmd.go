package build

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/compose-network/rollup-configurator/configs"
	"github.com/compose-network/rollup-configurator/internal/compiler"
	"github.com/compose-network/rollup-configurator/internal/filesystem"
	"github.com/compose-network/rollup-configurator/internal/flags"
	"github.com/spf13/cobra"
)

var CMD = &cobra.Command{
	Use:   "build <config-file|->",
	Short: "Compile a rollup configuration and request its build artifact",
	Long: "Compiles the configuration like the compile command, submits the bundle to the build service " +
		"and writes the returned archive to disk.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configs.Values.Services.Validate(); err != nil {
			return err
		}

		b, err := compiler.CompileFile(filesystem.NewReader(), args[0], configs.Values.L1.ChainID, cmd.Flags().Changed("l1-chain-id"))
		if err != nil {
			compiler.PrintErrors(cmd.ErrOrStderr(), err)
			return err
		}

		requestor := NewRequestor(configs.Values.Services.BuildURL, WithTimeout(configs.Values.Services.Timeout))
		payload, err := requestor.Submit(cmd.Context(), b)
		if err != nil {
			return err
		}

		outDir, _ := cmd.Flags().GetString("out-dir")
		path, err := Save(filesystem.NewWriter(), outDir, payload)
		if err != nil {
			return err
		}

		slog.With("path", path, "bytes", len(payload.Data), "request_id", payload.RequestID).Info("build artifact written")
		fmt.Fprintln(cmd.OutOrStdout(), path)

		return nil
	},
}

func init() {
	flags.MustDeclare(CMD.Flags(), []flags.Def[string]{
		{Name: "out-dir", DefaultValue: ".", Description: "Directory to write the build artifact into"},
	})
}

// Save writes the payload under dir using the name the build service chose.
func Save(w filesystem.Writer, dir string, p *Payload) (string, error) {
	name := p.FileName
	if name == "" {
		name = DefaultFileName
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := w.WriteBytes(path, p.Data); err != nil {
		return "", fmt.Errorf("failed to save build artifact: %w", err)
	}
	return path, nil
}

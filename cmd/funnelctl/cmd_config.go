package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"ad-funnel-gate/funnel"

	"github.com/spf13/cobra"
)

var errInvalidImport = errors.New("not a valid funnel configuration, nothing changed")

var exportPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Export, import or reset the funnel configuration",
}

var configExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the configuration as JSON",
	Long: `Writes the stored configuration, analytics included, as indented JSON.

Example:
  funnelctl config export -o backup.json`,
	Args: cobra.NoArgs,
	RunE: runConfigExport,
}

var configImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the configuration with a JSON file (- for stdin)",
	Long: `Validates the file before saving. An invalid file leaves the stored
configuration untouched and exits non-zero.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigImport,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default pages, ads and analytics",
	Args:  cobra.NoArgs,
	RunE:  runConfigReset,
}

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Funnel analytics",
}

var analyticsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Zero visit, click and download counters, keeping pages and settings",
	Args:  cobra.NoArgs,
	RunE:  runAnalyticsReset,
}

func init() {
	configExportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "Write to file instead of stdout")
}

func runConfigExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	cfg, rdb, err := connect(ctx)
	if err != nil {
		return err
	}
	defer rdb.Close()

	text, err := funnel.NewStore(rdb, cfg.Funnel.UpdateRetries).Export(ctx)
	if err != nil {
		return err
	}
	if exportPath == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(exportPath, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", exportPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported configuration to %s\n", exportPath)
	return nil
}

func runConfigImport(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	cfg, rdb, err := connect(ctx)
	if err != nil {
		return err
	}
	defer rdb.Close()

	if !funnel.NewStore(rdb, cfg.Funnel.UpdateRetries).Import(ctx, string(data)) {
		return errInvalidImport
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration imported")
	return nil
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	cfg, rdb, err := connect(ctx)
	if err != nil {
		return err
	}
	defer rdb.Close()

	if err := funnel.NewStore(rdb, cfg.Funnel.UpdateRetries).Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults")
	return nil
}

func runAnalyticsReset(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	cfg, rdb, err := connect(ctx)
	if err != nil {
		return err
	}
	defer rdb.Close()

	if err := funnel.NewStore(rdb, cfg.Funnel.UpdateRetries).ResetAnalytics(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Analytics reset")
	return nil
}

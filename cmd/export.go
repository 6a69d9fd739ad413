package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/teemow/contactkeeper/internal/server"
	"github.com/teemow/contactkeeper/internal/toolstore"
	"github.com/teemow/contactkeeper/internal/transfer"
)

func newExportCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all contacts to a local file or stdout",
		Long: `Export the full contact set as CSV or vCard without going through
host storage. Useful for local backups and for inspecting what the
export_contacts tools would produce.

Requires the same TOOLSTORE_* environment variables as serve.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), format, output)
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv or vcf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (defaults to stdout)")

	return cmd
}

func runExport(ctx context.Context, formatName, output string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(false)

	format, err := transfer.ParseFormat(formatName)
	if err != nil {
		return err
	}

	cfg, err := toolstore.ConfigFromEnv()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("incomplete host configuration: %w", err)
	}

	serverContext, err := server.NewServerContext(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = serverContext.Shutdown() }()

	client, err := serverContext.ContactsClient(ctx)
	if err != nil {
		return err
	}
	records, err := client.ListAll(ctx)
	if err != nil {
		return err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ResourceName < records[j].ResourceName
	})

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case transfer.FormatVCF:
		err = transfer.EncodeVCF(out, records)
	default:
		err = transfer.EncodeCSV(out, records)
	}
	if err != nil {
		return err
	}

	if output != "" {
		fmt.Fprintf(os.Stderr, "exported %d contacts to %s\n", len(records), output)
	}
	return nil
}

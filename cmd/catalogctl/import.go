package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/csvimport"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/repository"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/service"

	"github.com/spf13/cobra"
)

type importOptions struct {
	withBarcodes    string
	withoutBarcodes string
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import one or both POS product reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.withBarcodes, "with-barcodes", "", "CSV report that includes the barcode column")
	cmd.Flags().StringVar(&opts.withoutBarcodes, "without-barcodes", "", "CSV report without barcodes (fill pass)")
	return cmd
}

func runImport(cmd *cobra.Command, opts importOptions) error {
	if strings.TrimSpace(opts.withBarcodes) == "" && strings.TrimSpace(opts.withoutBarcodes) == "" {
		return errors.New("pass --with-barcodes and/or --without-barcodes")
	}

	withRecs, err := parseReport(opts.withBarcodes, true)
	if err != nil {
		return fmt.Errorf("--with-barcodes: %w", err)
	}
	withoutRecs, err := parseReport(opts.withoutBarcodes, false)
	if err != nil {
		return fmt.Errorf("--without-barcodes: %w", err)
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	svc := service.NewCatalogImportService(repository.NewProductRepository(db), nil)

	res, err := svc.Import(cmd.Context(), withRecs, withoutRecs)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), res)
}

func parseReport(path string, hasBarcodes bool) ([]dto.CatalogRecord, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csvimport.ParseCatalog(f, hasBarcodes)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

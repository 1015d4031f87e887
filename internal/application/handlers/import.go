package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/compliance-core/internal/domain/services"
	"github.com/ersonp/compliance-core/internal/infrastructure/parsers"
)

// ImportHandler handles importing records from files.
type ImportHandler struct {
	service *services.ImportService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service *services.ImportService) *ImportHandler {
	return &ImportHandler{
		service: service,
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format string // "json", "csv", or "auto"
	Kind   string // Record kind, required for CSV
	DryRun bool   // Validate without saving
}

// Handle imports records from a file.
func (h *ImportHandler) Handle(ctx context.Context, filePath string, opts ImportOptions) (*services.ImportResult, error) {
	var parser parsers.Parser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filePath, opts.Kind)
	} else {
		parser = parsers.ForFormat(opts.Format, opts.Kind)
	}

	if parser == nil {
		if opts.Kind == "" {
			return nil, fmt.Errorf("unsupported format for file: %s (CSV files need --kind)", filePath)
		}
		return nil, fmt.Errorf("unsupported format or kind for file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	bundle, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	if bundle.Len() == 0 {
		return &services.ImportResult{}, nil
	}

	return h.service.Import(ctx, bundle, services.ImportOptions{DryRun: opts.DryRun})
}

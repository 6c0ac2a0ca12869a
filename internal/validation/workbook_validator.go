// Package validation checks loader inputs before any parsing or store
// access happens, so failures surface early with precise errors.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "energymix/internal/errors"
)

// workbookExtensions are the spreadsheet formats excelize can open.
var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// WorkbookValidator validates the ingest input file.
type WorkbookValidator struct {
	logger *slog.Logger
}

// NewWorkbookValidator creates a workbook validator.
func NewWorkbookValidator(logger *slog.Logger) *WorkbookValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookValidator{logger: logger.With(slog.String("component", "validation"))}
}

// ValidateInputFile checks that path names a readable, non-empty Excel
// workbook. A missing file carries ErrSourceFileNotFound so the loader
// can exit 1 before the store is ever opened.
func (v *WorkbookValidator) ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("input workbook does not exist", slog.String("path", path))
		return apperrors.NewParsingError(
			fmt.Sprintf("input workbook %q", path), apperrors.ErrSourceFileNotFound)
	}
	if err != nil {
		return apperrors.NewParsingError(
			fmt.Sprintf("stat input workbook %q", path), err)
	}

	if info.IsDir() {
		return apperrors.NewAppValidationError(
			fmt.Sprintf("input path %q is a directory, not a workbook", path))
	}

	if ext := strings.ToLower(filepath.Ext(path)); !workbookExtensions[ext] {
		return apperrors.NewAppValidationError(
			fmt.Sprintf("input file %q is not an Excel workbook (extension %q)", path, ext))
	}

	if info.Size() == 0 {
		return apperrors.NewAppValidationError(
			fmt.Sprintf("input workbook %q is empty", path))
	}

	v.logger.Debug("input workbook validated",
		slog.String("path", path),
		slog.Int64("size_bytes", info.Size()))

	return nil
}

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yildizm/DataSum/internal/analyzer"
	"github.com/yildizm/DataSum/internal/formatter"
)

// renderReport formats an analysis with the named formatter
func renderReport(a *app, analysis *analyzer.Analysis, format string) ([]byte, error) {
	delim, err := a.delimiter()
	if err != nil {
		return nil, err
	}
	f, err := formatter.New(format, formatter.Options{
		Color:       colorEnabled(),
		Delimiter:   delim,
		PreviewRows: a.cfg.Server.PreviewRows,
	})
	if err != nil {
		return nil, err
	}
	return f.Format(analysis)
}

// handleOutputDestination writes output to a file, or to w when path is
// empty or "-"
func handleOutputDestination(w io.Writer, output []byte, path string) error {
	if path == "" || path == "-" {
		_, err := w.Write(output)
		return err
	}

	if err := validateOutputFilePath(path); err != nil {
		return fmt.Errorf("invalid output file path: %w", err)
	}
	if err := writeOutputBytesToFile(output, path); err != nil {
		return fmt.Errorf("failed to write output to file: %w", err)
	}
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Output saved to: %s\n", path)
	}
	return nil
}

func validateOutputFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}
	info, err := os.Stat(filepath.Clean(path))
	if err == nil && info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	return nil
}

// writeOutputBytesToFile writes output to a file with proper error handling
func writeOutputBytesToFile(output []byte, filePath string) error {
	return writeFile(filePath, func(w io.Writer) error {
		_, err := w.Write(output)
		return err
	})
}

// writeFile creates path and streams into it, creating parent directories
func writeFile(path string, write func(io.Writer) error) error {
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// #nosec G304 - output path chosen by the user
	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if err := write(file); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	// Sync to ensure data is written
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}
	return nil
}

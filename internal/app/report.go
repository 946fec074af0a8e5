package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteReports writes the JSON report to OutputPath and, when set, the PDF
// audit to OutputPDFPath. An empty OutputPath writes nothing.
func (a *App) WriteReports(res FillResult) error {
	if p := strings.TrimSpace(a.cfg.OutputPath); p != "" {
		if err := writeJSONReport(res, p); err != nil {
			return err
		}
	}
	if p := strings.TrimSpace(a.cfg.OutputPDFPath); p != "" {
		if err := ensureDir(p); err != nil {
			return err
		}
		if err := writeReportPDF(res, p); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
	}
	return nil
}

type jsonReport struct {
	FillResult
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSONReport(res FillResult, path string) error {
	rep := jsonReport{FillResult: res, Message: res.Message()}
	rep.Success = res.NotATSFriendly == nil && (res.DryRun || res.Submitted())
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

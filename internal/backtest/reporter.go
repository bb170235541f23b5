package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/matchup-engine/internal/models"
)

// GenerateConsoleReport formats an optimization result for terminal output
func GenerateConsoleReport(result Result) string {
	var builder strings.Builder
	builder.WriteString("Coefficient Optimization Report\n")
	builder.WriteString("===============================\n")
	builder.WriteString(fmt.Sprintf("Run: %s (%s)\n", result.RunID, result.Sport))
	builder.WriteString(fmt.Sprintf("Games: %d evaluated, %d skipped\n", result.Best.Games, result.Best.Skipped))
	builder.WriteString(fmt.Sprintf("Grid Points: %d\n", result.Evaluated))
	builder.WriteString(fmt.Sprintf("Baseline MAE: %.3f\n", result.Baseline.MAE))
	builder.WriteString(fmt.Sprintf("Best MAE: %.3f\n", result.Best.MAE))
	builder.WriteString(fmt.Sprintf("Margin MAE: %.3f\n", result.Best.MarginMAE))
	builder.WriteString(fmt.Sprintf("Winner Accuracy: %.2f%%\n", result.Best.WinnerAccuracy*100))
	if !result.Improved {
		builder.WriteString("Defaults retained\n")
	}
	c := result.Coefficients
	builder.WriteString(fmt.Sprintf("Version: %s\n", c.Version))
	builder.WriteString(fmt.Sprintf("Recent Form Weight: %.2f (season %.2f)\n", c.RecentFormWeight, c.SeasonAvgWeight))
	builder.WriteString(fmt.Sprintf("SOS Adjustment Factor: %.2f\n", c.SOSAdjustmentFactor))
	builder.WriteString(fmt.Sprintf("Defensive Adjustment Base: %.2f\n", c.DefensiveAdjustmentBase))
	return builder.String()
}

// GenerateComparisonReport formats a coefficient comparison
func GenerateComparisonReport(cmp Comparison) string {
	var builder strings.Builder
	builder.WriteString("Coefficient Comparison\n")
	builder.WriteString("======================\n")
	builder.WriteString(fmt.Sprintf("%-24s %12s %12s\n", "", cmp.VersionA, cmp.VersionB))
	builder.WriteString(fmt.Sprintf("%-24s %12d %12d\n", "Games", cmp.A.Games, cmp.B.Games))
	builder.WriteString(fmt.Sprintf("%-24s %12.3f %12.3f\n", "MAE", cmp.A.MAE, cmp.B.MAE))
	builder.WriteString(fmt.Sprintf("%-24s %12.3f %12.3f\n", "Margin MAE", cmp.A.MarginMAE, cmp.B.MarginMAE))
	builder.WriteString(fmt.Sprintf("%-24s %11.2f%% %11.2f%%\n", "Winner Accuracy", cmp.A.WinnerAccuracy*100, cmp.B.WinnerAccuracy*100))
	builder.WriteString(fmt.Sprintf("MAE Delta: %+.3f\n", cmp.MAEDelta))
	builder.WriteString(fmt.Sprintf("Winner Accuracy Delta: %+.2f%%\n", cmp.WinnerAccuracyDelta*100))
	return builder.String()
}

// ExportCoefficients writes the winning coefficients as JSON so they can be
// loaded into the engine config.
func ExportCoefficients(result Result, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// LoadCoefficients reads coefficients from a file written by
// ExportCoefficients or from a bare coefficients document.
func LoadCoefficients(path string) (models.CalibrationCoefficients, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.CalibrationCoefficients{}, fmt.Errorf("read coefficients: %w", err)
	}
	var doc struct {
		Coefficients *models.CalibrationCoefficients `json:"coefficients"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.CalibrationCoefficients{}, fmt.Errorf("parse coefficients: %w", err)
	}
	if doc.Coefficients != nil {
		return *doc.Coefficients, nil
	}
	var coeffs models.CalibrationCoefficients
	if err := json.Unmarshal(data, &coeffs); err != nil {
		return models.CalibrationCoefficients{}, fmt.Errorf("parse coefficients: %w", err)
	}
	if coeffs.IsZero() {
		return models.CalibrationCoefficients{}, fmt.Errorf("%s holds no coefficients", path)
	}
	return coeffs, nil
}

package main

import (
	"fmt"
	"log/slog"

	"github.com/recifesafe/floodrisk-etl/internal/model"
	"github.com/recifesafe/floodrisk-etl/internal/table"
)

// trainModels fits the baseline models on the freshly written table and
// prints their coefficients.
func trainModels(path string, logger *slog.Logger) error {
	days, err := table.Read(path)
	if err != nil {
		return fmt.Errorf("read table for training: %w", err)
	}

	linear, err := model.TrainLinear(days)
	if err != nil {
		return err
	}
	fmt.Printf("linear: occurrences = %.4f + %.4f*rain_z (r2=%.3f, n=%d)\n",
		linear.Intercept, linear.Slope, linear.R2, linear.Samples)

	logistic, err := model.TrainLogistic(days)
	if err != nil {
		// Fixture-sized runs can label every day the same way. The
		// linear fit alone is still useful, so report and continue.
		logger.Warn("logistic training skipped", "error", err)
		return nil
	}
	fmt.Printf("logistic: bias=%.4f rain=%.4f tide=%.4f vuln=%.4f (accuracy=%.3f, positive=%d/%d)\n",
		logistic.Bias, logistic.Weights[0], logistic.Weights[1], logistic.Weights[2],
		logistic.Accuracy, logistic.Positive, logistic.Samples)
	return nil
}

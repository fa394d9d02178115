// Package model trains two small baseline models over aggregated
// neighborhood days: an ordinary least squares regression predicting
// occurrence counts from standardized rainfall, and a logistic classifier
// flagging high-risk days. Both are closed-form or fixed-iteration, so a
// given input always yields the same coefficients.
package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/recifesafe/floodrisk-etl/internal/domain"
)

const (
	// Standardized features are clipped to this many deviations to keep
	// single extreme storms from dominating the fit.
	zClip = 3.0

	logisticIterations = 500
	logisticRate       = 0.1
)

// LinearModel is y = Intercept + Slope*x over standardized rainfall.
type LinearModel struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	RainMean  float64 `json:"rain_mean"`
	RainStd   float64 `json:"rain_std"`
	R2        float64 `json:"r2"`
	Samples   int     `json:"samples"`
}

// Predict returns the expected occurrence count for a raw rainfall value.
func (m LinearModel) Predict(rainfallMM float64) float64 {
	return m.Intercept + m.Slope*standardize(rainfallMM, m.RainMean, m.RainStd)
}

// TrainLinear fits occurrences against standardized rainfall by ordinary
// least squares. At least two rows with distinct rainfall are required.
func TrainLinear(days []domain.NeighborhoodDay) (LinearModel, error) {
	if len(days) < 2 {
		return LinearModel{}, fmt.Errorf("train linear: need at least 2 rows, got %d", len(days))
	}
	rain := make([]float64, len(days))
	for i := range days {
		rain[i] = days[i].RainfallMM
	}
	mean, std := meanStd(rain)
	if std == 0 {
		return LinearModel{}, fmt.Errorf("train linear: rainfall has zero variance")
	}

	var sumX, sumY, sumXY, sumXX float64
	n := float64(len(days))
	xs := make([]float64, len(days))
	for i := range days {
		x := standardize(days[i].RainfallMM, mean, std)
		y := float64(days[i].Occurrences)
		xs[i] = x
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return LinearModel{}, fmt.Errorf("train linear: degenerate design matrix")
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	// Coefficient of determination over the training set.
	meanY := sumY / n
	var ssRes, ssTot float64
	for i := range days {
		y := float64(days[i].Occurrences)
		pred := intercept + slope*xs[i]
		ssRes += (y - pred) * (y - pred)
		ssTot += (y - meanY) * (y - meanY)
	}
	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	return LinearModel{
		Intercept: intercept,
		Slope:     slope,
		RainMean:  mean,
		RainStd:   std,
		R2:        r2,
		Samples:   len(days),
	}, nil
}

// LogisticModel scores the probability that a day is high risk from
// standardized rainfall and tide plus vulnerability.
type LogisticModel struct {
	Bias     float64    `json:"bias"`
	Weights  [3]float64 `json:"weights"`
	RainMean float64    `json:"rain_mean"`
	RainStd  float64    `json:"rain_std"`
	TideMean float64    `json:"tide_mean"`
	TideStd  float64    `json:"tide_std"`
	Accuracy float64    `json:"accuracy"`
	Positive int        `json:"positive"`
	Samples  int        `json:"samples"`
}

// Predict returns the high-risk probability for raw feature values.
func (m LogisticModel) Predict(rainfallMM, tideM, vulnerability float64) float64 {
	z := m.Bias +
		m.Weights[0]*standardize(rainfallMM, m.RainMean, m.RainStd) +
		m.Weights[1]*standardize(tideM, m.TideMean, m.TideStd) +
		m.Weights[2]*vulnerability
	return sigmoid(z)
}

// TrainLogistic fits the classifier by full-batch gradient descent with a
// fixed iteration count. A day is labeled high risk when it has at least
// two occurrences, or rainfall above the 90th percentile in a vulnerable
// neighborhood. Training fails if the labels are single-class.
func TrainLogistic(days []domain.NeighborhoodDay) (LogisticModel, error) {
	if len(days) < 2 {
		return LogisticModel{}, fmt.Errorf("train logistic: need at least 2 rows, got %d", len(days))
	}
	rain := make([]float64, len(days))
	tide := make([]float64, len(days))
	for i := range days {
		rain[i] = days[i].RainfallMM
		tide[i] = days[i].TideM
	}
	rainMean, rainStd := meanStd(rain)
	tideMean, tideStd := meanStd(tide)
	if rainStd == 0 || tideStd == 0 {
		return LogisticModel{}, fmt.Errorf("train logistic: zero-variance feature")
	}
	rainP90 := percentile(rain, 0.90)

	features := make([][3]float64, len(days))
	labels := make([]float64, len(days))
	positive := 0
	for i := range days {
		d := &days[i]
		features[i] = [3]float64{
			standardize(d.RainfallMM, rainMean, rainStd),
			standardize(d.TideM, tideMean, tideStd),
			d.Vulnerability,
		}
		if d.Occurrences >= 2 || (d.RainfallMM > rainP90 && d.Vulnerability > 0.6) {
			labels[i] = 1
			positive++
		}
	}
	if positive == 0 || positive == len(days) {
		return LogisticModel{}, fmt.Errorf("train logistic: labels are single-class (%d positive of %d)", positive, len(days))
	}

	var bias float64
	var weights [3]float64
	n := float64(len(days))
	for iter := 0; iter < logisticIterations; iter++ {
		var gradBias float64
		var grad [3]float64
		for i := range features {
			z := bias
			for j := 0; j < 3; j++ {
				z += weights[j] * features[i][j]
			}
			err := sigmoid(z) - labels[i]
			gradBias += err
			for j := 0; j < 3; j++ {
				grad[j] += err * features[i][j]
			}
		}
		bias -= logisticRate * gradBias / n
		for j := 0; j < 3; j++ {
			weights[j] -= logisticRate * grad[j] / n
		}
	}

	correct := 0
	for i := range features {
		z := bias
		for j := 0; j < 3; j++ {
			z += weights[j] * features[i][j]
		}
		pred := 0.0
		if sigmoid(z) >= 0.5 {
			pred = 1
		}
		if pred == labels[i] {
			correct++
		}
	}

	return LogisticModel{
		Bias:     bias,
		Weights:  weights,
		RainMean: rainMean,
		RainStd:  rainStd,
		TideMean: tideMean,
		TideStd:  tideStd,
		Accuracy: float64(correct) / n,
		Positive: positive,
		Samples:  len(days),
	}, nil
}

func standardize(v, mean, std float64) float64 {
	z := (v - mean) / std
	if z > zClip {
		return zClip
	}
	if z < -zClip {
		return -zClip
	}
	return z
}

func meanStd(values []float64) (mean, std float64) {
	n := float64(len(values))
	for _, v := range values {
		mean += v
	}
	mean /= n
	for _, v := range values {
		std += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(std / n)
}

// percentile interpolates linearly between order statistics.
func percentile(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

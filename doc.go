// Package gullibility estimates a linear classifier that predicts whether a
// social-media user is gullible from the communities they belong to.
//
// The pipeline assembles a design matrix from two labeled feature tables,
// averages SVD least-squares fits over repeated random train/test splits,
// and scores samples by min-max normalizing designᵀ·w and thresholding at 0.5.
//
// # Quick Start
//
//	cfg := config.Default()
//	cfg.Paths.Positive = "anti_sub.csv"
//	cfg.Paths.Negative = "pro_sub.csv"
//
//	p, err := gullibility.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	outcome, err := p.Run(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(outcome.Evaluation.FalsePositives, outcome.Evaluation.FalseNegatives)
//
// # Packages
//
//   - dataset: feature tables and design matrix assembly
//   - linear: pseudo-inverse least-squares solver
//   - resample: split sampling and the averaging trainer
//   - metrics: scoring, thresholding and error counts
//   - report: CSV, text, JSON, chart and metrics outputs
//
// The command line front end lives in cmd/gullibility.
package gullibility

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"rfq-workers/internal/scoring"
	scorevendorquotes "rfq-workers/internal/workers/procurement/score-vendor-quotes"
)

type options struct {
	input   string
	format  string
	weights map[string]string
	rates   map[string]string
	explain bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "score-rfq",
		Short: "Rank supplier quotes for an RFQ document",
		Long: `score-rfq reads an RFQ document containing "rfq" and "quotes" (and optionally
"vendorHistories" and "config") in the same shape as the score-vendor-quotes job
variables, and prints the ranked vendors.`,
		Example: `  score-rfq --input rfq.json
  score-rfq -i rfq.json --weights price=0.6,leadTime=0.1 --rates EUR=1.08 --format json`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "RFQ document to score (- for stdin)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "Output format: table or json")
	cmd.Flags().StringToStringVar(&opts.weights, "weights", nil, "Weight overrides, e.g. price=0.5,leadTime=0.3")
	cmd.Flags().StringToStringVar(&opts.rates, "rates", nil, "Currency rates, e.g. EUR=1.08,GBP=1.27")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Also print raw criteria before normalisation")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	if opts.format != "table" && opts.format != "json" {
		return fmt.Errorf("unsupported format %q (want table or json)", opts.format)
	}

	flagWeights, err := parseWeights(opts.weights)
	if err != nil {
		return err
	}
	flagRates, err := parseRates(opts.rates)
	if err != nil {
		return err
	}

	raw, err := readInput(cmd.InOrStdin(), opts.input)
	if err != nil {
		return err
	}
	input, err := scorevendorquotes.ParseInput(raw)
	if err != nil {
		return err
	}
	if input.RFQ == nil || input.Quotes == nil {
		return fmt.Errorf("%s must contain inline \"rfq\" and \"quotes\"", opts.input)
	}

	cfg := scoring.Config{CurrencyRates: map[string]float64{}}
	if input.Config != nil {
		cfg.Weights = input.Config.Weights
		for code, r := range input.Config.CurrencyRates {
			cfg.CurrencyRates[code] = r
		}
	}
	cfg.Weights = cfg.Weights.Merge(flagWeights)
	for code, r := range flagRates {
		cfg.CurrencyRates[code] = r
	}

	result, err := scoring.ComputeScores(input.RFQ, input.Quotes, input.VendorHistories, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printRanking(out, result)
	if opts.explain {
		rawScores, err := scoring.RawScores(input.RFQ, input.Quotes, input.VendorHistories, cfg)
		if err != nil {
			return err
		}
		printRawScores(out, rawScores)
	}
	return nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return data, nil
}

var weightKeys = []string{"price", "leadTime", "quality", "reliability"}

func parseWeights(flags map[string]string) (scoring.WeightOverrides, error) {
	var o scoring.WeightOverrides
	for key, val := range flags {
		w, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return o, fmt.Errorf("weight %s: %q is not a number", key, val)
		}
		if w < 0 {
			return o, fmt.Errorf("weight %s must not be negative", key)
		}
		switch key {
		case "price":
			o.Price = &w
		case "leadTime":
			o.LeadTime = &w
		case "quality":
			o.Quality = &w
		case "reliability":
			o.Reliability = &w
		default:
			return o, fmt.Errorf("unknown weight %q (want one of %s)", key, strings.Join(weightKeys, ", "))
		}
	}
	return o, nil
}

func parseRates(flags map[string]string) (map[string]float64, error) {
	rates := make(map[string]float64, len(flags))
	codes := make([]string, 0, len(flags))
	for code := range flags {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		r, err := strconv.ParseFloat(strings.TrimSpace(flags[code]), 64)
		if err != nil || r <= 0 {
			return nil, fmt.Errorf("rate %s must be a positive number", code)
		}
		rates[strings.ToUpper(strings.TrimSpace(code))] = r
	}
	return rates, nil
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"chargemodel/internal/analysis"
	"chargemodel/internal/config"
	"chargemodel/internal/dcf"
	"chargemodel/internal/model"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "value":
		cmdValue(os.Args[2:])
	case "sensitivity":
		cmdSensitivity(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli value --chargers 4 --capex 100000 --utilization 0.5 --rate 0.40 --out results/ledger.csv")
	fmt.Println("  cli sensitivity --chargers 4 --capex 100000 --utilizations 0.2,0.4,0.6 --rates 0.30,0.40,0.50")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - value prints NPV/IRR/LCOC and optionally writes the year-by-year ledger as CSV")
	fmt.Println("  - sensitivity ranks utilization x price scenarios by NPV")
	fmt.Println("  - --config points at a YAML config with deployment assumptions and IRR settings")
}

func inputFlags(fs *flag.FlagSet) *model.ProjectInputs {
	p := &model.ProjectInputs{}
	fs.IntVar(&p.ChargerCount, "chargers", 4, "Number of chargers [4..8]")
	fs.Float64Var(&p.CapExPerCharger, "capex", 100000, "CapEx per charger ($)")
	fs.Float64Var(&p.OpExRate, "opex-rate", 0.1, "Annual OpEx as a fraction of gross CapEx")
	fs.Float64Var(&p.PeakUtilization, "utilization", 0.5, "Peak utilization fraction (0,1]")
	fs.Float64Var(&p.ChargingRate, "rate", 0.40, "Charging price ($/kWh)")
	fs.Float64Var(&p.LCFSCreditValue, "lcfs", 0, "LCFS credit value ($/tonne)")
	fs.Float64Var(&p.StateRebate, "rebate", 0, "One-time state rebate ($)")
	fs.IntVar(&p.ProjectLifeYears, "years", 10, "Project life (years)")
	fs.Float64Var(&p.DiscountRate, "discount", 0.08, "Discount rate (fraction)")
	return p
}

func loadEngine(cfgPath string) *dcf.Engine {
	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	return dcf.New(cfg.Assumptions.ToModelAssumptions(), cfg.IRR.ToIRRParams())
}

func cmdValue(args []string) {
	fs := flag.NewFlagSet("value", flag.ExitOnError)
	p := inputFlags(fs)
	cfgPath := fs.String("config", "", "Path to YAML config")
	outPath := fs.String("out", "", "Optional output CSV path for the ledger")
	_ = fs.Parse(args)

	engine := loadEngine(*cfgPath)
	res, err := engine.Valuation(*p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "valuation: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("NPV:  $%.2f\n", res.NPV)
	if res.IRRStatus == dcf.IRRDetermined {
		fmt.Printf("IRR:  %.2f%%\n", res.IRR*100)
	} else {
		fmt.Println("IRR:  N/A (undetermined)")
	}
	if res.LCOCDefined {
		fmt.Printf("LCOC: $%.3f/kWh\n", res.LCOC)
	} else {
		fmt.Println("LCOC: undefined (no energy delivered)")
	}

	if *outPath != "" {
		if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "output dir: %v\n", err)
			os.Exit(1)
		}
		if err := dcf.WriteLedgerCSV(*outPath, res.Ledger); err != nil {
			fmt.Fprintf(os.Stderr, "write ledger: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(res.Ledger), *outPath)
	}
}

func cmdSensitivity(args []string) {
	fs := flag.NewFlagSet("sensitivity", flag.ExitOnError)
	p := inputFlags(fs)
	cfgPath := fs.String("config", "", "Path to YAML config")
	utilList := fs.String("utilizations", "0.2,0.4,0.6", "Comma-separated utilization fractions")
	rateList := fs.String("rates", "0.30,0.40,0.50", "Comma-separated charging prices ($/kWh)")
	limit := fs.Int("limit", 10, "Show top N scenarios")
	_ = fs.Parse(args)

	utils, err := parseFloats(*utilList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "utilizations: %v\n", err)
		os.Exit(1)
	}
	rates, err := parseFloats(*rateList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rates: %v\n", err)
		os.Exit(1)
	}

	engine := loadEngine(*cfgPath)
	cells, err := analysis.Grid(engine, *p, utils, rates)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sensitivity: %v\n", err)
		os.Exit(1)
	}

	ranked := analysis.Rank(cells)
	if *limit > 0 && *limit < len(ranked) {
		ranked = ranked[:*limit]
	}

	fmt.Printf("%-5s %-12s %-10s %-14s %-10s %-10s\n", "rank", "utilization", "rate", "npv", "irr", "lcoc")
	for i, cell := range ranked {
		irr := "N/A"
		if cell.IRRStatus == dcf.IRRDetermined {
			irr = fmt.Sprintf("%.2f%%", cell.IRR*100)
		}
		lcoc := "undef"
		if cell.LCOCDefined {
			lcoc = fmt.Sprintf("$%.3f", cell.LCOC)
		}
		fmt.Printf("%-5d %-12.2f %-10.2f $%-13.0f %-10s %-10s\n",
			i+1, cell.PeakUtilization, cell.ChargingRate, cell.NPV, irr, lcoc)
	}
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}

package dcf

import (
	"encoding/csv"
	"os"
	"strconv"
)

// WriteLedgerCSV writes the per-year valuation ledger to a CSV file.
func WriteLedgerCSV(path string, ledger []YearRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"year",
		"utilization_applied",
		"energy_kwh",
		"revenue",
		"lcfs_revenue",
		"opex",
		"net_cash_flow",
		"discount_factor",
		"present_value",
		"cum_present_value",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Year),
			fmtFloat(r.UtilizationApplied),
			fmtFloat(r.EnergyKWh),
			fmtFloat(r.Revenue),
			fmtFloat(r.LCFSRevenue),
			fmtFloat(r.OpEx),
			fmtFloat(r.NetCashFlow),
			fmtFloat(r.DiscountFactor),
			fmtFloat(r.PresentValue),
			fmtFloat(r.CumPresentValue),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

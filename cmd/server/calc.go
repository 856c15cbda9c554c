package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"hrpay/internal/domain/payroll"
	"hrpay/internal/platform/config"
)

type breakdownOutput struct {
	Rates           string `json:"rates"`
	GrossSalary     string `json:"grossSalary"`
	PAYE            string `json:"paye"`
	NSSF            string `json:"nssf"`
	NHIF            string `json:"nhif"`
	OtherDeductions string `json:"otherDeductions"`
	TotalDeductions string `json:"totalDeductions"`
	NetSalary       string `json:"netSalary"`
}

// calcCommand prints one statutory breakdown without starting the server.
func calcCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Computes PAYE, NSSF, NHIF and net pay for a gross salary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gross, _ := cmd.Flags().GetFloat64("gross")
			other, _ := cmd.Flags().GetFloat64("other")

			rates := payroll.DefaultRates()
			if cfg.Payroll.RatesFile != "" {
				loaded, err := payroll.LoadRates(cfg.Payroll.RatesFile)
				if err != nil {
					return err
				}
				rates = loaded
			}
			calc, err := payroll.NewCalculator(rates)
			if err != nil {
				return err
			}
			rec, err := payroll.NewGrossRecord("cli", gross, other)
			if err != nil {
				return err
			}
			b, err := calc.Compute(rec)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(breakdownOutput{
				Rates:           rates.Name,
				GrossSalary:     b.GrossSalary.StringFixed(2),
				PAYE:            b.PAYE.StringFixed(2),
				NSSF:            b.NSSF.StringFixed(2),
				NHIF:            b.NHIF.StringFixed(2),
				OtherDeductions: b.OtherDeductions.StringFixed(2),
				TotalDeductions: b.TotalDeductions().StringFixed(2),
				NetSalary:       b.NetSalary.StringFixed(2),
			})
		},
	}

	cmd.Flags().Float64("gross", 0, "Gross monthly salary")
	cmd.Flags().Float64("other", 0, "Other deductions")
	_ = cmd.MarkFlagRequired("gross")

	return cmd
}

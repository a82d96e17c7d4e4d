package config

type Config struct {
	// LuhnInvoiceNumbers requires invoice and purchase ids to be Luhn-valid numbers.
	LuhnInvoiceNumbers bool `yaml:"luhn_invoice_numbers"`
	// RecalcWorkers bounds parallel batch recalculation.
	RecalcWorkers int `yaml:"recalc_workers"`
}

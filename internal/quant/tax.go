package quant

// CalculateTax returns the exchange tax withheld when quantity units of an
// item sell at price each. Exempt items and sells below the taxable minimum
// pay nothing; everything else pays floor(price*rate) per unit, at least 1,
// capped per transaction.
func CalculateTax(cfg *TradingConfig, itemID int, price int64, quantity int) int64 {
	if quantity <= 0 || price <= 0 {
		return 0
	}
	if cfg.IsTaxExempt(itemID) {
		return 0
	}
	if price*int64(quantity) < cfg.MinTaxableValue {
		return 0
	}

	perUnit := int64(float64(price) * cfg.GETaxRate)
	tax := perUnit * int64(quantity)
	if tax < 1 {
		tax = 1
	}
	if tax > cfg.GETaxCap {
		tax = cfg.GETaxCap
	}
	return tax
}

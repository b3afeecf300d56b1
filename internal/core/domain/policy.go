package domain

import "strings"

// SalePolicy selects how a sale treats stock and unknown products at commit time.
type SalePolicy string

const (
	// SalePolicyLenient never rejects a sale for stock reasons: stock may go negative and
	// lines for products missing from the catalog leave stock untouched.
	SalePolicyLenient SalePolicy = "lenient"
	// SalePolicyStrict rejects unknown products and oversold lines.
	SalePolicyStrict SalePolicy = "strict"
)

// ParseSalePolicy maps a config value to a policy, defaulting to lenient.
func ParseSalePolicy(s string) SalePolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(SalePolicyStrict)) {
		return SalePolicyStrict
	}
	return SalePolicyLenient
}

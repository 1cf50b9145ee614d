package scoring

import "fmt"

// FormatMarketCap renders a market cap for display ($1.2T, $34.5B, $120M).
func FormatMarketCap(value float64) string {
	switch {
	case value <= 0:
		return "N/A"
	case value >= 1e12:
		return fmt.Sprintf("$%.1fT", value/1e12)
	case value >= 1e9:
		return fmt.Sprintf("$%.1fB", value/1e9)
	case value >= 1e6:
		return fmt.Sprintf("$%.1fM", value/1e6)
	default:
		return fmt.Sprintf("$%.0f", value)
	}
}

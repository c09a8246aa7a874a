package price

import (
	"coingecko-telegram-bot/lib/helpers"
	"github.com/shopspring/decimal"
	"math"
	"strconv"
)

// FormatSignificant renders x rounded to sig significant digits with comma
// thousands separators. It never fails: values it cannot handle come back in
// their plain string form.
func FormatSignificant(x float64, sig int) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = strconv.FormatFloat(x, 'g', -1, 64)
		}
	}()

	if x == 0 {
		return "0"
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	if math.Abs(x) < 1e-10 {
		return strconv.FormatFloat(x, 'f', 8, 64)
	}

	digits := sig - int(math.Floor(math.Log10(math.Abs(x)))) - 1
	rounded := decimal.NewFromFloat(x).Round(int32(digits)).InexactFloat64()
	if math.IsInf(rounded, 0) {
		return strconv.FormatFloat(x, 'g', -1, 64)
	}

	if math.Abs(rounded-math.Trunc(rounded)) < 1e-12 {
		return helpers.FormatGrouped(math.Trunc(rounded), 0)
	}
	return helpers.FormatGrouped(rounded, digits)
}

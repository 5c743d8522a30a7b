package core

// Summary holds the totals shown on the monthly report.
type Summary struct {
	Total    Money
	Fixed    Money
	Variable Money
}

// Summarize folds a month's report entries into totals. Every entry counts
// toward Total; entries typed Fixed count toward Fixed and everything else
// toward Variable. The classification is deliberately two-way: unknown
// expense types are treated as variable rather than rejected.
//
// The fold is pure and order-independent; sums are exact in integer cents.
func Summarize(entries []ReportEntry) Summary {
	var s Summary
	for _, e := range entries {
		s.Total.Cents += e.Amount.Cents
		if e.Type == Fixed {
			s.Fixed.Cents += e.Amount.Cents
		} else {
			s.Variable.Cents += e.Amount.Cents
		}
	}
	return s
}

package model

// MarketBand maps an EHR999 range [Lower, Upper) to a recommended action.
type MarketBand struct {
	Index            int
	Label            string
	HeaderLabel      string // state shown in the page header
	Lower            float64
	Upper            float64 // +Inf for the top band
	Color            string
	BadgeClass       string
	Multiplier       string // table form, e.g. "每涨10%卖5%"
	HeaderMultiplier string // short form shown in the page header
	Action           string
	Probability      string
}

// Level is a threshold reference line drawn on the chart.
type Level struct {
	Value float64
	Color string
	Title string
}

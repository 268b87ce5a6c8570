package strategy

import (
	"errors"
	"fmt"
	"math"

	"EHR999/internal/model"
)

// ErrInvalidValue is returned for negative or non-finite oscillator values.
var ErrInvalidValue = errors.New("invalid EHR999 value")

// Bands defines the 7-level EHR999 market state mapping, ordered by value.
var Bands = []model.MarketBand{
	{Index: 0, Label: "极度低估 (钻石坑)", HeaderLabel: "极度低估 (钻石坑)", Lower: 0, Upper: 0.73, Color: "#00c853", BadgeClass: "status-diamond",
		Multiplier: "2.0x ~ 3.0x", HeaderMultiplier: "2.0x ~ 3.0x", Action: "重仓抄底", Probability: "底部 10%"},
	{Index: 1, Label: "相对低估 (黄金坑)", HeaderLabel: "相对低估 (黄金坑)", Lower: 0.73, Upper: 1.20, Color: "#ffd600", BadgeClass: "status-gold",
		Multiplier: "1.5x", HeaderMultiplier: "1.5x", Action: "加大定投", Probability: "10% ~ 40%"},
	{Index: 2, Label: "合理估值 (定投区)", HeaderLabel: "合理估值 (定投区)", Lower: 1.20, Upper: 1.50, Color: "#2196f3", BadgeClass: "status-normal",
		Multiplier: "1.0x", HeaderMultiplier: "1.0x", Action: "标准定投", Probability: "40% ~ 55%"},
	{Index: 3, Label: "定投截止 / 持币待涨", HeaderLabel: "持币待涨", Lower: 1.50, Upper: 3.0, Color: "#9e9e9e", BadgeClass: "status-stop",
		Multiplier: "0x", HeaderMultiplier: "0x (停止)", Action: "停止定投，只拿不动", Probability: "前 45%"},
	{Index: 4, Label: "泡沫初现 (减仓区)", HeaderLabel: "泡沫初现 (减仓区)", Lower: 3.0, Upper: 4.5, Color: "#ff9800", BadgeClass: "status-reduce",
		Multiplier: "每涨10%卖5%", HeaderMultiplier: "减仓", Action: "小额止盈", Probability: "顶部 15%"},
	{Index: 5, Label: "极度泡沫 (清仓区)", HeaderLabel: "极度泡沫 (清仓区)", Lower: 4.5, Upper: 6.5, Color: "#ff5722", BadgeClass: "status-clear",
		Multiplier: "清仓 50%~80%", HeaderMultiplier: "清仓50-80%", Action: "大力止盈", Probability: "顶部 5%"},
	{Index: 6, Label: "疯狂顶部 (逃顶区)", HeaderLabel: "疯狂顶部 (逃顶区)", Lower: 6.5, Upper: math.Inf(1), Color: "#d50000", BadgeClass: "status-escape",
		Multiplier: "全部卖出", HeaderMultiplier: "全部卖出", Action: "清空离场", Probability: "顶部 1%"},
}

// Levels are the band boundaries drawn as reference lines on the chart.
var Levels = []model.Level{
	{Value: 0.73, Color: "#00c853", Title: "钻石坑/黄金坑"},
	{Value: 1.20, Color: "#ffd600", Title: "黄金坑/定投区"},
	{Value: 1.50, Color: "#2196f3", Title: "定投截止线"},
	{Value: 3.0, Color: "#ff9800", Title: "减仓区"},
	{Value: 4.5, Color: "#ff5722", Title: "清仓区"},
	{Value: 6.5, Color: "#d50000", Title: "逃顶区"},
}

// BandIndex maps an EHR999 value to the index of its band in Bands.
func BandIndex(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidValue, v)
	}
	switch {
	case v < 0.73:
		return 0, nil
	case v < 1.20:
		return 1, nil
	case v < 1.50:
		return 2, nil
	case v < 3.0:
		return 3, nil
	case v < 4.5:
		return 4, nil
	case v < 6.5:
		return 5, nil
	default:
		return 6, nil
	}
}

// Classify returns the market band for the latest EHR999 value.
func Classify(v float64) (model.MarketBand, error) {
	idx, err := BandIndex(v)
	if err != nil {
		return model.MarketBand{}, err
	}
	return Bands[idx], nil
}

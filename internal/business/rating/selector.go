package rating

import (
	"sort"

	"github.com/shopspring/decimal"
)

// 推荐评分权重（固定策略常量，偏向时效）
const (
	PriceWeight = 0.4
	SpeedWeight = 0.6
)

// scoreEpsilon 浮点比较容差，评分相同时保留价格排序靠前者
const scoreEpsilon = 1e-9

// Select 从成功报价中选出最便宜、最快、推荐报价并统计价格区间
// 评分为当前候选集内的线性 min-max 归一化：
//
//	priceScore = 1 - (charge - minCharge) / (maxCharge - minCharge)
//	speedScore = 1 - (days - minDays) / (maxDays - minDays)
//	score      = 0.4*priceScore + 0.6*speedScore
//
// max == min 时分母取 1（单个候选或取值一致）
func Select(quotes []NormalizedQuote) (*SelectionResult, error) {
	if len(quotes) == 0 {
		return nil, &SelectionInputError{}
	}

	// 按价格稳定排序的副本，调用方传入乱序也能得到确定结果
	sorted := make([]NormalizedQuote, len(quotes))
	copy(sorted, quotes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalCharge < sorted[j].TotalCharge
	})

	minCharge, maxCharge := sorted[0].TotalCharge, sorted[len(sorted)-1].TotalCharge
	minDays, maxDays := sorted[0].TransitDays, sorted[0].TransitDays
	sum := decimal.Zero
	fastest := 0
	for i, q := range sorted {
		sum = sum.Add(decimal.NewFromFloat(q.TotalCharge))
		if q.TransitDays < minDays {
			minDays = q.TransitDays
		}
		if q.TransitDays > maxDays {
			maxDays = q.TransitDays
		}
		// 已按价格升序，时效相同时保留先出现（更便宜）的报价
		if q.TransitDays < sorted[fastest].TransitDays {
			fastest = i
		}
	}

	priceSpan := maxCharge - minCharge
	if priceSpan == 0 {
		priceSpan = 1
	}
	speedSpan := float64(maxDays - minDays)
	if speedSpan == 0 {
		speedSpan = 1
	}

	scores := make([]QuoteScore, 0, len(sorted))
	recommended := 0
	for i, q := range sorted {
		priceScore := 1 - (q.TotalCharge-minCharge)/priceSpan
		speedScore := 1 - float64(q.TransitDays-minDays)/speedSpan
		score := PriceWeight*priceScore + SpeedWeight*speedScore

		scores = append(scores, QuoteScore{
			CarrierID:  q.CarrierID,
			PriceScore: priceScore,
			SpeedScore: speedScore,
			Score:      score,
		})
		if score > scores[recommended].Score+scoreEpsilon {
			recommended = i
		}
	}

	average, _ := sum.Div(decimal.NewFromInt(int64(len(sorted)))).Round(2).Float64()

	return &SelectionResult{
		Cheapest:    &sorted[0],
		Fastest:     &sorted[fastest],
		Recommended: &sorted[recommended],
		PriceRange: PriceRange{
			Min:     minCharge,
			Max:     maxCharge,
			Average: average,
		},
		Scores: scores,
	}, nil
}

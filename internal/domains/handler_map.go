package domains

import (
	"oip/ratesync/internal/domains/common"
	"oip/ratesync/internal/domains/common/job"
	"oip/ratesync/internal/domains/handlers/rate/quote"
)

// HandlerMap 路由表（ActionType → Handler 映射）
var HandlerMap = map[string]common.HandlerServProc{
	job.ActionRateQuote: quote.NewRateQuoteHandler,
}

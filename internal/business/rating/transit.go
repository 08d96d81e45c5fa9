package rating

import "strconv"

// ParseTransitDays 从自由文本时效中提取第一段连续数字
// 例如 "3 days" -> 3，"2-4 business days" -> 2
// 没有数字（或数字溢出）时返回 DefaultTransitDays，调用方应视为"未知，按慢件估算"
func ParseTransitDays(transitTime string) int {
	start := -1
	end := -1
	for i := 0; i < len(transitTime); i++ {
		c := transitTime[i]
		if c >= '0' && c <= '9' {
			if start < 0 {
				start = i
			}
			end = i + 1
			continue
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return DefaultTransitDays
	}

	days, err := strconv.Atoi(transitTime[start:end])
	if err != nil {
		return DefaultTransitDays
	}
	return days
}

package scoring

// keywords is the fixed keyword set, kept lowercase and ordered.
var keywords = [...]string{
	"iot", "边缘计算", "edge computing", "人工智能", "ai", "python",
	"产品经理", "product manager", "算法", "硬件", "市场", "营销", "分析",
}

// Keywords returns a copy of the keyword set in scoring order.
func Keywords() []string {
	out := make([]string, len(keywords))
	copy(out, keywords[:])
	return out
}

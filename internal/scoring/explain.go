package scoring

import (
	"fmt"
	"strconv"
	"strings"
)

const listSeparator = "，"

// Explain renders a result as the multi-line text shown to the user.
func Explain(r *Result) string {
	if r == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "本地评分：%s\n", strconv.FormatFloat(r.Score, 'f', -1, 64))

	if len(r.MatchedKeywords) > 0 {
		fmt.Fprintf(&b, "匹配关键词：%s\n", strings.Join(r.MatchedKeywords, listSeparator))
	} else {
		b.WriteString("未匹配到预定义的关键技能\n")
	}

	if r.Years > 0 {
		fmt.Fprintf(&b, "工作年限：%d 年\n", r.Years)
	}

	if len(r.JobMatched) > 0 {
		fmt.Fprintf(&b, "与岗位匹配关键词：%s\n", strings.Join(r.JobMatched, listSeparator))
	}

	return strings.TrimSpace(b.String())
}

package news

import "strings"

// SplitSentences は貼り付けられた原文を文のリストに分割する。
// 改行で分割し、各行をトリムし、空行を捨てる。結果の位置がそのまま
// 文のSeqになり、後続の英訳フォームのキーと整合する必要があるため、
// この処理は決定的かつ順序保存でなければならない。
func SplitSentences(raw string) []string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	sentences := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sentences = append(sentences, line)
	}
	return sentences
}

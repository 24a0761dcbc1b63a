package news

import (
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"空行と末尾改行", "A\n\nB\n", []string{"A", "B"}},
		{"単一文", "こんにちは", []string{"こんにちは"}},
		{"前後の空白をトリム", "  一文目  \n\t二文目\t\n", []string{"一文目", "二文目"}},
		{"空白のみの行を除外", "A\n   \nB", []string{"A", "B"}},
		{"空入力", "", []string{}},
		{"空白のみ", "   \n\n  ", []string{}},
		{"順序保存", "3\n1\n2", []string{"3", "1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

// 同一入力に対して常に同一の結果を返すことを検証
func TestSplitSentences_Deterministic(t *testing.T) {
	raw := "一文目\n\n二文目\n三文目\n"
	first := SplitSentences(raw)
	for i := 0; i < 10; i++ {
		if got := SplitSentences(raw); !reflect.DeepEqual(got, first) {
			t.Fatalf("iteration %d: got %v, want %v", i, got, first)
		}
	}
}

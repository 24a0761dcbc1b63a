package model

// Sentence はニュース記事を構成する1文の対訳ペアを表す。
// Seqは記事内で0始まりの連番で、(NewsID, Seq)は一意。
// 日本語原文の確定時に一括作成され、以後は英訳列のみ更新される。
type Sentence struct {
	ID       int64
	NewsID   string
	Seq      int
	OriginJp bool
	JpText   string
	EngText  string
}

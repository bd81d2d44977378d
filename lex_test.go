package formula

import "testing"

func TestTokenize(t *testing.T) {
	num := func(s string, pos int) lexToken { return lexToken{text: s, kind: tokenNum, pos: pos} }
	vr := func(s string, pos int) lexToken { return lexToken{text: s, kind: tokenVar, pos: pos} }
	op := func(s string, pos int) lexToken { return lexToken{text: s, kind: tokenOp, pos: pos} }
	cases := []struct {
		src    string
		tokens []lexToken
	}{
		// spaces
		{"", nil},
		{" \t \r\n ", nil},
		// numbers
		{"0", []lexToken{num("0", 1)}},
		{"9876543210", []lexToken{num("9876543210", 1)}},
		{"1 0", []lexToken{num("1", 1), num("0", 3)}},
		{"1.5", []lexToken{num("1.5", 1)}},
		{".5", []lexToken{num(".5", 1)}},
		{"1+2", []lexToken{num("1", 1), op("+", 2), num("2", 3)}},
		// variables
		{"$x", []lexToken{vr("$x", 1)}},
		{"$x1+1", []lexToken{vr("$x1", 1), op("+", 4), num("1", 5)}},
		{"$player.Health", []lexToken{vr("$player.Health", 1)}},
		{"$a.b.c", []lexToken{vr("$a.b", 1), num(".", 5), vr("c", 6)}},
		{"$x.", []lexToken{vr("$x", 1), num(".", 3)}},
		{"x", []lexToken{vr("x", 1)}},
		{"health*2", []lexToken{vr("health", 1), op("*", 7), num("2", 8)}},
		// word operators
		{"pi", []lexToken{op("pi", 1)}},
		{"sin1", []lexToken{op("sin", 1), num("1", 4)}},
		{"sqrt4+3", []lexToken{op("sqrt", 1), num("4", 5), op("+", 6), num("3", 7)}},
		{"1d4", []lexToken{num("1", 1), op("d", 2), num("4", 3)}},
		{"2D20", []lexToken{num("2", 1), op("D", 2), num("20", 3)}},
		{"log10", []lexToken{op("log10", 1)}},
		{"log100", []lexToken{op("log", 1), num("100", 4)}},
		{"log10 100", []lexToken{op("log10", 1), num("100", 7)}},
		{"deg2rad90", []lexToken{op("deg2rad", 1), num("90", 8)}},
		{"true&&false", []lexToken{op("true", 1), op("&&", 5), op("false", 7)}},
		{"3 gte 2", []lexToken{num("3", 1), op("gte", 3), num("2", 7)}},
		// special characters
		{"1<=2", []lexToken{num("1", 1), op("<=", 2), num("2", 4)}},
		{"1<<2", []lexToken{num("1", 1), op("<<", 2), num("2", 4)}},
		{"!!1", []lexToken{op("!", 1), op("!", 2), num("1", 3)}},
		{"1<<<2", []lexToken{num("1", 1), op("<<", 2), op("<", 4), num("2", 5)}},
		{"1 # 2", []lexToken{num("1", 1), op("#", 3), num("2", 5)}},
		// sign
		{"±1", []lexToken{op("±", 1), num("1", 2)}},
		{"1-±1", []lexToken{num("1", 1), op("-", 2), op("±", 3), num("1", 4)}},
		{"±±x", []lexToken{op("±", 1), op("±", 2), vr("x", 3)}},
		// brackets and separators
		{"min(1,2)", []lexToken{
			op("min", 1),
			{text: "(", kind: tokenOpen, pos: 4},
			num("1", 5),
			{text: ",", kind: tokenSep, pos: 6},
			num("2", 7),
			{text: ")", kind: tokenClose, pos: 8},
		}},
		{"(-)", []lexToken{
			{text: "(", kind: tokenOpen, pos: 1},
			op("-", 2),
			{text: ")", kind: tokenClose, pos: 3},
		}},
	}
	for _, c := range cases {
		got := tokenize(c.src)
		if len(got) != len(c.tokens) {
			t.Errorf("tokenizing %q: want %v, got %v", c.src, c.tokens, got)
			continue
		}
		for i, want := range c.tokens {
			if got[i] != want {
				t.Errorf("tokenizing %q: token %d: want %v, got %v", c.src, i, want, got[i])
			}
		}
	}
}

func TestScanWordRegistered(t *testing.T) {
	cases := []struct {
		src  string
		end  int
		word bool
	}{
		{"sin", 3, true},
		{"sine", 4, false},
		{"deg2rad", 7, true},
		{"deg2", 3, false},
		{"log10x", 5, true},
		{"log105", 3, true},
		{"rand", 4, true},
		{"and1", 3, true},
	}
	for _, c := range cases {
		end, word := scanWord([]rune(c.src), 0)
		if end != c.end || word != c.word {
			t.Errorf("scanning %q: want (%d, %t), got (%d, %t)", c.src, c.end, c.word, end, word)
		}
	}
}

func BenchmarkTokenize(b *testing.B) {
	const src = "sin $x*cos $y+cos $x*sin $y + 2d6 >= $player.Health"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tokenize(src)
	}
}

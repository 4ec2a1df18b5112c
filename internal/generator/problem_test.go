package generator

import (
	"encoding/json"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/math-adventure/backend/internal/apperr"
)

// scriptedSource replays values and records the bounds it was asked for.
type scriptedSource struct {
	values []int
	bounds []int
}

func (s *scriptedSource) Draw(max int) int {
	s.bounds = append(s.bounds, max)
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

func TestGenerateScripted(t *testing.T) {
	tests := []struct {
		name       string
		kind       Kind
		difficulty int
		draws      []int
		statement  string
		answer     string
		wantKind   Kind
		bounds     []int
	}{
		{"addition", Addition, 1, []int{3, 7}, "3 + 7", "10", Addition, []int{10, 10}},
		{"subtraction", Subtraction, 2, []int{5, 4}, "7 - 4", "3", Subtraction, []int{20, 7}},
		{"subtraction caps b at maxNum", Subtraction, 1, []int{10, 10}, "11 - 10", "1", Subtraction, []int{10, 10}},
		{"multiplication", Multiplication, 5, []int{6, 7}, "6 × 7", "42", Multiplication, []int{7, 7}},
		{"division", Division, 3, []int{4, 5}, "20 ÷ 4", "5", Division, []int{5, 5}},
		{"mixed resolves at difficulty 1", Mixed, 1, []int{2, 9, 3}, "10 - 3", "7", Subtraction, []int{2, 10, 10}},
		{"mixed resolves to division at 3", Mixed, 3, []int{4, 2, 3}, "6 ÷ 2", "3", Division, []int{4, 5, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &scriptedSource{values: tt.draws}
			p, err := Generate(tt.kind, tt.difficulty, src)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if p.Statement != tt.statement || p.Answer != tt.answer {
				t.Errorf("Generate() = %q = %q, want %q = %q", p.Statement, p.Answer, tt.statement, tt.answer)
			}
			if p.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", p.Kind, tt.wantKind)
			}
			if p.Difficulty != tt.difficulty {
				t.Errorf("Difficulty = %d, want %d", p.Difficulty, tt.difficulty)
			}
			if len(src.bounds) != len(tt.bounds) {
				t.Fatalf("bounds = %v, want %v", src.bounds, tt.bounds)
			}
			for i := range tt.bounds {
				if src.bounds[i] != tt.bounds[i] {
					t.Errorf("bounds = %v, want %v", src.bounds, tt.bounds)
					break
				}
			}
		})
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	src := NewRandomSource(rand.New(rand.NewPCG(1, 2)))

	for _, d := range []int{0, 6, -1} {
		if _, err := Generate(Addition, d, src); !apperr.Is(err, apperr.InvalidArgument) {
			t.Errorf("Generate(addition, %d) error = %v, want invalid argument", d, err)
		}
	}
	if _, err := Generate(Kind(42), 1, src); !apperr.Is(err, apperr.InvalidArgument) {
		t.Errorf("Generate(Kind(42)) error = %v, want invalid argument", err)
	}
}

func TestDivisionAlwaysExact(t *testing.T) {
	src := NewRandomSource(rand.New(rand.NewPCG(7, 11)))
	for d := MinDifficulty; d <= MaxDifficulty; d++ {
		for i := 0; i < 500; i++ {
			p, err := Generate(Division, d, src)
			if err != nil {
				t.Fatalf("Generate(division, %d) error = %v", d, err)
			}
			q, err := strconv.Atoi(p.Answer)
			if err != nil {
				t.Fatalf("answer %q is not an integer", p.Answer)
			}
			if p.A != p.B*q {
				t.Fatalf("%s: %d != %d * %d", p.Statement, p.A, p.B, q)
			}
			if f := min(d+2, 12); p.B < 1 || p.B > f || q < 1 || q > f {
				t.Fatalf("%s: factors out of [1,%d]", p.Statement, f)
			}
		}
	}
}

func TestSubtractionNeverNegative(t *testing.T) {
	src := NewRandomSource(rand.New(rand.NewPCG(3, 5)))
	for d := MinDifficulty; d <= MaxDifficulty; d++ {
		for i := 0; i < 1000; i++ {
			p, err := Generate(Subtraction, d, src)
			if err != nil {
				t.Fatalf("Generate(subtraction, %d) error = %v", d, err)
			}
			n, _ := strconv.Atoi(p.Answer)
			if n < 0 || p.A-p.B != n {
				t.Fatalf("%s = %s, want non-negative difference", p.Statement, p.Answer)
			}
		}
	}
}

func TestAdditionRange(t *testing.T) {
	src := NewRandomSource(rand.New(rand.NewPCG(9, 9)))
	for i := 0; i < 500; i++ {
		p, _ := Generate(Addition, 1, src)
		if p.A < 1 || p.A > 10 || p.B < 1 || p.B > 10 {
			t.Fatalf("%s: operands out of [1,10]", p.Statement)
		}
	}
}

func TestMixedNeverExceedsUnlockedKinds(t *testing.T) {
	src := NewRandomSource(rand.New(rand.NewPCG(4, 4)))
	for i := 0; i < 300; i++ {
		p1, _ := Generate(Mixed, 1, src)
		if p1.Kind != Addition && p1.Kind != Subtraction {
			t.Fatalf("mixed at difficulty 1 produced %s", p1.Kind)
		}
		p2, _ := Generate(Mixed, 2, src)
		if p2.Kind == Division || p2.Kind == Mixed {
			t.Fatalf("mixed at difficulty 2 produced %s", p2.Kind)
		}
	}
}

func TestParseKind(t *testing.T) {
	for k, name := range kindNames {
		got, err := ParseKind(name)
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseKind("exponent"); !apperr.Is(err, apperr.InvalidArgument) {
		t.Errorf("ParseKind(exponent) error = %v", err)
	}
}

func TestProblemJSON(t *testing.T) {
	p := newProblem(Multiplication, 2, 3, 4, 12)
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"problem":"3 × 4","answer":"12","type":"multiplication","difficulty":2}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		statement string
		want      string
		kind      Kind
		wantErr   bool
	}{
		{"7 + 3", "10", Addition, false},
		{"44 - 40", "4", Subtraction, false},
		{"6 × 7", "42", Multiplication, false},
		{"20 ÷ 4", "5", Division, false},
		{" 9 * 9 ", "81", Multiplication, false},
		{"7 ÷ 2", "", 0, true},
		{"7 ÷ 0", "", 0, true},
		{"7 ^ 2", "", 0, true},
		{"seven + 2", "", 0, true},
		{"1 + 2 + 3", "", 0, true},
	}

	for _, tt := range tests {
		got, kind, err := Evaluate(tt.statement)
		if tt.wantErr {
			if !apperr.Is(err, apperr.InvalidArgument) {
				t.Errorf("Evaluate(%q) error = %v, want invalid argument", tt.statement, err)
			}
			continue
		}
		if err != nil || got != tt.want || kind != tt.kind {
			t.Errorf("Evaluate(%q) = %q, %s, %v, want %q, %s", tt.statement, got, kind, err, tt.want, tt.kind)
		}
	}
}

func TestEvaluateRoundTripsGenerated(t *testing.T) {
	src := NewRandomSource(rand.New(rand.NewPCG(21, 42)))
	for i := 0; i < 200; i++ {
		p, _ := Generate(Mixed, 1+i%5, src)
		got, kind, err := Evaluate(p.Statement)
		if err != nil || got != p.Answer || kind != p.Kind {
			t.Fatalf("Evaluate(%q) = %q, %s, %v, want %q, %s", p.Statement, got, kind, err, p.Answer, p.Kind)
		}
	}
}

func TestCheckAnswer(t *testing.T) {
	if !CheckAnswer("10", " 10 \n") {
		t.Error("CheckAnswer should trim input")
	}
	if CheckAnswer("10", "010") {
		t.Error("CheckAnswer compares strings, not numbers")
	}
}

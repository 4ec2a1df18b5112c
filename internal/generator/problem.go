// Package generator builds arithmetic problems, either from injected
// randomness for interactive play or from a date-derived seed for the daily
// challenge.
package generator

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/math-adventure/backend/internal/apperr"
)

const (
	MinDifficulty = 1
	MaxDifficulty = 5
	maxFactor     = 12

	// Factor bounds for multiplication and division are difficulty plus
	// this offset. Daily problems have always drawn from a wider range.
	practiceFactorOffset = 2
	dailyFactorOffset    = 3
)

type Kind int

const (
	Addition Kind = iota
	Subtraction
	Multiplication
	Division
	Mixed
)

var kindNames = map[Kind]string{
	Addition:       "addition",
	Subtraction:    "subtraction",
	Multiplication: "multiplication",
	Division:       "division",
	Mixed:          "mixed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown problem kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Concrete reports whether k names a single operation (everything but Mixed).
func (k Kind) Concrete() bool {
	return k >= Addition && k <= Division
}

func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, apperr.New(apperr.InvalidArgument, fmt.Sprintf("Invalid problem type: %s", s))
}

// Source draws an integer in [1, max].
type Source interface {
	Draw(max int) int
}

type randomSource struct {
	r *rand.Rand
}

// NewRandomSource wraps r for interactive play. A nil r uses the global
// math/rand/v2 generator.
func NewRandomSource(r *rand.Rand) Source {
	return randomSource{r: r}
}

func (s randomSource) Draw(max int) int {
	if max < 1 {
		max = 1
	}
	if s.r == nil {
		return rand.IntN(max) + 1
	}
	return s.r.IntN(max) + 1
}

// SeededSource returns Next(Seed, Index, max) for every draw, so two draws
// with the same bound return the same number.
type SeededSource struct {
	Seed  int64
	Index int64
}

func (s SeededSource) Draw(max int) int {
	return Next(s.Seed, s.Index, max)
}

// Problem is immutable once generated. A and B are the rendered operands.
type Problem struct {
	Statement  string `json:"problem"`
	Answer     string `json:"answer"`
	Kind       Kind   `json:"type"`
	Difficulty int    `json:"difficulty"`
	A          int    `json:"-"`
	B          int    `json:"-"`
}

func Generate(kind Kind, difficulty int, src Source) (Problem, error) {
	return generate(kind, difficulty, src, practiceFactorOffset)
}

func generate(kind Kind, difficulty int, src Source, factorOffset int) (Problem, error) {
	if difficulty < MinDifficulty || difficulty > MaxDifficulty {
		return Problem{}, apperr.New(apperr.InvalidArgument,
			fmt.Sprintf("Difficulty must be between %d and %d", MinDifficulty, MaxDifficulty))
	}

	maxNum := difficulty * 10

	switch kind {
	case Addition:
		a := src.Draw(maxNum)
		b := src.Draw(maxNum)
		return newProblem(kind, difficulty, a, b, a+b), nil
	case Subtraction:
		a := src.Draw(maxNum) + difficulty
		b := src.Draw(min(a, maxNum))
		return newProblem(kind, difficulty, a, b, a-b), nil
	case Multiplication:
		f := min(difficulty+factorOffset, maxFactor)
		a := src.Draw(f)
		b := src.Draw(f)
		return newProblem(kind, difficulty, a, b, a*b), nil
	case Division:
		f := min(difficulty+factorOffset, maxFactor)
		b := src.Draw(f)
		q := src.Draw(f)
		return newProblem(kind, difficulty, b*q, b, q), nil
	case Mixed:
		candidates := MixedCandidates(difficulty)
		return generate(candidates[src.Draw(len(candidates))-1], difficulty, src, factorOffset)
	default:
		return Problem{}, apperr.New(apperr.InvalidArgument, fmt.Sprintf("Invalid problem type: %s", kind))
	}
}

// MixedCandidates lists the operations Mixed may resolve to at a difficulty.
func MixedCandidates(difficulty int) []Kind {
	candidates := []Kind{Addition, Subtraction}
	if difficulty >= 2 {
		candidates = append(candidates, Multiplication)
	}
	if difficulty >= 3 {
		candidates = append(candidates, Division)
	}
	return candidates
}

var symbols = map[Kind]string{
	Addition:       "+",
	Subtraction:    "-",
	Multiplication: "×",
	Division:       "÷",
}

func newProblem(kind Kind, difficulty, a, b, answer int) Problem {
	return Problem{
		Statement:  fmt.Sprintf("%d %s %d", a, symbols[kind], b),
		Answer:     strconv.Itoa(answer),
		Kind:       kind,
		Difficulty: difficulty,
		A:          a,
		B:          b,
	}
}

// CheckAnswer compares trimmed strings.
func CheckAnswer(canonical, given string) bool {
	return strings.TrimSpace(canonical) == strings.TrimSpace(given)
}

var operators = map[string]Kind{
	"+": Addition,
	"-": Subtraction,
	"×": Multiplication,
	"x": Multiplication,
	"*": Multiplication,
	"÷": Division,
	"/": Division,
}

// Evaluate recomputes the canonical answer of a rendered "a op b" statement.
// It returns the operation kind alongside the answer.
func Evaluate(statement string) (string, Kind, error) {
	fields := strings.Fields(statement)
	if len(fields) != 3 {
		return "", 0, apperr.New(apperr.InvalidArgument, "Malformed problem")
	}
	a, errA := strconv.Atoi(fields[0])
	b, errB := strconv.Atoi(fields[2])
	kind, ok := operators[fields[1]]
	if errA != nil || errB != nil || !ok {
		return "", 0, apperr.New(apperr.InvalidArgument, "Malformed problem")
	}

	var answer int
	switch kind {
	case Addition:
		answer = a + b
	case Subtraction:
		answer = a - b
	case Multiplication:
		answer = a * b
	case Division:
		if b == 0 || a%b != 0 {
			return "", 0, apperr.New(apperr.InvalidArgument, "Malformed problem")
		}
		answer = a / b
	}
	return strconv.Itoa(answer), kind, nil
}

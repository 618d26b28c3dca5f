package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/examhub/portal/core/catalog"
)

func strs(ss ...string) []*string {
	out := make([]*string, len(ss))
	for i := range ss {
		if ss[i] != "<nil>" {
			out[i] = &ss[i]
		}
	}
	return out
}

func TestScore(t *testing.T) {
	questions := []catalog.Question{
		{ID: "1", Options: []string{"A", "B"}, Answer: "A"},
		{ID: "2", Options: []string{"X", "Y"}, Answer: "X"},
		{ID: "3", Options: []string{"C", "c"}, Answer: "C"},
	}

	tests := []struct {
		name    string
		answers []*string
		want    Tally
	}{
		{name: "no answers", want: Tally{Unanswered: 3, Total: 3}},
		{name: "all correct", answers: strs("A", "X", "C"), want: Tally{Correct: 3, Total: 3}},
		{name: "one wrong", answers: strs("A", "B", "C"), want: Tally{Correct: 2, Wrong: 1, Total: 3}},
		{name: "case-sensitive", answers: strs("A", "X", "c"), want: Tally{Correct: 2, Wrong: 1, Total: 3}},
		{name: "no trimming", answers: strs("A ", "X", "C"), want: Tally{Correct: 2, Wrong: 1, Total: 3}},
		{name: "nil answer", answers: strs("A", "<nil>", "C"), want: Tally{Correct: 2, Unanswered: 1, Total: 3}},
		{name: "missing trailing answers", answers: strs("A"), want: Tally{Correct: 1, Unanswered: 2, Total: 3}},
		{name: "extra answers ignored", answers: strs("A", "X", "C", "D", "E"), want: Tally{Correct: 3, Total: 3}},
		{name: "empty string is an answer", answers: strs("", "X", "C"), want: Tally{Correct: 2, Wrong: 1, Total: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(questions, tt.answers)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Total, got.Correct+got.Wrong+got.Unanswered)
		})
	}
}

func TestScore_noQuestions(t *testing.T) {
	assert.Equal(t, Tally{}, Score(nil, strs("A")))
}

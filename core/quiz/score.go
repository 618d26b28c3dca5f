package quiz

import "github.com/examhub/portal/core/catalog"

// Score compares answers to the answer keys by position with an exact, case-sensitive match.
// A nil answer or a missing trailing one is unanswered and never counts. Extra answers are ignored.
func Score(questions []catalog.Question, answers []*string) Tally {
	t := Tally{Total: len(questions)}
	for i, q := range questions {
		switch {
		case i >= len(answers) || answers[i] == nil:
			t.Unanswered++
		case *answers[i] == q.Answer:
			t.Correct++
		default:
			t.Wrong++
		}
	}
	return t
}

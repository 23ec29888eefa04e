package linear

import "github.com/p-n-ai/pai-classroom/internal/problem"

// markedChoice carries the correct marker until the choices are shuffled.
type markedChoice struct {
	problem.Choice
	correct bool
}

// multipleChoice shuffles the correct answer among the distractors and
// returns the unmarked choices with the index of the correct one.
func multipleChoice(r problem.Rand, correct string, distractors ...string) ([]problem.Choice, int) {
	marked := make([]markedChoice, 0, len(distractors)+1)
	marked = append(marked, markedChoice{Choice: problem.Choice{Type: problem.BlockText, Value: correct}, correct: true})
	for _, d := range distractors {
		marked = append(marked, markedChoice{Choice: problem.Choice{Type: problem.BlockText, Value: d}})
	}
	r.Shuffle(len(marked), func(i, j int) { marked[i], marked[j] = marked[j], marked[i] })

	choices := make([]problem.Choice, len(marked))
	answer := -1
	for i, m := range marked {
		if m.correct {
			answer = i
		}
		choices[i] = m.Choice
	}
	return choices, answer
}

// distinctChoices returns up to n candidates that differ from correct and
// from each other, in candidate order.
func distinctChoices(n int, correct string, candidates ...string) []string {
	seen := map[string]bool{correct: true}
	out := make([]string, 0, n)
	for _, c := range candidates {
		if len(out) == n {
			break
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

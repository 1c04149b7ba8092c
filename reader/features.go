package reader

// QEFeature marks the evidence tokens which appear
// anywhere in the question.
func QEFeature(question, evidence []string) []int {
	seen := map[string]bool{}
	for _, tok := range question {
		seen[tok] = true
	}
	return markSeen(seen, evidence)
}

// EEFeature marks the tokens of evidences[pos] which
// appear in any other evidence for the same question.
func EEFeature(pos int, evidences [][]string) []int {
	seen := map[string]bool{}
	for i, ev := range evidences {
		if i == pos {
			continue
		}
		for _, tok := range ev {
			seen[tok] = true
		}
	}
	return markSeen(seen, evidences[pos])
}

func markSeen(seen map[string]bool, tokens []string) []int {
	res := make([]int, len(tokens))
	for i, tok := range tokens {
		if seen[tok] {
			res[i] = 1
		}
	}
	return res
}

package tutorial

import "strings"

// QAEntry is one canned question/answer pair under a topic tag.
type QAEntry struct {
	Topic    string `json:"topic"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// MatchResult is the outcome of BestMatch. Found is false only when there
// were no candidates; a best score of 0 still counts as a match.
type MatchResult struct {
	Answer string
	Score  float64
	Index  int
	Found  bool
}

// noScore sits below every valid score so that a 0 overlap can still win.
const noScore = -1.0

// Matcher picks canned answers by word overlap.
type Matcher struct {
	noAnswer string
}

func NewMatcher(noAnswer string) *Matcher {
	if strings.TrimSpace(noAnswer) == "" {
		noAnswer = DefaultMessages().NoAnswer
	}
	return &Matcher{noAnswer: noAnswer}
}

func (m *Matcher) NoAnswer() string { return m.noAnswer }

// BestMatch scans candidates in order and keeps the first one with the
// strictly highest Similarity to input. topic is informational; callers
// pass candidates already filtered by it.
func (m *Matcher) BestMatch(topic, input string, candidates []QAEntry) MatchResult {
	best := MatchResult{Answer: m.noAnswer, Score: noScore, Index: -1}
	inputTokens := tokenSet(input)
	for i, c := range candidates {
		score := overlap(inputTokens, tokenSet(c.Question))
		if score > best.Score {
			best = MatchResult{Answer: c.Answer, Score: score, Index: i, Found: true}
		}
	}
	if !best.Found {
		best.Score = 0
	}
	return best
}

// Similarity is |A ∩ B| / max(|A|, |B|) over the distinct lower-cased
// whitespace tokens of a and b. Two empty inputs score 0.
func Similarity(a, b string) float64 {
	return overlap(tokenSet(a), tokenSet(b))
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) float64 {
	denom := len(a)
	if len(b) > denom {
		denom = len(b)
	}
	if denom == 0 {
		return 0
	}
	common := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			common++
		}
	}
	return float64(common) / float64(denom)
}

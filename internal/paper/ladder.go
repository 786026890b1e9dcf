package paper

import (
	"context"
	"errors"
)

var ErrNoQuestions = errors.New("no questions found for any marks or difficulty")

// Ladder retries a Generator with progressively relaxed parameters until a
// paper has at least one question: the exact request, then without the
// difficulty filter, then each other marks bucket without difficulty.
type Ladder struct {
	Gen Generator
}

// Step is one attempt made by the ladder.
type Step struct {
	Marks      Mode
	Difficulty string
}

// Steps lists the attempts for req in order.
func (l Ladder) Steps(req Request) []Step {
	marks := req.Marks
	if marks == "" {
		marks = ModeAll
	}
	diff := normalize(req.Difficulty)

	steps := []Step{{Marks: marks, Difficulty: diff}}
	if diff != "" {
		steps = append(steps, Step{Marks: marks})
	}
	for _, m := range []Mode{ModeTwo, ModeThree, ModeFive} {
		if m != marks {
			steps = append(steps, Step{Marks: m})
		}
	}
	return steps
}

// Assemble returns the first non-empty paper. When every step is empty the
// last paper is returned together with ErrNoQuestions.
func (l Ladder) Assemble(ctx context.Context, req Request) (Paper, error) {
	var last Paper
	for _, s := range l.Steps(req) {
		r := req
		r.Marks, r.Difficulty = s.Marks, s.Difficulty
		p, err := l.Gen.Assemble(ctx, r)
		if err != nil {
			return Paper{}, err
		}
		if p.Len() > 0 {
			return p, nil
		}
		last = p
	}
	return last, ErrNoQuestions
}

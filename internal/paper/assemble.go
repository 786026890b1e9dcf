package paper

import (
	"context"
	"encoding/json"
	"time"
)

// Request is validated by the caller before it reaches the assembler.
type Request struct {
	Standard   string
	Subject    string
	Total      int
	Marks      Mode
	Difficulty string
}

type Meta struct {
	Standard       string    `json:"standard"`
	Subject        string    `json:"subject"`
	TotalRequested int       `json:"total_requested"`
	MarksChoice    Mode      `json:"marks_choice"`
	Difficulty     string    `json:"difficulty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Paper is a request-scoped mock test. Sections hold full question records;
// JSON output reduces them to display fields.
type Paper struct {
	Meta     Meta
	Sections Partitions
}

func (p Paper) Len() int {
	return len(p.Sections.Two) + len(p.Sections.Three) + len(p.Sections.Five)
}

func (p Paper) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Meta     Meta                         `json:"meta"`
		Sections map[string][]DisplayQuestion `json:"sections"`
	}{
		Meta: p.Meta,
		Sections: map[string][]DisplayQuestion{
			"2": display(p.Sections.Two),
			"3": display(p.Sections.Three),
			"5": display(p.Sections.Five),
		},
	})
}

func display(qs []Question) []DisplayQuestion {
	out := make([]DisplayQuestion, len(qs))
	for i, q := range qs {
		out[i] = q.Display()
	}
	return out
}

// Generator produces a paper for a request. *Assembler implements it.
type Generator interface {
	Assemble(ctx context.Context, req Request) (Paper, error)
}

// PoolLoader is satisfied by *Loader.
type PoolLoader interface {
	LoadPool(ctx context.Context, standard, subject string) ([]Question, error)
}

// Assembler turns a subject pool into a paper. It has no retry logic and
// treats empty sections as a valid result.
type Assembler struct {
	Pools  PoolLoader
	Source Source
	Now    func() time.Time
}

func NewAssembler(pools PoolLoader, src Source) *Assembler {
	if src == nil {
		src = DefaultSource()
	}
	return &Assembler{Pools: pools, Source: src, Now: time.Now}
}

func (a *Assembler) Assemble(ctx context.Context, req Request) (Paper, error) {
	pool, err := a.Pools.LoadPool(ctx, req.Standard, req.Subject)
	if err != nil {
		return Paper{}, err
	}
	return a.Build(pool, req), nil
}

// Build runs the filter, partition and sampling steps on an already loaded pool.
func (a *Assembler) Build(pool []Question, req Request) Paper {
	if req.Marks == "" {
		req.Marks = ModeAll
	}
	parts := PartitionByMarks(FilterDifficulty(pool, req.Difficulty))
	n := ResolveCounts(req.Total, req.Marks)

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	total := req.Total
	if total < 0 {
		total = 0
	}
	return Paper{
		Meta: Meta{
			Standard:       req.Standard,
			Subject:        req.Subject,
			TotalRequested: total,
			MarksChoice:    req.Marks,
			Difficulty:     normalize(req.Difficulty),
			CreatedAt:      now().UTC(),
		},
		Sections: Partitions{
			Two:   Sample(a.Source, parts.Two, n.Two),
			Three: Sample(a.Source, parts.Three, n.Three),
			Five:  Sample(a.Source, parts.Five, n.Five),
		},
	}
}

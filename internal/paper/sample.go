package paper

import (
	crand "crypto/rand"
	"math/big"
	"math/rand/v2"
	"sync"
	"time"
)

// Source yields uniform integers in [0, n). n is always > 0.
type Source interface {
	Intn(n int) int
}

// CryptoSource draws from crypto/rand and falls back to a time-seeded PCG
// generator if the system reader ever fails.
type CryptoSource struct {
	once     sync.Once
	mu       sync.Mutex
	fallback *rand.Rand
}

func DefaultSource() Source { return &CryptoSource{} }

func (s *CryptoSource) Intn(n int) int {
	v, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err == nil {
		return int(v.Int64())
	}
	s.once.Do(func() {
		seed := uint64(time.Now().UnixNano())
		s.fallback = rand.New(rand.NewPCG(seed, seed>>1|1))
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallback.IntN(n)
}

// SeededSource is a deterministic source. Not safe for concurrent use.
type SeededSource struct{ r *rand.Rand }

func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *SeededSource) Intn(n int) int { return s.r.IntN(n) }

// Shuffle returns a Fisher–Yates permutation of a copy of pool.
func Shuffle[T any](src Source, pool []T) []T {
	out := make([]T, len(pool))
	copy(out, pool)
	for i := len(out) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Sample picks min(n, len(pool)) distinct elements in random order.
// pool is not modified.
func Sample[T any](src Source, pool []T, n int) []T {
	if n <= 0 || len(pool) == 0 {
		return []T{}
	}
	out := Shuffle(src, pool)
	if n >= len(out) {
		return out
	}
	return out[:n]
}

// FilterDifficulty keeps questions whose difficulty matches want, ignoring
// case and surrounding space. A blank want returns pool as is.
func FilterDifficulty(pool []Question, want string) []Question {
	want = normalize(want)
	if want == "" {
		return pool
	}
	out := make([]Question, 0, len(pool))
	for _, q := range pool {
		if normalize(q.Difficulty) == want {
			out = append(out, q)
		}
	}
	return out
}

// Partitions holds the marks buckets of a pool, each in pool order.
type Partitions struct {
	Two, Three, Five []Question
}

// PartitionByMarks splits pool by marks. Records with other marks are dropped.
func PartitionByMarks(pool []Question) Partitions {
	p := Partitions{Two: []Question{}, Three: []Question{}, Five: []Question{}}
	for _, q := range pool {
		switch q.Marks {
		case Marks2:
			p.Two = append(p.Two, q)
		case Marks3:
			p.Three = append(p.Three, q)
		case Marks5:
			p.Five = append(p.Five, q)
		}
	}
	return p
}

package paper

import (
	"encoding/json"
	"math"
	"strings"
)

// Marks values that form partitions.
const (
	Marks2 = 2
	Marks3 = 3
	Marks5 = 5
)

// Question is one record of a chapter file. Unknown fields are kept in Extra.
type Question struct {
	Text          string
	Marks         int // 0 when missing or not an integer
	Difficulty    string
	ChapterNumber *float64
	Extra         map[string]json.RawMessage
}

// UnmarshalJSON accepts both the current keys (text, chapterNumber) and the
// legacy dataset keys (question, chapter_no).
func (q *Question) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*q = Question{}

	if v, ok := raw["question"]; ok {
		_ = json.Unmarshal(v, &q.Text)
		delete(raw, "question")
	}
	if v, ok := raw["text"]; ok {
		var s string
		if json.Unmarshal(v, &s) == nil && s != "" {
			q.Text = s
		}
		delete(raw, "text")
	}
	if v, ok := raw["marks"]; ok {
		var f float64
		if json.Unmarshal(v, &f) == nil && f == math.Trunc(f) {
			q.Marks = int(f)
		}
		delete(raw, "marks")
	}
	if v, ok := raw["difficulty"]; ok {
		_ = json.Unmarshal(v, &q.Difficulty)
		delete(raw, "difficulty")
	}
	for _, k := range []string{"chapter_no", "chapterNumber"} {
		v, ok := raw[k]
		if !ok {
			continue
		}
		var f float64
		if json.Unmarshal(v, &f) == nil {
			q.ChapterNumber = &f
		}
		delete(raw, k)
	}
	if len(raw) > 0 {
		q.Extra = raw
	}
	return nil
}

// DisplayQuestion is the reduced shape returned to clients.
type DisplayQuestion struct {
	Text          string   `json:"text"`
	Marks         int      `json:"marks"`
	Difficulty    string   `json:"difficulty"`
	ChapterNumber *float64 `json:"chapter_number,omitempty"`
}

func (q Question) Display() DisplayQuestion {
	return DisplayQuestion{
		Text:          q.Text,
		Marks:         q.Marks,
		Difficulty:    normalize(q.Difficulty),
		ChapterNumber: q.ChapterNumber,
	}
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

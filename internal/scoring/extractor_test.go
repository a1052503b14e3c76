package scoring

import (
	"reflect"
	"strings"
	"testing"

	"github.com/anatomyace/anatomy-ace/internal/model"
)

func TestExtractKeywordList(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		qt     model.QuestionType
		want   []string
	}{
		{
			name:   "short answer with bracket",
			answer: "femur (thigh bone)",
			qt:     model.QuestionTypeShortAnswer,
			want:   []string{"femur (thigh bone)", "thigh bone"},
		},
		{
			name:   "short answer lowercased and comma split",
			answer: "Atlas, Axis",
			qt:     model.QuestionTypeShortAnswer,
			want:   []string{"atlas, axis", "atlas", "axis"},
		},
		{
			name:   "short answer drops single characters",
			answer: "A, bc",
			qt:     model.QuestionTypeShortAnswer,
			want:   []string{"a, bc", "bc"},
		},
		{
			name:   "empty answer",
			answer: "",
			qt:     model.QuestionTypeShortAnswer,
			want:   []string{},
		},
		{
			name:   "essay mixes brackets terms numbers and segments",
			answer: "Heart (cardiac muscle); 4 chambers",
			qt:     model.QuestionTypeEssay,
			want:   []string{"cardiac muscle", "heart", "chambers", "4 chambers"},
		},
		{
			name:   "essay keeps korean text after a number",
			answer: "심장은 4개의 방으로 구성",
			qt:     model.QuestionTypeEssay,
			want:   []string{"4개의 방으로 구성", "심장은 4개의 방으로 구성"},
		},
		{
			name:   "other type uses the essay heuristics",
			answer: "Tibia (shin)",
			qt:     model.QuestionTypeOther,
			want:   []string{"shin", "tibia"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractKeywordList(tc.answer, tc.qt)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ExtractKeywordList(%q) = %q, want %q", tc.answer, got, tc.want)
			}
		})
	}
}

func TestExtractKeywords_Serialized(t *testing.T) {
	got := ExtractKeywords("femur (thigh bone)", model.QuestionTypeShortAnswer)
	if got != "femur (thigh bone);thigh bone" {
		t.Fatalf("ExtractKeywords() = %q", got)
	}
	for _, kw := range []string{"femur (thigh bone)", "thigh bone"} {
		if n := strings.Count(";"+got+";", ";"+kw+";"); n != 1 {
			t.Errorf("keyword %q appears %d times, want 1", kw, n)
		}
	}
}

func TestExtractKeywords_CapsAtTen(t *testing.T) {
	answer := "alpha, bravo, charlie, delta, echo, foxtrot, golf, hotel, india, juliet, kilo, lima"
	got := ExtractKeywordList(answer, model.QuestionTypeEssay)

	if len(got) != MaxKeywords {
		t.Fatalf("len = %d, want %d (%q)", len(got), MaxKeywords, got)
	}
	if got[0] != "alpha" || got[9] != "juliet" {
		t.Errorf("got %q, want alpha..juliet in order", got)
	}
}

func TestExtractKeywords_NoDuplicates(t *testing.T) {
	got := ExtractKeywordList("bone, bone, (bone), bone", model.QuestionTypeShortAnswer)
	seen := map[string]bool{}
	for _, kw := range got {
		if seen[kw] {
			t.Fatalf("duplicate keyword %q in %q", kw, got)
		}
		seen[kw] = true
	}
	if !seen["bone"] {
		t.Errorf("expected %q in %q", "bone", got)
	}
}

func TestSplitKeywords(t *testing.T) {
	got := SplitKeywords(" Heart ; ;LUNGS;")
	want := []string{"heart", "lungs"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitKeywords() = %q, want %q", got, want)
	}
	if got := SplitKeywords(""); len(got) != 0 {
		t.Errorf("SplitKeywords(\"\") = %q, want empty", got)
	}
}

func TestIsNumeric(t *testing.T) {
	cases := map[string]bool{
		"1234": true,
		"12a4": false,
		"":     false,
		"١٢٣":  true,
	}
	for in, want := range cases {
		if got := isNumeric(in); got != want {
			t.Errorf("isNumeric(%q) = %v, want %v", in, got, want)
		}
	}
}

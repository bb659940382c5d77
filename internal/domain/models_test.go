package domain

import (
	"errors"
	"testing"
)

func TestStudentIDLess(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"9999", "10000", true},
		{"10000", "9999", false},
		{"1800", "1801", true},
		{"0042", "0042", false},
	}
	for _, c := range cases {
		if got := StudentIDLess(c.a, c.b); got != c.want {
			t.Fatalf("StudentIDLess(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestQuestionValidate(t *testing.T) {
	valid := Question{
		TaskNumber:     1,
		QuestionNumber: 1,
		QuestionText:   "Pick one",
		Options:        Options{{ID: "A", Text: "alpha"}, {ID: "B", Text: "beta"}},
		CorrectOption:  "A",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("zero points is a valid score: %v", err)
	}

	broken := valid
	broken.CorrectOption = "Z"
	broken.Points = -1
	err := broken.Validate()
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) != 2 || verr.Fields[0] != "correct_option" || verr.Fields[1] != "score" {
		t.Fatalf("expected correct_option and score to be named, got %v", err)
	}
}

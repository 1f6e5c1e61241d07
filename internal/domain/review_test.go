package domain

import "testing"

func TestValidRating(t *testing.T) {
	for _, n := range []int{1, 3, 5} {
		if !ValidRating(n) {
			t.Errorf("ValidRating(%d) = false, want true", n)
		}
	}
	for _, n := range []int{0, 6, -1} {
		if ValidRating(n) {
			t.Errorf("ValidRating(%d) = true, want false", n)
		}
	}
}

func TestReviewCanModify(t *testing.T) {
	r := &Review{UserID: 7, Status: ReviewStatusPending}
	if !r.CanModify(7) {
		t.Error("author should be able to modify a pending review")
	}
	if r.CanModify(8) {
		t.Error("other users must not modify the review")
	}
	r.Status = ReviewStatusApproved
	if r.CanModify(7) {
		t.Error("approved reviews are frozen for the author")
	}
}

func TestReviewHelpfulnessRatio(t *testing.T) {
	r := &Review{}
	if got := r.HelpfulnessRatio(); got != 0 {
		t.Errorf("ratio with no votes = %v, want 0", got)
	}
	r.HelpfulYes, r.HelpfulNo = 3, 1
	if got := r.HelpfulnessRatio(); got != 75 {
		t.Errorf("ratio = %v, want 75", got)
	}
}

func TestSummarizeRatings(t *testing.T) {
	s := SummarizeRatings([]int{5, 4, 4, 2})
	if s.Count != 4 {
		t.Errorf("count = %d, want 4", s.Count)
	}
	if s.Average != 3.8 { // 15/4 = 3.75 rounded to one decimal
		t.Errorf("average = %v, want 3.8", s.Average)
	}
	if s.Distribution[4] != 2 || s.Distribution[5] != 1 || s.Distribution[2] != 1 {
		t.Errorf("distribution = %v", s.Distribution)
	}
	if s.Distribution[3] != 0 || s.Distribution[1] != 0 {
		t.Errorf("unrated stars should be present with zero, got %v", s.Distribution)
	}
}

func TestSummarizeRatingsEmpty(t *testing.T) {
	s := SummarizeRatings(nil)
	if s.Average != 0 || s.Count != 0 {
		t.Errorf("empty summary = %+v, want zeroes", s)
	}
	// Out-of-range values are ignored rather than skewing the average.
	s = SummarizeRatings([]int{0, 9, 4})
	if s.Count != 1 || s.Average != 4 {
		t.Errorf("summary = %+v, want count 1 average 4", s)
	}
}

package pipeline

import (
	"testing"
	"time"

	"github.com/theirongolddev/fburn/internal/model"
)

func TestProgressForMonthlySaving(t *testing.T) {
	today := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)
	g := model.Goal{
		ID:            "g",
		TargetAmount:  dec("1000"),
		CurrentAmount: dec("200"),
		TargetDate:    time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		Status:        model.GoalActive,
	}
	p := ProgressFor(g, today)

	assertDec(t, "Remaining", p.Remaining, "800")
	assertDec(t, "Percentage", p.Percentage, "20")
	if p.DaysRemaining != 60 {
		t.Errorf("DaysRemaining = %d, want 60", p.DaysRemaining)
	}
	if p.RecommendedMonthlySaving == nil {
		t.Fatal("RecommendedMonthlySaving = nil, want 400")
	}
	assertDec(t, "RecommendedMonthlySaving", *p.RecommendedMonthlySaving, "400")
	if p.Tone != model.ToneLow {
		t.Errorf("Tone = %s, want low", p.Tone)
	}
}

func TestProgressForOvershootClamps(t *testing.T) {
	today := day(2026, 3, 1)
	g := model.Goal{
		TargetAmount:  dec("1000"),
		CurrentAmount: dec("1200"),
		TargetDate:    day(2026, 12, 1),
		Status:        model.GoalActive,
	}
	p := ProgressFor(g, today)
	assertDec(t, "Remaining", p.Remaining, "0")
	assertDec(t, "RawRemaining", p.RawRemaining, "-200")
	assertDec(t, "Percentage", p.Percentage, "120")
	if p.RecommendedMonthlySaving != nil {
		t.Errorf("RecommendedMonthlySaving = %s, want nil", p.RecommendedMonthlySaving)
	}
}

func TestProgressForZeroTarget(t *testing.T) {
	p := ProgressFor(model.Goal{TargetAmount: dec("0"), CurrentAmount: dec("50"), TargetDate: day(2026, 6, 1)}, day(2026, 3, 1))
	assertDec(t, "Percentage", p.Percentage, "0")
}

func TestProgressForOverdue(t *testing.T) {
	today := day(2026, 3, 10)
	g := model.Goal{
		TargetAmount:  dec("500"),
		CurrentAmount: dec("100"),
		TargetDate:    day(2026, 3, 7),
		Status:        model.GoalActive,
	}
	p := ProgressFor(g, today)
	if p.DaysRemaining != -3 {
		t.Errorf("DaysRemaining = %d, want -3", p.DaysRemaining)
	}
	if p.RecommendedMonthlySaving != nil {
		t.Error("overdue goal should have no recommendation")
	}

	g.TargetDate = today
	if p := ProgressFor(g, today); p.DaysRemaining != 0 || p.RecommendedMonthlySaving != nil {
		t.Errorf("due today: days = %d, rec = %v, want 0 and nil", p.DaysRemaining, p.RecommendedMonthlySaving)
	}
}

func TestProgressTone(t *testing.T) {
	today := day(2026, 1, 1)
	tests := []struct {
		status  model.GoalStatus
		current string
		want    model.ProgressTone
	}{
		{model.GoalActive, "0", model.ToneLow},
		{model.GoalActive, "24.99", model.ToneLow},
		{model.GoalActive, "25", model.ToneMedium},
		{model.GoalActive, "50", model.ToneHigh},
		{model.GoalActive, "75", model.ToneNearly},
		{model.GoalCompleted, "10", model.ToneSuccess},
		{model.GoalPaused, "90", model.ToneNeutral},
		{model.GoalCancelled, "90", model.ToneNeutral},
	}
	for _, tt := range tests {
		g := model.Goal{TargetAmount: dec("100"), CurrentAmount: dec(tt.current), TargetDate: day(2026, 6, 1), Status: tt.status}
		if got := ProgressFor(g, today).Tone; got != tt.want {
			t.Errorf("%s at %s: tone = %s, want %s", tt.status, tt.current, got, tt.want)
		}
	}
}

func TestSortGoalsStable(t *testing.T) {
	goals := []model.Goal{
		{ID: "1", Status: model.GoalActive, Priority: 2},
		{ID: "2", Status: model.GoalActive, Priority: 1},
		{ID: "3", Status: model.GoalCompleted, Priority: 1},
	}
	got := SortGoals(goals)
	want := []model.GoalID{"2", "1", "3"}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("order = %s,%s,%s, want 2,1,3", got[0].ID, got[1].ID, got[2].ID)
		}
	}
	if goals[0].ID != "1" {
		t.Error("SortGoals modified its input")
	}
}

func TestSortGoalsBuckets(t *testing.T) {
	goals := []model.Goal{
		{ID: "done", Status: model.GoalCompleted, Priority: 1},
		{ID: "paused-a", Status: model.GoalPaused, Priority: 3},
		{ID: "active", Status: model.GoalActive, Priority: 9},
		{ID: "cancelled", Status: model.GoalCancelled, Priority: 3},
		{ID: "paused-b", Status: model.GoalPaused, Priority: 1},
	}
	got := SortGoals(goals)
	want := []model.GoalID{"active", "paused-b", "paused-a", "cancelled", "done"}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("[%d] = %s, want %s", i, got[i].ID, want[i])
		}
	}
}

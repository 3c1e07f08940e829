package session

import (
	"testing"

	"github.com/claude/liftlog/internal/models"
)

func TestPack(t *testing.T) {
	rows := []Row{
		{
			ColExercise: "Bench Press",
			"weight_1":  "100", "reps_1": "8",
			"weight_2": "102.5", "reps_2": "6",
			"weight_3": nil, "reps_3": nil,
		},
		{
			ColExercise: "Overhead Press",
			"weight_1":  "60", "reps_1": "ten",
			"weight_2": nil, "reps_2": nil,
			"weight_3": nil, "reps_3": nil,
		},
	}
	key := Key{Person: "Sebko", Week: 7, Phase: 2, Split: "Push", Day: 1}

	records := Pack(rows, 3, key)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	bench := records[0]
	if bench.Exercise != "Bench Press" {
		t.Fatalf("records[0].Exercise = %q", bench.Exercise)
	}
	if bench.Person != "Sebko" || bench.Week != 7 || bench.Phase != 2 || bench.Split != "Push" || bench.Day != 1 {
		t.Errorf("key fields not carried: %+v", bench)
	}
	wantWeights := []models.Value{models.IntValue(100), models.DecimalValue(102.5), models.EmptyValue()}
	for i, w := range wantWeights {
		if bench.Weights[i] != w {
			t.Errorf("weights[%d] = %+v, want %+v", i, bench.Weights[i], w)
		}
	}
	wantReps := []models.Value{models.IntValue(8), models.IntValue(6), models.EmptyValue()}
	for i, r := range wantReps {
		if bench.Reps[i] != r {
			t.Errorf("reps[%d] = %+v, want %+v", i, bench.Reps[i], r)
		}
	}

	// Malformed reps input survives as text.
	ohp := records[1]
	if ohp.Reps[0] != models.TextValue("ten") {
		t.Errorf("ohp reps[0] = %+v, want text %q", ohp.Reps[0], "ten")
	}
}

func TestPackDropsUnloggedRows(t *testing.T) {
	rows := []Row{
		{ColExercise: "Squat", "weight_1": "140", "reps_1": "5"},
		{ColExercise: nil, "weight_1": "60", "reps_1": "12"},
		{ColExercise: "", "weight_1": nil, "reps_1": nil},
	}
	records := Pack(rows, 1, Key{Week: 1, Split: "Legs", Day: 1})
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].Exercise != "Squat" {
		t.Errorf("kept %q, want Squat", records[0].Exercise)
	}
}

func TestPackSharesSessionIdentity(t *testing.T) {
	rows := []Row{
		{ColExercise: "Deadlift"},
		{ColExercise: "Barbell Row"},
	}
	records := Pack(rows, 2, Key{Week: 2, Split: "Pull", Day: 1})
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].SessionID != records[1].SessionID {
		t.Error("records of one save should share a session ID")
	}
	if !records[0].SavedAt.Equal(records[1].SavedAt) {
		t.Error("records of one save should share a timestamp")
	}
}

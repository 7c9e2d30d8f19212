package selector

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Balaji0706816/nurseproject/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		snap models.ParticipantSnapshot
		want models.ConversationCategory
	}{
		{"missed day wins over high distress", models.ParticipantSnapshot{DistressScore: 9, MissedDay: true}, models.CategoryReengagement},
		{"missed day wins over end of week", models.ParticipantSnapshot{DistressScore: 2, MissedDay: true, EndOfWeek: true}, models.CategoryReengagement},
		{"end of week wins over high distress", models.ParticipantSnapshot{DistressScore: 10, EndOfWeek: true}, models.CategoryProgressReflection},
		{"exactly 8 is follow-up", models.ParticipantSnapshot{DistressScore: 8}, models.CategoryFollowUpReflection},
		{"10 is follow-up", models.ParticipantSnapshot{DistressScore: 10}, models.CategoryFollowUpReflection},
		{"just under 8 is reflective", models.ParticipantSnapshot{DistressScore: 7.99}, models.CategoryReflective},
		{"exactly 5 is reflective", models.ParticipantSnapshot{DistressScore: 5}, models.CategoryReflective},
		{"just under 5 is simple", models.ParticipantSnapshot{DistressScore: 4.5}, models.CategorySimple},
		{"zero is simple", models.ParticipantSnapshot{DistressScore: 0}, models.CategorySimple},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.snap); got != tt.want {
				t.Errorf("Classify(%+v) = %s, want %s", tt.snap, got, tt.want)
			}
		})
	}
}

func TestClassifyNeverProducesSupportiveOpenEnded(t *testing.T) {
	for _, missed := range []bool{false, true} {
		for _, eow := range []bool{false, true} {
			for score := 0.0; score <= 10; score += 0.5 {
				s := models.ParticipantSnapshot{DistressScore: score, MissedDay: missed, EndOfWeek: eow}
				if got := Classify(s); got == models.CategorySupportiveOpenEnded || !got.IsValid() {
					t.Fatalf("Classify(%+v) = %q", s, got)
				}
			}
		}
	}
}

func dietRow(id string, day models.ApplicableDay, cat models.ConversationCategory, d models.DistressCondition) models.ContentRow {
	return models.ContentRow{
		ID:       id,
		Domain:   "Diet",
		Category: cat,
		Distress: d,
		Day:      day,
		Prompt:   "prompt " + id,
	}
}

func TestSelectContentReflectiveExample(t *testing.T) {
	want := dietRow("diet-3-reflective", models.OnDay(3), models.CategoryReflective, models.RangeCondition(5, 7))
	lib := Rows{
		want,
		{ID: "sleep-1", Domain: "Sleep", Category: models.CategorySimple, Distress: models.RangeCondition(0, 10), Day: models.OnDay(1)},
	}
	snap := models.ParticipantSnapshot{Domain: "Diet", Day: 3, DistressScore: 6}

	got := SelectContent(snap, lib)
	if got.Category != models.CategoryReflective {
		t.Errorf("expected category Reflective, got %s", got.Category)
	}
	if !got.Found || got.Pass != PassStrict {
		t.Fatalf("expected strict match, got found=%v pass=%s", got.Found, got.Pass)
	}
	if diff := cmp.Diff(&want, got.Row); diff != "" {
		t.Errorf("selected row mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectContentMissedDayFallsBack(t *testing.T) {
	lib := Rows{
		dietRow("diet-3-reflective", models.OnDay(3), models.CategoryReflective, models.RangeCondition(5, 7)),
		{ID: "sleep-1", Domain: "Sleep", Category: models.CategorySimple, Distress: models.RangeCondition(0, 10), Day: models.OnDay(1)},
	}
	snap := models.ParticipantSnapshot{Domain: "Diet", Day: 3, DistressScore: 6, MissedDay: true}

	got := SelectContent(snap, lib)
	if got.Category != models.CategoryReengagement {
		t.Errorf("expected category Reengagement, got %s", got.Category)
	}
	if !got.Found || got.Pass != PassFallback {
		t.Fatalf("expected fallback match, got found=%v pass=%s", got.Found, got.Pass)
	}
	if got.RowID() != "diet-3-reflective" {
		t.Errorf("expected diet-3-reflective, got %s", got.RowID())
	}
}

func TestSelectContentMissedDayNoMatch(t *testing.T) {
	lib := Rows{
		dietRow("diet-3-low", models.OnDay(3), models.CategorySimple, models.RangeCondition(0, 4)),
		dietRow("diet-4", models.OnDay(4), models.CategoryReflective, models.RangeCondition(5, 7)),
	}
	snap := models.ParticipantSnapshot{Domain: "Diet", Day: 3, DistressScore: 6, MissedDay: true}

	got := SelectContent(snap, lib)
	if got.Found {
		t.Fatalf("expected no match, got %s", got.RowID())
	}
	if got.Pass != PassNone {
		t.Errorf("expected pass none, got %s", got.Pass)
	}
	if got.Row != nil {
		t.Errorf("no-match result must not carry a row, got %+v", got.Row)
	}
}

func TestNoMatchResultOmitsRow(t *testing.T) {
	got := SelectContent(models.ParticipantSnapshot{Domain: "Sleep", Day: 1, DistressScore: 2}, Rows{})
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), `"row"`) {
		t.Errorf("no-match result should not encode a row: %s", data)
	}
	if got.RowID() != "" {
		t.Errorf("RowID of a no-match = %q", got.RowID())
	}
}

func TestSelectMarkerRows(t *testing.T) {
	lib := Rows{
		dietRow("diet-reengage", models.ReplacementDay(), models.CategoryReengagement, models.MissedCondition()),
		dietRow("diet-summary", models.SummaryDay(), models.CategoryProgressReflection, models.EndOfWeekCondition()),
	}

	missed := SelectContent(models.ParticipantSnapshot{Domain: "Diet", Day: 5, DistressScore: 3, MissedDay: true}, lib)
	if !missed.Found || missed.RowID() != "diet-reengage" || missed.Pass != PassStrict {
		t.Errorf("missed day: got found=%v id=%q pass=%s", missed.Found, missed.RowID(), missed.Pass)
	}

	eow := SelectContent(models.ParticipantSnapshot{Domain: "Diet", Day: 7, DistressScore: 3, EndOfWeek: true}, lib)
	if !eow.Found || eow.RowID() != "diet-summary" || eow.Pass != PassStrict {
		t.Errorf("end of week: got found=%v id=%q pass=%s", eow.Found, eow.RowID(), eow.Pass)
	}

	// Marker rows are never fallback candidates.
	plain := SelectContent(models.ParticipantSnapshot{Domain: "Diet", Day: 7, DistressScore: 3}, lib)
	if plain.Found {
		t.Errorf("expected no match for plain snapshot, got %s", plain.RowID())
	}
}

func TestSelectMarkerNeedsFlag(t *testing.T) {
	// A missed marker row tagged with another category must still require MissedDay.
	lib := Rows{dietRow("diet-odd", models.OnDay(2), models.CategorySimple, models.MissedCondition())}
	got := SelectContent(models.ParticipantSnapshot{Domain: "Diet", Day: 2, DistressScore: 1}, lib)
	if got.Found {
		t.Errorf("marker row matched without the missed flag")
	}
}

func TestSelectLibraryOrderWins(t *testing.T) {
	lib := Rows{
		dietRow("diet-other-domain", models.OnDay(2), models.CategorySimple, models.RangeCondition(0, 4)),
		dietRow("diet-a", models.OnDay(2), models.CategorySimple, models.RangeCondition(0, 4)),
		dietRow("diet-b", models.ReplacementDay(), models.CategorySimple, models.RangeCondition(0, 10)),
	}
	lib[0].Domain = "Sleep"
	snap := models.ParticipantSnapshot{Domain: "Diet", Day: 2, DistressScore: 2}

	got := SelectContent(snap, lib)
	if got.RowID() != "diet-a" {
		t.Errorf("expected first matching row diet-a, got %s", got.RowID())
	}

	// Reversing the two candidates flips the winner.
	lib[1], lib[2] = lib[2], lib[1]
	if got := SelectContent(snap, lib); got.RowID() != "diet-b" {
		t.Errorf("expected diet-b after reorder, got %s", got.RowID())
	}
}

func TestSelectFallbackUsesSupportiveRows(t *testing.T) {
	lib := Rows{dietRow("diet-open", models.OnDay(4), models.CategorySupportiveOpenEnded, models.RangeCondition(0, 10))}
	got := SelectContent(models.ParticipantSnapshot{Domain: "Diet", Day: 4, DistressScore: 9}, lib)
	if !got.Found || got.Pass != PassFallback || got.RowID() != "diet-open" {
		t.Errorf("got found=%v pass=%s id=%q", got.Found, got.Pass, got.RowID())
	}
	if got.Category != models.CategoryFollowUpReflection {
		t.Errorf("result should report the classified category, got %s", got.Category)
	}
}

func TestSelectRangeBoundsInclusive(t *testing.T) {
	lib := Rows{dietRow("diet-band", models.OnDay(1), models.CategoryReflective, models.RangeCondition(5, 7))}
	for _, score := range []float64{5, 7} {
		if got := SelectContent(models.ParticipantSnapshot{Domain: "Diet", Day: 1, DistressScore: score}, lib); !got.Found {
			t.Errorf("score %v should match [5,7]", score)
		}
	}
}

func TestSelectOutOfRangeScoreDegradesToNoMatch(t *testing.T) {
	lib := Rows{dietRow("diet-all", models.OnDay(1), models.CategoryFollowUpReflection, models.RangeCondition(0, 10))}
	got := SelectContent(models.ParticipantSnapshot{Domain: "Diet", Day: 1, DistressScore: 12}, lib)
	if got.Found {
		t.Errorf("out-of-range score should not match, got %s", got.RowID())
	}
}

func TestSelectContentIdempotent(t *testing.T) {
	lib := Rows{
		dietRow("diet-1", models.OnDay(1), models.CategorySimple, models.RangeCondition(0, 4)),
		dietRow("diet-2", models.OnDay(1), models.CategoryReflective, models.RangeCondition(5, 7)),
	}
	snap := models.ParticipantSnapshot{Domain: "Diet", Day: 1, DistressScore: 6}
	first := SelectContent(snap, lib)
	second := SelectContent(snap, lib)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated selection differs (-first +second):\n%s", diff)
	}
}

func TestSelectReturnsDetachedRow(t *testing.T) {
	row := dietRow("diet-1", models.OnDay(1), models.CategorySimple, models.RangeCondition(0, 4))
	row.PossibleResponses = []string{"yes", "no"}
	lib := Rows{row}

	got := SelectContent(models.ParticipantSnapshot{Domain: "Diet", Day: 1, DistressScore: 1}, lib)
	if !got.Found {
		t.Fatal("expected a match")
	}
	got.Row.PossibleResponses[0] = "changed"
	if lib[0].PossibleResponses[0] != "yes" {
		t.Errorf("mutating the result changed the library row")
	}
}

func TestSelectContentConcurrent(t *testing.T) {
	lib := Rows{
		dietRow("diet-1", models.OnDay(1), models.CategorySimple, models.RangeCondition(0, 4)),
		dietRow("diet-2", models.OnDay(1), models.CategoryReflective, models.RangeCondition(5, 7)),
	}
	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			score := float64(i % 8)
			got := SelectContent(models.ParticipantSnapshot{Domain: "Diet", Day: 1, DistressScore: score}, lib)
			want := "diet-1"
			if score >= 5 {
				want = "diet-2"
			}
			if got.RowID() != want {
				errs <- got.RowID()
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for id := range errs {
		t.Errorf("unexpected concurrent selection %q", id)
	}
}

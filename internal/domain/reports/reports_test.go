package reports

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eval360/internal/domain/catalog"
	"eval360/internal/domain/periods"
)

var (
	jan = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	jun = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
)

func row(evaluatee, name, period string, start time.Time, category string, score int, weight float64) ScoreRow {
	return ScoreRow{EvaluateeID: evaluatee, EvaluateeName: name, PeriodID: period, PeriodName: "Avaliação " + start.Format("2006"),
		PeriodStart: start, Category: category, Score: score, Weight: weight}
}

func TestByCategoryUnweightedHeadline(t *testing.T) {
	rows := []ScoreRow{
		row("ana", "Ana", "p2", jun, catalog.CategoryObjectives, 3, 1),
		row("ana", "Ana", "p2", jun, catalog.CategoryBehavioral, 5, 1.2),
		row("ana", "Ana", "p2", jun, catalog.CategoryBehavioral, 4, 1),
		row("ana", "Ana", "p2", jun, catalog.CategoryBehavioral, 4, 1),
	}
	got := ByCategory(rows)
	require.Len(t, got, 2)

	assert.Equal(t, catalog.CategoryBehavioral, got[0].Category)
	assert.Equal(t, 4.33, got[0].Average)
	assert.Equal(t, 4.38, got[0].WeightedAverage)
	assert.Equal(t, 3, got[0].Count)
	assert.Equal(t, catalog.CategoryLabels[catalog.CategoryBehavioral], got[0].Label)

	assert.Equal(t, catalog.CategoryObjectives, got[1].Category)
	assert.Equal(t, 3.0, got[1].Average)
}

func TestByCategoryEmpty(t *testing.T) {
	assert.Empty(t, ByCategory(nil))
}

func TestTimelineOrdering(t *testing.T) {
	rows := []ScoreRow{
		row("ana", "Ana", "p2", jun, catalog.CategoryTechnical, 4, 1),
		row("ana", "Ana", "p2", jun, catalog.CategoryBehavioral, 2, 1),
		row("ana", "Ana", "p1", jan, catalog.CategoryObjectives, 5, 1),
		row("ana", "Ana", "p1", jan, catalog.CategoryBehavioral, 3, 1),
	}
	got := Timeline(rows)
	require.Len(t, got, 4)

	var order []string
	for _, g := range got {
		order = append(order, g.PeriodID+"/"+g.Category)
	}
	assert.Equal(t, []string{
		"p1/" + catalog.CategoryBehavioral,
		"p1/" + catalog.CategoryObjectives,
		"p2/" + catalog.CategoryBehavioral,
		"p2/" + catalog.CategoryTechnical,
	}, order)
	assert.Equal(t, "Avaliação 2025", got[0].PeriodName)
}

func TestPivotByEvaluatee(t *testing.T) {
	rows := []ScoreRow{
		row("u2", "Bruno", "p2", jun, catalog.CategoryTechnical, 4, 1),
		row("u1", "Ana", "p2", jun, catalog.CategoryBehavioral, 5, 1),
		row("u1", "Ana", "p2", jun, catalog.CategoryBehavioral, 2, 1),
		row("u2", "Bruno", "p2", jun, catalog.CategoryBehavioral, 3, 1),
	}
	pivot := PivotByEvaluatee(rows)

	assert.Equal(t, []string{catalog.CategoryBehavioral, catalog.CategoryTechnical}, pivot.Categories)
	require.Len(t, pivot.Rows, 2)
	assert.Equal(t, "Ana", pivot.Rows[0].EvaluateeName)
	assert.Equal(t, 3.5, pivot.Rows[0].Scores[catalog.CategoryBehavioral].Average)
	_, hasTech := pivot.Rows[0].Scores[catalog.CategoryTechnical]
	assert.False(t, hasTech)
	assert.Equal(t, "Bruno", pivot.Rows[1].EvaluateeName)
	assert.Equal(t, 4.0, pivot.Rows[1].Scores[catalog.CategoryTechnical].Average)
}

type memScores []ScoreRow

func (m memScores) Scores(_ context.Context, f ScoreFilter) ([]ScoreRow, error) {
	var out []ScoreRow
	for _, r := range m {
		if f.PeriodID != "" && r.PeriodID != f.PeriodID {
			continue
		}
		if f.EvaluateeID != "" && r.EvaluateeID != f.EvaluateeID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type fixedPeriod struct {
	period periods.Period
	err    error
}

func (f fixedPeriod) CurrentPeriod(context.Context) (periods.Period, error) {
	return f.period, f.err
}

func fixtureScores() memScores {
	return memScores{
		row("u1", "Ana", "p1", jan, catalog.CategoryBehavioral, 2, 1),
		row("u1", "Ana", "p2", jun, catalog.CategoryBehavioral, 4, 1),
		row("u1", "Ana", "p2", jun, catalog.CategoryObjectives, 5, 1),
		row("u2", "Bruno", "p2", jun, catalog.CategoryBehavioral, 1, 1),
	}
}

func TestServiceScopesToCurrentPeriodAndUser(t *testing.T) {
	svc := NewService(fixtureScores(), fixedPeriod{period: periods.Period{ID: "p2", Name: "Avaliação 2026", StartDate: jun, EndDate: jun}})
	ctx := context.Background()

	period, scores, err := svc.MyScores(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "p2", period.ID)
	require.Len(t, scores, 2)
	assert.Equal(t, 4.0, scores[0].Average)

	history, err := svc.History(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, history, 3)

	_, pivot, err := svc.OrgPivot(ctx)
	require.NoError(t, err)
	assert.Len(t, pivot.Rows, 2)
}

func TestServiceWithoutActivePeriod(t *testing.T) {
	svc := NewService(fixtureScores(), fixedPeriod{err: periods.ErrNoActivePeriod})
	_, _, err := svc.MyScores(context.Background(), "u1")
	assert.ErrorIs(t, err, periods.ErrNoActivePeriod)
	_, _, err = svc.OrgPivot(context.Background())
	assert.ErrorIs(t, err, periods.ErrNoActivePeriod)
}

func TestWritePDF(t *testing.T) {
	svc := NewService(fixtureScores(), fixedPeriod{period: periods.Period{ID: "p2", Name: "Avaliação 2026", StartDate: jun, EndDate: jun}})
	report, err := svc.PersonalReport(context.Background(), "u1", "Ana Sousa")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, report))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWritePDFWithoutScores(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, Report{UserName: "Nicole", Period: periods.Period{Name: "Avaliação 2026", StartDate: jun, EndDate: jun}}))
	assert.NotZero(t, buf.Len())
}

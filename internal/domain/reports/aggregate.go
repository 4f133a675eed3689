package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"eval360/internal/domain/catalog"
)

const scorePlaces = 2

type accumulator struct {
	sum         decimal.Decimal
	weightedSum decimal.Decimal
	weightTotal decimal.Decimal
	count       int
}

func (a *accumulator) add(score int, weight float64) {
	s := decimal.NewFromInt(int64(score))
	w := decimal.NewFromFloat(weight)
	a.sum = a.sum.Add(s)
	a.weightedSum = a.weightedSum.Add(s.Mul(w))
	a.weightTotal = a.weightTotal.Add(w)
	a.count++
}

// score keeps the headline average unweighted; the weighted mean is
// reported next to it.
func (a *accumulator) score(category string) CategoryScore {
	out := CategoryScore{Category: category, Label: catalog.CategoryLabels[category], Count: a.count}
	if a.count == 0 {
		return out
	}
	out.Average = a.sum.Div(decimal.NewFromInt(int64(a.count))).Round(scorePlaces).InexactFloat64()
	if a.weightTotal.IsPositive() {
		out.WeightedAverage = a.weightedSum.Div(a.weightTotal).Round(scorePlaces).InexactFloat64()
	}
	return out
}

func sortCategories(categories []string) {
	sort.SliceStable(categories, func(i, j int) bool {
		ri, rj := catalog.CategoryRank(categories[i]), catalog.CategoryRank(categories[j])
		if ri != rj {
			return ri < rj
		}
		return categories[i] < categories[j]
	})
}

// ByCategory averages rows per category in display order.
func ByCategory(rows []ScoreRow) []CategoryScore {
	acc := map[string]*accumulator{}
	for _, r := range rows {
		if acc[r.Category] == nil {
			acc[r.Category] = &accumulator{}
		}
		acc[r.Category].add(r.Score, r.Weight)
	}
	categories := make([]string, 0, len(acc))
	for c := range acc {
		categories = append(categories, c)
	}
	sortCategories(categories)

	out := make([]CategoryScore, 0, len(categories))
	for _, c := range categories {
		out = append(out, acc[c].score(c))
	}
	return out
}

// Timeline groups by period and category, ordered by period start date,
// then period id, then category.
func Timeline(rows []ScoreRow) []PeriodScore {
	type key struct{ period, category string }
	acc := map[key]*accumulator{}
	meta := map[string]ScoreRow{}
	for _, r := range rows {
		k := key{r.PeriodID, r.Category}
		if acc[k] == nil {
			acc[k] = &accumulator{}
		}
		acc[k].add(r.Score, r.Weight)
		meta[r.PeriodID] = r
	}

	out := make([]PeriodScore, 0, len(acc))
	for k, a := range acc {
		m := meta[k.period]
		out = append(out, PeriodScore{
			PeriodID:      k.period,
			PeriodName:    m.PeriodName,
			PeriodStart:   m.PeriodStart,
			CategoryScore: a.score(k.category),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PeriodStart.Equal(out[j].PeriodStart) {
			return out[i].PeriodStart.Before(out[j].PeriodStart)
		}
		if out[i].PeriodID != out[j].PeriodID {
			return out[i].PeriodID < out[j].PeriodID
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// PivotByEvaluatee builds one row per evaluatee ordered by name, with a
// cell per category that has scores.
func PivotByEvaluatee(rows []ScoreRow) Pivot {
	type key struct{ evaluatee, category string }
	acc := map[key]*accumulator{}
	names := map[string]string{}
	seenCategory := map[string]struct{}{}
	for _, r := range rows {
		k := key{r.EvaluateeID, r.Category}
		if acc[k] == nil {
			acc[k] = &accumulator{}
		}
		acc[k].add(r.Score, r.Weight)
		names[r.EvaluateeID] = r.EvaluateeName
		seenCategory[r.Category] = struct{}{}
	}

	pivot := Pivot{Categories: make([]string, 0, len(seenCategory)), Rows: make([]PivotRow, 0, len(names))}
	for c := range seenCategory {
		pivot.Categories = append(pivot.Categories, c)
	}
	sortCategories(pivot.Categories)

	byID := map[string]*PivotRow{}
	for k, a := range acc {
		row := byID[k.evaluatee]
		if row == nil {
			row = &PivotRow{EvaluateeID: k.evaluatee, EvaluateeName: names[k.evaluatee], Scores: map[string]CategoryScore{}}
			byID[k.evaluatee] = row
		}
		row.Scores[k.category] = a.score(k.category)
	}
	for _, row := range byID {
		pivot.Rows = append(pivot.Rows, *row)
	}
	sort.Slice(pivot.Rows, func(i, j int) bool {
		if pivot.Rows[i].EvaluateeName != pivot.Rows[j].EvaluateeName {
			return pivot.Rows[i].EvaluateeName < pivot.Rows[j].EvaluateeName
		}
		return pivot.Rows[i].EvaluateeID < pivot.Rows[j].EvaluateeID
	})
	return pivot
}

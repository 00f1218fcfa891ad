package services

import (
	"sort"
	"strconv"
	"strings"

	"bookshop-insights/models"
)

// columns resolves header names to positions, failing on the first one absent.
func columns(t *models.Table, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		pos, err := t.ColumnIndex(n)
		if err != nil {
			return nil, err
		}
		idx[i] = pos
	}
	return idx, nil
}

// countBy groups rows on the non-null values of keyCol. When countCol is
// non-negative only rows with a value in that column are counted, but the
// group still appears with whatever count it reaches. Rows shorter than the
// header are treated as null in the missing cells.
func countBy(t *models.Table, keyCol, countCol int) map[string]int {
	counts := make(map[string]int)
	for _, row := range t.Rows {
		key, ok := cell(row, keyCol)
		if !ok {
			continue
		}
		if countCol >= 0 {
			if _, ok := cell(row, countCol); !ok {
				counts[key] += 0
				continue
			}
		}
		counts[key]++
	}
	return counts
}

func cell(row []models.Cell, i int) (string, bool) {
	if i >= len(row) || !row[i].Valid {
		return "", false
	}
	return row[i].String, true
}

// ascending turns a count map into pairs ordered by key.
func ascending(counts map[string]int) []models.KeyCount {
	out := make([]models.KeyCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.KeyCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return compareKeys(out[i].Key, out[j].Key) < 0 })
	return out
}

// largest keeps the n highest counts. The input order (ascending keys) is the
// tie-break, so equal counts rank by key.
func largest(pairs []models.KeyCount, n int) []models.KeyCount {
	ranked := make([]models.KeyCount, len(pairs))
	copy(ranked, pairs)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// sortedKeys returns the keys of a set in compareKeys order.
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return compareKeys(keys[i], keys[j]) < 0 })
	return keys
}

// compareKeys orders numeric keys by value and before any text key; text keys
// compare lexically.
func compareKeys(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

package services

import (
	"math"

	"bookshop-insights/models"
)

// Recipe ids, also used as chart file names.
const (
	RecipeBooksPerYear = "books-per-year"
	RecipeTopAuthors   = "top-authors"
	RecipeLanguages    = "languages"
	RecipePublishers   = "publishers"
	RecipeMissingISBN  = "missing-isbn"
	RecipeYearLanguage = "year-language"
)

const (
	topAuthorsLimit = 5
	publisherLimit  = 15
)

// AnalyzeFunc computes a summary and its chart from a table snapshot.
// Implementations never modify the table.
type AnalyzeFunc func(t *models.Table, f models.Fields) (*models.Summary, *models.ChartSpec, error)

// Recipe is one entry of the analysis menu.
type Recipe struct {
	ID      string
	Label   string
	Analyze AnalyzeFunc
}

// Recipes lists the analyses in menu order.
var Recipes = []Recipe{
	{ID: RecipeBooksPerYear, Label: "Books per Year", Analyze: BooksPerYear},
	{ID: RecipeTopAuthors, Label: "Top 5 Authors", Analyze: TopAuthors},
	{ID: RecipeLanguages, Label: "Books by Language", Analyze: LanguageDistribution},
	{ID: RecipePublishers, Label: "Books by Publisher", Analyze: PublisherRanking},
	{ID: RecipeMissingISBN, Label: "Missing ISBN Analysis", Analyze: MissingISBN},
	{ID: RecipeYearLanguage, Label: "Yearly Books by Language", Analyze: YearByLanguage},
}

// BooksPerYear counts titled books for each publication year.
func BooksPerYear(t *models.Table, f models.Fields) (*models.Summary, *models.ChartSpec, error) {
	idx, err := columns(t, f.Year, f.Title)
	if err != nil {
		return nil, nil, err
	}
	if t.Len() == 0 {
		return nil, nil, &models.EmptyDatasetError{Recipe: RecipeBooksPerYear}
	}

	counts := ascending(countBy(t, idx[0], idx[1]))
	summary := &models.Summary{
		Recipe:   RecipeBooksPerYear,
		Title:    "Books Published Per Year",
		KeyLabel: f.Year,
		Counts:   counts,
	}
	chart := &models.ChartSpec{
		Kind:   models.ChartLine,
		Title:  "Books Published Per Year",
		XLabel: "Year",
		YLabel: "Books",
		Series: []models.ChartSeries{pointsFrom("Books", counts)},
	}
	return summary, chart, nil
}

// TopAuthors ranks the five authors with the most rows.
func TopAuthors(t *models.Table, f models.Fields) (*models.Summary, *models.ChartSpec, error) {
	return ranking(t, f.Author, RecipeTopAuthors, "Top 5 Authors", topAuthorsLimit, func(counts []models.KeyCount) *models.ChartSpec {
		return &models.ChartSpec{
			Kind:   models.ChartBarH,
			Title:  "Top 5 Authors",
			XLabel: "Books",
			YLabel: "Author",
			Series: []models.ChartSeries{pointsFrom("Books", counts)},
		}
	})
}

// PublisherRanking ranks the fifteen publishers with the most rows.
func PublisherRanking(t *models.Table, f models.Fields) (*models.Summary, *models.ChartSpec, error) {
	return ranking(t, f.Publisher, RecipePublishers, "Top Publishers", publisherLimit, func(counts []models.KeyCount) *models.ChartSpec {
		return &models.ChartSpec{
			Kind:         models.ChartBar,
			Title:        "Top Publishers",
			XLabel:       "Publisher",
			YLabel:       "Books",
			RotateLabels: true,
			Series:       []models.ChartSeries{pointsFrom("Books", counts)},
		}
	})
}

func ranking(t *models.Table, column, recipe, title string, limit int, chart func([]models.KeyCount) *models.ChartSpec) (*models.Summary, *models.ChartSpec, error) {
	idx, err := columns(t, column)
	if err != nil {
		return nil, nil, err
	}
	if t.Len() == 0 {
		return nil, nil, &models.EmptyDatasetError{Recipe: recipe}
	}

	counts := largest(ascending(countBy(t, idx[0], -1)), limit)
	summary := &models.Summary{
		Recipe:   recipe,
		Title:    title,
		KeyLabel: column,
		Counts:   counts,
	}
	return summary, chart(counts), nil
}

// LanguageDistribution counts rows per language.
func LanguageDistribution(t *models.Table, f models.Fields) (*models.Summary, *models.ChartSpec, error) {
	idx, err := columns(t, f.Language)
	if err != nil {
		return nil, nil, err
	}
	if t.Len() == 0 {
		return nil, nil, &models.EmptyDatasetError{Recipe: RecipeLanguages}
	}

	counts := ascending(countBy(t, idx[0], -1))
	summary := &models.Summary{
		Recipe:   RecipeLanguages,
		Title:    "Books by Language",
		KeyLabel: f.Language,
		Counts:   counts,
	}
	chart := &models.ChartSpec{
		Kind:   models.ChartBar,
		Title:  "Books by Language",
		XLabel: "Language",
		YLabel: "Books",
		Series: []models.ChartSeries{pointsFrom("Books", counts)},
	}
	return summary, chart, nil
}

// MissingISBN splits the table into rows with and without an ISBN. An empty
// table yields a NoData summary and no chart rather than a division by zero.
func MissingISBN(t *models.Table, f models.Fields) (*models.Summary, *models.ChartSpec, error) {
	idx, err := columns(t, f.ISBN)
	if err != nil {
		return nil, nil, err
	}

	stats := &models.ISBNStats{Total: t.Len()}
	for _, row := range t.Rows {
		if _, ok := cell(row, idx[0]); ok {
			stats.Present++
		} else {
			stats.Missing++
		}
	}

	summary := &models.Summary{
		Recipe:   RecipeMissingISBN,
		Title:    "ISBN Availability",
		KeyLabel: f.ISBN,
		ISBN:     stats,
	}
	if stats.Total == 0 {
		stats.NoData = true
		return summary, nil, nil
	}

	stats.Percent = round2(float64(stats.Missing) / float64(stats.Total) * 100)
	chart := &models.ChartSpec{
		Kind:  models.ChartPie,
		Title: "ISBN Availability",
		Series: []models.ChartSeries{{
			Name: "ISBN",
			Points: []models.ChartPoint{
				{Label: "Missing", Value: float64(stats.Missing)},
				{Label: "Present", Value: float64(stats.Present)},
			},
		}},
	}
	return summary, chart, nil
}

// YearByLanguage pivots row counts into a year x language grid. Pairs that
// never occur are present with a zero count.
func YearByLanguage(t *models.Table, f models.Fields) (*models.Summary, *models.ChartSpec, error) {
	idx, err := columns(t, f.Year, f.Language)
	if err != nil {
		return nil, nil, err
	}
	if t.Len() == 0 {
		return nil, nil, &models.EmptyDatasetError{Recipe: RecipeYearLanguage}
	}

	type pair struct{ year, lang string }
	counts := make(map[pair]int)
	years := make(map[string]struct{})
	langs := make(map[string]struct{})
	for _, row := range t.Rows {
		year, ok := cell(row, idx[0])
		if !ok {
			continue
		}
		lang, ok := cell(row, idx[1])
		if !ok {
			continue
		}
		counts[pair{year, lang}]++
		years[year] = struct{}{}
		langs[lang] = struct{}{}
	}

	grid := &models.Grid{
		RowLabel: f.Year,
		ColLabel: f.Language,
		RowKeys:  sortedKeys(years),
		ColKeys:  sortedKeys(langs),
	}
	grid.Cells = make([][]int, len(grid.RowKeys))
	for i, y := range grid.RowKeys {
		grid.Cells[i] = make([]int, len(grid.ColKeys))
		for j, l := range grid.ColKeys {
			grid.Cells[i][j] = counts[pair{y, l}]
		}
	}

	series := make([]models.ChartSeries, len(grid.ColKeys))
	for j, l := range grid.ColKeys {
		points := make([]models.ChartPoint, len(grid.RowKeys))
		for i, y := range grid.RowKeys {
			points[i] = models.ChartPoint{Label: y, Value: float64(grid.Cells[i][j])}
		}
		series[j] = models.ChartSeries{Name: l, Points: points}
	}

	summary := &models.Summary{
		Recipe:   RecipeYearLanguage,
		Title:    "Books Per Year by Language",
		KeyLabel: f.Year,
		Grid:     grid,
	}
	chart := &models.ChartSpec{
		Kind:   models.ChartMultiLine,
		Title:  "Books Per Year by Language",
		XLabel: "Year",
		YLabel: "Books",
		Series: series,
	}
	return summary, chart, nil
}

func pointsFrom(name string, counts []models.KeyCount) models.ChartSeries {
	points := make([]models.ChartPoint, len(counts))
	for i, c := range counts {
		points[i] = models.ChartPoint{Label: c.Key, Value: float64(c.Count)}
	}
	return models.ChartSeries{Name: name, Points: points}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

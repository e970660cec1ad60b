package catalog

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cine-rag-api/internal/domain/entity"
)

func sampleMovie() *entity.Movie {
	return &entity.Movie{
		ID:               "603",
		Title:            "黑客帝国",
		Tagline:          "Welcome to the Real World",
		Overview:         "一名程序员发现世界是虚拟的。",
		OriginalLanguage: "en",
		ReleaseDate:      "1999-03-30",
		VoteAverage:      8.7,
		Runtime:          136,
		Genres: []entity.GenreRef{
			{ID: 28, Name: "动作"},
			{ID: 878, Name: "科幻"},
		},
		Casts: []entity.CastRef{
			{Name: "Keanu Reeves"},
			{Name: "Carrie-Anne Moss"},
		},
	}
}

func TestProject_OmitsEmptyFields(t *testing.T) {
	p := NewProjector()

	movie := sampleMovie()
	movie.Tagline = ""
	movie.Runtime = 0
	movie.Casts = nil

	text := p.Project(movie)

	for _, line := range strings.Split(text, "\n") {
		assert.False(t, strings.HasSuffix(line, ": "),
			"空字段不应产出空标签行: %q", line)
	}
	assert.NotContains(t, text, "tagline:")
	assert.NotContains(t, text, "runtime:")
	assert.NotContains(t, text, "casts:")
}

func TestProject_DuplicatesOverview(t *testing.T) {
	p := NewProjector()
	text := p.Project(sampleMovie())

	assert.Contains(t, text, "overview: 一名程序员发现世界是虚拟的。")
	assert.Contains(t, text, "full_overview: 一名程序员发现世界是虚拟的。")
}

func TestProject_StableFieldOrder(t *testing.T) {
	p := NewProjector()
	movie := sampleMovie()

	first := p.Project(movie)
	second := p.Project(movie)
	assert.Equal(t, first, second)

	lines := strings.Split(first, "\n")
	require.Equal(t, "[movie#603]", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "title: "))
}

func TestProject_GenreFallsBackToID(t *testing.T) {
	p := NewProjector()
	movie := sampleMovie()
	movie.Genres = []entity.GenreRef{
		{ID: 28, Name: "动作"},
		{ID: 878},
	}

	text := p.Project(movie)
	assert.Contains(t, text, "genres: 动作, 878")
}

func TestProject_CapsCastList(t *testing.T) {
	p := NewProjector()
	movie := sampleMovie()

	movie.Casts = nil
	for i := 0; i < 30; i++ {
		movie.Casts = append(movie.Casts, entity.CastRef{Name: fmt.Sprintf("演员%02d", i)})
	}

	text := p.Project(movie)
	assert.Contains(t, text, "演员14")
	assert.NotContains(t, text, "演员15")
}

func TestProject_DropsNamelessCast(t *testing.T) {
	p := NewProjector()
	movie := sampleMovie()
	movie.Casts = []entity.CastRef{
		{Name: "Keanu Reeves"},
		{ProfilePath: "/x.jpg"},
		{Name: "Carrie-Anne Moss"},
	}

	text := p.Project(movie)
	assert.Contains(t, text, "casts: Keanu Reeves, Carrie-Anne Moss")
}

func TestProjectWithShowtimes_AscendingWithPrice(t *testing.T) {
	p := NewProjector()
	movie := sampleMovie()

	shows := []*entity.Show{
		{ShowDateTime: time.Date(2026, 9, 2, 14, 30, 0, 0, time.Local), ShowPrice: 45},
		{ShowDateTime: time.Date(2026, 9, 2, 19, 0, 0, 0, time.Local), ShowPrice: 60},
	}

	text := p.ProjectWithShowtimes(movie, shows)
	require.Contains(t, text, "showtimes:")

	first := strings.Index(text, "2026-09-02 14:30")
	second := strings.Index(text, "2026-09-02 19:00")
	require.Greater(t, first, 0)
	require.Greater(t, second, first)
	assert.Contains(t, text, "票价45元")
	assert.Contains(t, text, "票价60元")
}

func TestProjectWithShowtimes_EmptyEmitsSentinel(t *testing.T) {
	p := NewProjector()

	text := p.ProjectWithShowtimes(sampleMovie(), nil)
	assert.Contains(t, text, "暂无未来场次。")
}

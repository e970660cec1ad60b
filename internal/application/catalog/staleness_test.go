package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cine-rag-api/internal/domain/entity"
)

func ptrString(s string) *string    { return &s }
func ptrFloat64(f float64) *float64 { return &f }

func TestNeedsReembed_PriceOnlyPatch(t *testing.T) {
	existing := sampleMovie()
	patch := &entity.MoviePatch{ShowPrice: ptrFloat64(12)}

	assert.False(t, NeedsReembed(existing, patch))
}

func TestNeedsReembed_RuntimeAndPosterIgnored(t *testing.T) {
	existing := sampleMovie()
	runtime := 150
	patch := &entity.MoviePatch{
		Runtime:    &runtime,
		PosterPath: ptrString("/new.jpg"),
	}

	assert.False(t, NeedsReembed(existing, patch))
}

func TestNeedsReembed_TitleChange(t *testing.T) {
	existing := sampleMovie()

	assert.True(t, NeedsReembed(existing, &entity.MoviePatch{Title: ptrString("新标题")}))
	assert.False(t, NeedsReembed(existing, &entity.MoviePatch{Title: ptrString(existing.Title)}))
}

func TestNeedsReembed_SemanticFields(t *testing.T) {
	existing := sampleMovie()

	assert.True(t, NeedsReembed(existing, &entity.MoviePatch{Overview: ptrString("新简介")}))
	assert.True(t, NeedsReembed(existing, &entity.MoviePatch{Tagline: ptrString("新口号")}))
	assert.True(t, NeedsReembed(existing, &entity.MoviePatch{OriginalLanguage: ptrString("ja")}))
	assert.True(t, NeedsReembed(existing, &entity.MoviePatch{ReleaseDate: ptrString("2001-01-01")}))
	assert.True(t, NeedsReembed(existing, &entity.MoviePatch{VoteAverage: ptrFloat64(9.1)}))
	assert.False(t, NeedsReembed(existing, &entity.MoviePatch{VoteAverage: ptrFloat64(existing.VoteAverage)}))
}

func TestNeedsReembed_GenreReorderIsStale(t *testing.T) {
	existing := sampleMovie()
	reordered := []entity.GenreRef{existing.Genres[1], existing.Genres[0]}

	// 集合相同但顺序不同：顺序影响向量化文本，视为语义变化
	assert.True(t, NeedsReembed(existing, &entity.MoviePatch{Genres: &reordered}))

	same := append([]entity.GenreRef(nil), existing.Genres...)
	assert.False(t, NeedsReembed(existing, &entity.MoviePatch{Genres: &same}))
}

func TestNeedsReembed_CastReorderIsStale(t *testing.T) {
	existing := sampleMovie()
	reordered := []entity.CastRef{existing.Casts[1], existing.Casts[0]}

	assert.True(t, NeedsReembed(existing, &entity.MoviePatch{Casts: &reordered}))
}

func TestNeedsReembed_NilOrEmptyPatch(t *testing.T) {
	existing := sampleMovie()

	assert.False(t, NeedsReembed(existing, nil))
	assert.False(t, NeedsReembed(existing, &entity.MoviePatch{}))
}

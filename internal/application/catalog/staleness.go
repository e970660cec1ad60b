package catalog

import (
	"cine-rag-api/internal/domain/entity"
)

// NeedsReembed 判断补丁是否改变影片的语义内容
// 语义字段集合固定为 {title, overview, tagline, language, release_date, vote_average}
// 加上 genres 与 casts 两个列表。列表按出现顺序以管道符连接后做字符串比较，
// 因此重排即视为语义变化：向量化文本的顺序会影响向量本身。
// 价格、场次等字段永远不会触发重新向量化。
func NeedsReembed(existing *entity.Movie, patch *entity.MoviePatch) bool {
	if patch == nil {
		return false
	}

	if patch.Title != nil && *patch.Title != existing.Title {
		return true
	}
	if patch.Overview != nil && *patch.Overview != existing.Overview {
		return true
	}
	if patch.Tagline != nil && *patch.Tagline != existing.Tagline {
		return true
	}
	if patch.OriginalLanguage != nil && *patch.OriginalLanguage != existing.OriginalLanguage {
		return true
	}
	if patch.ReleaseDate != nil && *patch.ReleaseDate != existing.ReleaseDate {
		return true
	}
	if patch.VoteAverage != nil && formatFloat(*patch.VoteAverage) != formatFloat(existing.VoteAverage) {
		return true
	}
	if patch.Genres != nil && joinGenres(*patch.Genres, "|") != joinGenres(existing.Genres, "|") {
		return true
	}
	if patch.Casts != nil && joinCasts(*patch.Casts, "|", 0) != joinCasts(existing.Casts, "|", 0) {
		return true
	}
	return false
}

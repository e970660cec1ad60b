// Package catalog 实现影片目录与向量生命周期管理
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"cine-rag-api/internal/domain/entity"
)

const (
	// 向量化文本中演员表上限
	embedCastLimit = 15
	// 生成上下文中演员表上限
	contextCastLimit = 8

	noUpcomingShowtimes = "暂无未来场次。"
)

// Projector 将影片字段投影为规范文本
// 同一输入永远产出同一文本，字段顺序固定，空字段整行省略。
type Projector struct{}

// NewProjector 创建投影器
func NewProjector() *Projector {
	return &Projector{}
}

// Project 生成向量化输入文本
// overview 以两个标签重复出现，使向量偏向剧情语义。
func (p *Projector) Project(m *entity.Movie) string {
	return p.project(m, embedCastLimit)
}

// ProjectWithShowtimes 生成带场次块的上下文文本
func (p *Projector) ProjectWithShowtimes(m *entity.Movie, shows []*entity.Show) string {
	var b strings.Builder
	b.WriteString(p.project(m, contextCastLimit))
	b.WriteString("\nshowtimes:\n")

	if len(shows) == 0 {
		b.WriteString(noUpcomingShowtimes)
		return b.String()
	}

	lines := make([]string, 0, len(shows))
	for _, show := range shows {
		lines = append(lines, fmt.Sprintf("• %s %s 票价%s元",
			show.ShowDateTime.Format("2006-01-02"),
			show.ShowDateTime.Format("15:04"),
			formatFloat(show.ShowPrice),
		))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func (p *Projector) project(m *entity.Movie, castLimit int) string {
	lines := make([]string, 0, 12)
	lines = append(lines, fmt.Sprintf("[movie#%s]", m.ID))

	appendLine := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}

	appendLine("title", m.Title)
	appendLine("tagline", m.Tagline)
	appendLine("overview", m.Overview)
	appendLine("full_overview", m.Overview)
	if m.VoteAverage != 0 {
		appendLine("vote_average", formatFloat(m.VoteAverage))
	}
	appendLine("release_date", m.ReleaseDate)
	appendLine("language", m.OriginalLanguage)
	if m.Runtime > 0 {
		appendLine("runtime", strconv.Itoa(m.Runtime))
	}
	appendLine("genres", joinGenres(m.Genres, ", "))
	appendLine("casts", joinCasts(m.Casts, ", ", castLimit))

	return strings.Join(lines, "\n")
}

// joinGenres 类型列表连接，名称缺失时退回 id
func joinGenres(genres []entity.GenreRef, sep string) string {
	labels := make([]string, 0, len(genres))
	for _, g := range genres {
		if label := g.Label(); label != "" {
			labels = append(labels, label)
		}
	}
	return strings.Join(labels, sep)
}

// joinCasts 演员列表连接，无名条目丢弃，limit <= 0 表示不截断
func joinCasts(casts []entity.CastRef, sep string, limit int) string {
	if limit > 0 && len(casts) > limit {
		casts = casts[:limit]
	}
	names := make([]string, 0, len(casts))
	for _, c := range casts {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return strings.Join(names, sep)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Package entity 定义领域实体
package entity

import (
	"time"
)

// Show 场次条目，归属唯一一部电影
// 检索核心只读取未来场次用于装饰上下文，从不因场次变化触发重嵌入。
type Show struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MovieID      string    `json:"movie_id" gorm:"type:text;index;not null"`
	ShowDateTime time.Time `json:"show_datetime" gorm:"not null;index"`
	ShowPrice    float64   `json:"show_price" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Show) TableName() string {
	return "shows"
}

// Package repository 定义数据访问层接口
package repository

import (
	"context"
)

// TxKey 上下文中事务的键
type TxKey struct{}

// Transactor 事务执行接口
type Transactor interface {
	// WithTransaction 在事务中执行操作
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

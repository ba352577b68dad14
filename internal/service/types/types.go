// Package types 定义服务间共享的类型和错误
package types

import "errors"

// ErrDependencyUnavailable 数据库等下游依赖不可用
var ErrDependencyUnavailable = errors.New("dependency unavailable")

// Page 分页参数
type Page struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// Normalize 修正非法分页参数，size 上限 100
func (p Page) Normalize() Page {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Size <= 0 || p.Size > 100 {
		p.Size = 20
	}
	return p
}

// Offset 数据库偏移量
func (p Page) Offset() int {
	return (p.Page - 1) * p.Size
}

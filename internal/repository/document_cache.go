package repository

import (
	"context"
	"sync"
)

// DocumentSource 按名称读取原始文档
type DocumentSource interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// documentCache 首次成功读取后缓存解析结果；失败不缓存，下次请求重试
type documentCache[T any] struct {
	source DocumentSource
	name   string
	parse  func([]byte) (T, error)

	mu     sync.Mutex
	value  T
	loaded bool
}

func (c *documentCache[T]) get(ctx context.Context) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.value, nil
	}

	data, err := c.source.Fetch(ctx, c.name)
	if err != nil {
		var zero T
		return zero, err
	}
	v, err := c.parse(data)
	if err != nil {
		var zero T
		return zero, err
	}
	c.value, c.loaded = v, true
	return v, nil
}

func (c *documentCache[T]) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value, c.loaded = zero, false
}

package storage

import "errors"

// ErrUnavailable 表示当前运行环境没有可用的持久化存储
// 文档仓储会在边界处吸收该错误并退化为空集合, 不向调用方传播
var ErrUnavailable = errors.New("storage: durable storage unavailable")

// BlobStore 单条目键值存储契约
// 整个文档集合序列化为一个 blob, 存放在固定的 key 下;
// 每次写入都整体替换该 blob
type BlobStore interface {
	// Load 读取指定 key 的 blob, key 不存在时返回 (nil, nil)
	Load(key string) ([]byte, error)
	// Save 整体写入指定 key 的 blob
	Save(key string, data []byte) error
	// Remove 删除指定 key 的 blob, key 不存在时为空操作
	Remove(key string) error
}

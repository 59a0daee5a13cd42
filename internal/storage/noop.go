package storage

// NoopBlobStore 无持久化存储环境下的空实现
// 所有读取返回空, 所有写入报告 ErrUnavailable,
// 由上层在边界处静默吸收
type NoopBlobStore struct{}

// NewNoopBlobStore 创建空 blob 存储
func NewNoopBlobStore() *NoopBlobStore {
	return &NoopBlobStore{}
}

// Load 始终返回空
func (NoopBlobStore) Load(key string) ([]byte, error) {
	return nil, ErrUnavailable
}

// Save 丢弃写入
func (NoopBlobStore) Save(key string, data []byte) error {
	return ErrUnavailable
}

// Remove 空操作
func (NoopBlobStore) Remove(key string) error {
	return ErrUnavailable
}

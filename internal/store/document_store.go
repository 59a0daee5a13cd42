package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Franklyn101/sagbama-land-authentication/internal/model"
	"github.com/Franklyn101/sagbama-land-authentication/internal/storage"
	"github.com/sirupsen/logrus"
)

// DefaultStorageKey 文档集合在 blob 存储中的固定 key
const DefaultStorageKey = "landauth_documents"

// DocumentStore 文档仓储接口
// 持久化存储中的集合是所有文档记录的唯一权威副本,
// 其余组件只持有临时副本, 必须通过仓储写回
type DocumentStore interface {
	Get(id string) (*model.DocumentRecord, error)
	Put(record *model.DocumentRecord) (*model.DocumentRecord, error)
	Delete(id string) error
	List() ([]*model.DocumentRecord, error)
}

// documentStore 文档仓储实现
// 整个集合序列化为 [id, record] 对的 JSON 数组保存在单个 blob 中;
// 每次变更读出整个集合、内存中修改、整体写回
type documentStore struct {
	blobs  storage.BlobStore
	key    string
	logger *logrus.Logger
}

// NewDocumentStore 创建文档仓储
func NewDocumentStore(blobs storage.BlobStore, key string, logger *logrus.Logger) DocumentStore {
	if key == "" {
		key = DefaultStorageKey
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &documentStore{blobs: blobs, key: key, logger: logger}
}

// documentPair 持久化布局中的一项: ["id", {record}]
type documentPair struct {
	ID     string
	Record *model.DocumentRecord
}

// MarshalJSON 序列化为双元素数组
func (p documentPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{p.ID, p.Record})
}

// UnmarshalJSON 从双元素数组反序列化
func (p *documentPair) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("document pair must have 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.ID); err != nil {
		return err
	}
	var rec model.DocumentRecord
	if err := json.Unmarshal(raw[1], &rec); err != nil {
		return err
	}
	p.Record = &rec
	return nil
}

// load 读出整个集合
// 缺失、损坏或存储不可用一律退化为空集合, 不向上传播错误
func (s *documentStore) load() []documentPair {
	data, err := s.blobs.Load(s.key)
	if err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			s.logger.Debug("durable storage unavailable, treating collection as empty")
		} else {
			s.logger.WithError(err).Warn("failed to load document collection, treating as empty")
		}
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	var pairs []documentPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		s.logger.WithError(err).Warn("corrupt document collection, treating as empty")
		return nil
	}
	for _, p := range pairs {
		if p.Record != nil {
			p.Record.Normalize()
		}
	}
	return pairs
}

// save 整体写回集合
// 存储不可用时静默丢弃, 其余存储错误仅记录日志
func (s *documentStore) save(pairs []documentPair) error {
	if pairs == nil {
		pairs = []documentPair{}
	}
	data, err := json.Marshal(pairs)
	if err != nil {
		return fmt.Errorf("failed to serialize document collection: %w", err)
	}
	if err := s.blobs.Save(s.key, data); err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			s.logger.Debug("durable storage unavailable, write dropped")
			return nil
		}
		s.logger.WithError(err).Warn("failed to persist document collection")
		return nil
	}
	return nil
}

// Get 根据 ID 读取文档, 不存在时返回 (nil, nil)
func (s *documentStore) Get(id string) (*model.DocumentRecord, error) {
	for _, p := range s.load() {
		if p.ID == id {
			return p.Record.Clone(), nil
		}
	}
	return nil, nil
}

// Put 写入文档 (upsert)
// 已存在时做浅合并: 传入字段整体覆盖, 但 id 和 createdAt 保留原值,
// updatedAt 总是刷新; 不存在时按原样插入
func (s *documentStore) Put(record *model.DocumentRecord) (*model.DocumentRecord, error) {
	if record == nil {
		return nil, errors.New("record is required")
	}
	incoming := record.Clone()
	incoming.Normalize()

	pairs := s.load()
	now := time.Now()
	replaced := false
	for i, p := range pairs {
		if p.ID == incoming.ID {
			merged := incoming.Clone()
			merged.ID = p.Record.ID
			merged.CreatedAt = p.Record.CreatedAt
			merged.UpdatedAt = now
			pairs[i] = documentPair{ID: merged.ID, Record: merged}
			incoming = merged
			replaced = true
			break
		}
	}
	if !replaced {
		pairs = append(pairs, documentPair{ID: incoming.ID, Record: incoming})
	}
	if err := s.save(pairs); err != nil {
		return nil, err
	}
	return incoming.Clone(), nil
}

// Delete 根据 ID 删除文档, 对不存在的 ID 为幂等空操作
func (s *documentStore) Delete(id string) error {
	pairs := s.load()
	kept := pairs[:0]
	removed := false
	for _, p := range pairs {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return nil
	}
	return s.save(kept)
}

// List 返回集合快照, 顺序为存储快照顺序
func (s *documentStore) List() ([]*model.DocumentRecord, error) {
	pairs := s.load()
	records := make([]*model.DocumentRecord, 0, len(pairs))
	for _, p := range pairs {
		if p.Record == nil {
			continue
		}
		records = append(records, p.Record.Clone())
	}
	return records, nil
}

package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Franklyn101/sagbama-land-authentication/internal/model"
	"github.com/Franklyn101/sagbama-land-authentication/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryBlobStore 测试用内存 blob 存储
type memoryBlobStore struct {
	data map[string][]byte
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{data: make(map[string][]byte)}
}

func (m *memoryBlobStore) Load(key string) ([]byte, error) {
	return m.data[key], nil
}

func (m *memoryBlobStore) Save(key string, data []byte) error {
	m.data[key] = data
	return nil
}

func (m *memoryBlobStore) Remove(key string) error {
	delete(m.data, key)
	return nil
}

func newTestStore() (DocumentStore, *memoryBlobStore) {
	blobs := newMemoryBlobStore()
	return NewDocumentStore(blobs, "", nil), blobs
}

// TestDocumentStorePutGet 测试写入和读取
func TestDocumentStorePutGet(t *testing.T) {
	st, _ := newTestStore()

	record := &model.DocumentRecord{
		ID:            "doc-1",
		VendorName:    "Acme Ltd",
		PurchaserName: "J. Doe",
		Status:        model.StatusPending,
	}
	saved, err := st.Put(record)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", saved.ID)

	got, err := st.Get("doc-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme Ltd", got.VendorName)

	// 不存在的 ID 返回 (nil, nil)
	got, err = st.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestDocumentStorePairLayout 测试持久化布局为 [id, record] 对数组
func TestDocumentStorePairLayout(t *testing.T) {
	st, blobs := newTestStore()

	_, err := st.Put(&model.DocumentRecord{ID: "doc-1", Status: model.StatusPending})
	require.NoError(t, err)

	raw := blobs.data[DefaultStorageKey]
	require.NotEmpty(t, raw)

	var pairs [][2]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &pairs))
	require.Len(t, pairs, 1)

	var id string
	require.NoError(t, json.Unmarshal(pairs[0][0], &id))
	assert.Equal(t, "doc-1", id)
}

// TestDocumentStorePutMerge 测试 upsert 合并保留 id 和 createdAt
func TestDocumentStorePutMerge(t *testing.T) {
	st, _ := newTestStore()

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := st.Put(&model.DocumentRecord{
		ID:        "doc-1",
		Title:     "original",
		Status:    model.StatusPending,
		CreatedAt: created,
		UpdatedAt: created,
	})
	require.NoError(t, err)

	updated, err := st.Put(&model.DocumentRecord{
		ID:        "doc-1",
		Title:     "changed",
		Status:    model.StatusPending,
		CreatedAt: time.Now(), // 传入值被忽略
	})
	require.NoError(t, err)

	assert.Equal(t, "changed", updated.Title)
	assert.Equal(t, created, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created))

	records, err := st.List()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

// TestDocumentStoreDelete 测试删除及其幂等性
func TestDocumentStoreDelete(t *testing.T) {
	st, _ := newTestStore()

	_, err := st.Put(&model.DocumentRecord{ID: "doc-1", Status: model.StatusPending})
	require.NoError(t, err)

	require.NoError(t, st.Delete("doc-1"))
	got, err := st.Get("doc-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// 重复删除是空操作
	require.NoError(t, st.Delete("doc-1"))
	require.NoError(t, st.Delete("never-existed"))
}

// TestDocumentStoreListOrder 测试快照顺序稳定
func TestDocumentStoreListOrder(t *testing.T) {
	st, _ := newTestStore()

	for _, id := range []string{"a", "b", "c"} {
		_, err := st.Put(&model.DocumentRecord{ID: id, Status: model.StatusPending})
		require.NoError(t, err)
	}

	records, err := st.List()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
	assert.Equal(t, "c", records[2].ID)
}

// TestDocumentStoreCorruptBlob 测试损坏数据退化为空集合
func TestDocumentStoreCorruptBlob(t *testing.T) {
	blobs := newMemoryBlobStore()
	blobs.data[DefaultStorageKey] = []byte("{not json")
	st := NewDocumentStore(blobs, "", nil)

	records, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, records)

	// 写入会用新集合覆盖损坏数据
	_, err = st.Put(&model.DocumentRecord{ID: "doc-1", Status: model.StatusPending})
	require.NoError(t, err)

	records, err = st.List()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

// TestDocumentStoreLegacyShape 测试旧形态记录在读取边界被归一化
func TestDocumentStoreLegacyShape(t *testing.T) {
	blobs := newMemoryBlobStore()
	blobs.data[DefaultStorageKey] = []byte(`[["doc-1",{"id":"doc-1","title":"old"}]]`)
	st := NewDocumentStore(blobs, "", nil)

	got, err := st.Get("doc-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.StatusPending, got.Status)
}

// TestDocumentStoreUnavailableStorage 测试存储不可用时的静默降级
func TestDocumentStoreUnavailableStorage(t *testing.T) {
	st := NewDocumentStore(storage.NewNoopBlobStore(), "", nil)

	// 读写都不报错, 行为等同空集合
	saved, err := st.Put(&model.DocumentRecord{ID: "doc-1", Status: model.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", saved.ID)

	records, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFileBlobStoreRoundTrip 测试文件存储的写入读取
func TestFileBlobStoreRoundTrip(t *testing.T) {
	st := NewFileBlobStore(t.TempDir())

	require.NoError(t, st.Save("landauth_documents", []byte(`[["a",{}]]`)))

	data, err := st.Load("landauth_documents")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[["a",{}]]`), data)

	// 覆盖写入
	require.NoError(t, st.Save("landauth_documents", []byte(`[]`)))
	data, err = st.Load("landauth_documents")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), data)
}

// TestFileBlobStoreMissingKey 测试不存在的 key
func TestFileBlobStoreMissingKey(t *testing.T) {
	st := NewFileBlobStore(t.TempDir())

	data, err := st.Load("missing")
	require.NoError(t, err)
	assert.Nil(t, data)
}

// TestFileBlobStoreRemove 测试删除及其幂等性
func TestFileBlobStoreRemove(t *testing.T) {
	st := NewFileBlobStore(t.TempDir())

	require.NoError(t, st.Save("key", []byte("data")))
	require.NoError(t, st.Remove("key"))

	data, err := st.Load("key")
	require.NoError(t, err)
	assert.Nil(t, data)

	// 重复删除是空操作
	require.NoError(t, st.Remove("key"))
}

// TestNoopBlobStore 测试空操作存储返回不可用错误
func TestNoopBlobStore(t *testing.T) {
	st := NewNoopBlobStore()

	_, err := st.Load("key")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, st.Save("key", []byte("data")), ErrUnavailable)
	assert.ErrorIs(t, st.Remove("key"), ErrUnavailable)
}

package certificate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBuildPayload 测试验证载荷构造
func TestBuildPayload(t *testing.T) {
	assert.Equal(t, "https://land.example.org/documents/doc-1",
		BuildPayload("doc-1", "https://land.example.org"))

	// 源末尾斜杠被剥除, 不产生双斜杠
	assert.Equal(t, "https://land.example.org/documents/doc-1",
		BuildPayload("doc-1", "https://land.example.org/"))

	// 空 ID 不产生载荷
	assert.Equal(t, "", BuildPayload("", "https://land.example.org"))
}

// TestBuildPayloadDeterministic 测试同输入同输出
func TestBuildPayloadDeterministic(t *testing.T) {
	first := BuildPayload("doc-1", "https://land.example.org")
	second := BuildPayload("doc-1", "https://land.example.org")
	assert.Equal(t, first, second)
}

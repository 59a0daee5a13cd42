package certificate

import "strings"

// BuildPayload 构造规范载荷: 指向文档的可解析 URL
// 编码的是引用而非个人数据, 字段后续被编辑时已签发的 QR 码仍然有效;
// 纯函数, 只依赖 (record id, baseOrigin)
func BuildPayload(documentID, baseOrigin string) string {
	if documentID == "" {
		return ""
	}
	origin := strings.TrimRight(baseOrigin, "/")
	return origin + "/documents/" + documentID
}

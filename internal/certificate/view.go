package certificate

import "github.com/Franklyn101/sagbama-land-authentication/internal/model"

// BorderStyle 证书边框样式
type BorderStyle string

// 边框样式常量
// 屏幕上的证书使用平铺图案内边框, 光栅化器不保证支持平铺图案,
// 导出前一律归一化为实线
const (
	BorderPattern BorderStyle = "pattern"
	BorderSolid   BorderStyle = "solid"
)

// CertificateView 证书视图快照
// 渲染阶段从实时记录分离出的只读副本, 导出过程中的记录变更不会竞争
type CertificateView struct {
	DocumentID    string
	Title         string
	VendorName    string
	PurchaserName string
	SubjectMatter string

	CounselName    string
	CounselAddress string
	CounselContact string
	CounselPhoto   string // data URL

	Reference string
	QRRef     string // data URL 或远端服务 URL

	Border BorderStyle
}

// NewCertificateView 渲染阶段: 构造分离的证书视图
// 同时完成不可移植视觉构造的归一化
func NewCertificateView(record *model.DocumentRecord, qrRef string) *CertificateView {
	view := &CertificateView{
		DocumentID:    record.ID,
		Title:         "DEED OF CONVEYANCE",
		VendorName:    record.VendorName,
		PurchaserName: record.PurchaserName,
		SubjectMatter: record.SubjectMatter,

		CounselName:    record.CounselName,
		CounselAddress: record.CounselAddress,
		CounselContact: record.CounselContact,
		CounselPhoto:   record.CounselPhoto,

		Reference: record.Reference,
		QRRef:     qrRef,

		Border: BorderPattern,
	}
	view.Normalize()
	return view
}

// Normalize 将图案边框归一化为导出安全的实线边框
func (v *CertificateView) Normalize() {
	if v.Border == BorderPattern {
		v.Border = BorderSolid
	}
}

package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"regexp"
	"strings"

	"github.com/Franklyn101/sagbama-land-authentication/internal/certificate"
	"github.com/Franklyn101/sagbama-land-authentication/internal/metrics"
	"github.com/Franklyn101/sagbama-land-authentication/internal/model"
	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"
)

// State 导出流水线状态
type State string

// 单次导出的状态机:
// Idle -> Rendering -> Rasterizing -> Paginating -> Saved 为主路径;
// 任一步失败 -> DegradedFallback -> Saved;
// 降级层自身失败 -> Failed (终态, 提示手动打印)
const (
	StateIdle             State = "idle"
	StateRendering        State = "rendering"
	StateRasterizing      State = "rasterizing"
	StatePaginating       State = "paginating"
	StateDegradedFallback State = "degraded_fallback"
	StateSaved            State = "saved"
	StateFailed           State = "failed"
)

// 页面布局常量(pt, A4 纵向)
const (
	pageMargin = 20
	imageInset = 40 // 位图宽度 = 页宽 - imageInset
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9-_]`)

// Artifact 导出产物
// State 记录本次导出结束时的状态机终态
type Artifact struct {
	Filename string
	Data     []byte
	Degraded bool
	State    State
}

// FailedError 导出主路径和降级路径均失败
// 这是导出流程唯一对用户可见的致命错误, 引导用户走手动打印路径
type FailedError struct {
	DocumentID string
	Err        error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("certificate export failed for document %s: %v; use the browser print-to-PDF path instead", e.DocumentID, e.Err)
}

func (e *FailedError) Unwrap() error {
	return e.Err
}

// Pipeline 证书导出流水线
// 流水线自身无可变状态, 单个实例可被并发请求共享;
// 状态机随单次导出在栈上推进, 终态通过 Artifact.State 返回
type Pipeline struct {
	rasterizer certificate.Rasterizer
	logger     *logrus.Logger
}

// NewPipeline 创建导出流水线
func NewPipeline(rasterizer certificate.Rasterizer, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.New()
	}
	return &Pipeline{rasterizer: rasterizer, logger: logger}
}

// Export 执行一次导出
// 步骤 1-3 各自可独立失败, 任何失败立即短路到降级层;
// 降级层只用文本摆放原语, 不做完整视觉渲染
func (p *Pipeline) Export(record *model.DocumentRecord, qrRef string) (*Artifact, error) {
	filename := ArtifactFilename(record)

	// Rendering: 分离的视图快照, 归一化不可移植的视觉构造
	state := StateRendering
	view := certificate.NewCertificateView(record, qrRef)

	// Rasterizing: 2x 倍率位图
	state = StateRasterizing
	img, err := p.rasterizer.Rasterize(view)
	if err != nil {
		p.logger.WithError(err).WithField("document_id", record.ID).WithField("state", string(state)).
			Warn("rasterization failed, falling back to text-only certificate")
		return p.degraded(record, filename, err)
	}

	// Paginating: 单页 A4, 按页宽缩放, 垂直居中
	state = StatePaginating
	data, err := p.paginate(img)
	if err != nil {
		p.logger.WithError(err).WithField("document_id", record.ID).WithField("state", string(state)).
			Warn("pagination failed, falling back to text-only certificate")
		return p.degraded(record, filename, err)
	}

	metrics.RecordCertificateExport("full")
	return &Artifact{Filename: filename, Data: data, State: StateSaved}, nil
}

// paginate 将位图放入单页 A4 文档
func (p *Pipeline) paginate(img image.Image) ([]byte, error) {
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("failed to encode certificate bitmap: %w", err)
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	info := pdf.RegisterImageOptionsReader("certificate", opts, &pngBuf)
	if pdf.Err() {
		return nil, fmt.Errorf("failed to register certificate bitmap: %w", pdf.Error())
	}

	pageWidth, pageHeight := pdf.GetPageSize()
	imgWidth := pageWidth - imageInset
	imgHeight := imgWidth * info.Height() / info.Width()
	y := (pageHeight - imgHeight) / 2
	if y < pageMargin {
		y = pageMargin
	}
	pdf.ImageOptions("certificate", pageMargin, y, imgWidth, imgHeight, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("failed to write certificate document: %w", err)
	}
	return out.Bytes(), nil
}

// degraded 降级层: 纯文本证书
// 保证审核加导出的用户总能拿到一份产物, 只是保真度降低;
// 这里再失败则整个导出以 Failed 终止
func (p *Pipeline) degraded(record *model.DocumentRecord, filename string, cause error) (*Artifact, error) {
	state := StateDegradedFallback
	data, err := p.textOnlyCertificate(record)
	if err != nil {
		state = StateFailed
		p.logger.WithError(err).WithField("document_id", record.ID).WithField("state", string(state)).
			Error("text-only fallback failed, export aborted")
		metrics.RecordCertificateExport("failed")
		return nil, &FailedError{DocumentID: record.ID, Err: fmt.Errorf("%v (after: %v)", err, cause)}
	}

	metrics.RecordCertificateExport("degraded")
	return &Artifact{Filename: filename, Data: data, Degraded: true, State: StateSaved}, nil
}

// textOnlyCertificate 只用文本原语合成最小证书
func (p *Pipeline) textOnlyCertificate(record *model.DocumentRecord) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)

	line := func(size float64, style, text string) {
		pdf.SetFont("Helvetica", style, size)
		pdf.CellFormat(0, size+10, text, "", 1, "C", false, 0, "")
	}

	line(22, "B", "DEED OF CONVEYANCE")
	pdf.Ln(10)
	line(12, "B", "BETWEEN")
	line(16, "B", upperOrDash(record.VendorName))
	line(11, "", "(VENDORS)")
	pdf.Ln(6)
	line(12, "B", "AND")
	line(16, "B", upperOrDash(record.PurchaserName))
	line(11, "", "(PURCHASER)")
	pdf.Ln(14)
	line(11, "", "IN RESPECT OF A PARCEL OF LAND MEASURING "+orDash(record.SubjectMatter))
	pdf.Ln(20)
	line(11, "B", "Prepared by:")
	line(13, "B", upperOrDash(record.CounselName))
	if record.CounselAddress != "" {
		line(10, "", record.CounselAddress)
	}
	if record.CounselContact != "" {
		line(10, "", record.CounselContact)
	}
	pdf.Ln(20)
	if record.Reference != "" {
		line(10, "", "Ref: "+record.Reference)
	}
	line(9, "", "Document ID: "+record.ID)

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("failed to write text-only certificate: %w", err)
	}
	return out.Bytes(), nil
}

// ArtifactFilename 导出文件命名: {vendor|certificate}_{id}.pdf
// 文件系统不安全字符一律替换为下划线
func ArtifactFilename(record *model.DocumentRecord) string {
	vendor := record.VendorName
	if vendor == "" {
		vendor = "certificate"
	}
	name := vendor + "_" + record.ID
	return unsafeFilenameChars.ReplaceAllString(name, "_") + ".pdf"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func upperOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ToUpper(s)
}

package certificate

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // 照片 data URL 可能是 JPEG
	_ "image/png"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// 证书基准尺寸(像素, 1x), 对应 A4 纵向
const (
	baseWidth  = 794
	baseHeight = 1123
)

// DefaultRasterScale 打印保真度用的光栅化倍率
const DefaultRasterScale = 2.0

// Rasterizer 将归一化后的证书视图转换为固定分辨率位图
type Rasterizer interface {
	Rasterize(view *CertificateView) (image.Image, error)
}

// GGRasterizer 基于 2D 绘图上下文的光栅化实现
type GGRasterizer struct {
	scale float64
	font  *truetype.Font
}

// NewGGRasterizer 创建光栅化器
func NewGGRasterizer(scale float64) (*GGRasterizer, error) {
	if scale <= 0 {
		scale = DefaultRasterScale
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded font: %w", err)
	}
	return &GGRasterizer{scale: scale, font: f}, nil
}

func (r *GGRasterizer) face(size float64) font.Face {
	return truetype.NewFace(r.font, &truetype.Options{Size: size * r.scale})
}

// Rasterize 绘制证书位图
// 强制白色背景避免透明伪影; 照片或 QR 资源解码失败时返回错误,
// 由导出管线切换到降级层, 绝不输出被污染的位图
func (r *GGRasterizer) Rasterize(view *CertificateView) (image.Image, error) {
	if view == nil {
		return nil, errors.New("certificate view is required")
	}
	sc := r.scale
	s := func(v float64) float64 { return v * sc }

	dc := gg.NewContext(int(s(baseWidth)), int(s(baseHeight)))
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)

	// 边框: 外层双实线加归一化后的内实线
	dc.SetLineWidth(s(6))
	dc.DrawRectangle(s(3), s(3), s(baseWidth-6), s(baseHeight-6))
	dc.Stroke()
	dc.DrawRectangle(s(15), s(15), s(baseWidth-30), s(baseHeight-30))
	dc.Stroke()
	dc.SetLineWidth(s(2))
	dc.DrawRectangle(s(34), s(34), s(baseWidth-68), s(baseHeight-68))
	dc.Stroke()
	dc.SetLineWidth(s(1))
	dc.DrawRectangle(s(48), s(48), s(baseWidth-96), s(baseHeight-96))
	dc.Stroke()

	cx := s(baseWidth / 2)

	dc.SetFontFace(r.face(28))
	dc.DrawStringAnchored(view.Title, cx, s(112), 0.5, 0.5)

	dc.SetFontFace(r.face(14))
	dc.DrawStringAnchored("BETWEEN", cx, s(168), 0.5, 0.5)

	dc.SetFontFace(r.face(20))
	dc.DrawStringAnchored(orDash(strings.ToUpper(view.VendorName)), cx, s(202), 0.5, 0.5)
	dc.SetFontFace(r.face(13))
	dc.DrawStringAnchored("(VENDORS)", cx, s(226), 0.5, 0.5)

	dc.SetFontFace(r.face(14))
	dc.DrawStringAnchored("AND", cx, s(268), 0.5, 0.5)

	dc.SetFontFace(r.face(20))
	dc.DrawStringAnchored(orDash(strings.ToUpper(view.PurchaserName)), cx, s(302), 0.5, 0.5)
	dc.SetFontFace(r.face(13))
	dc.DrawStringAnchored("(PURCHASER)", cx, s(326), 0.5, 0.5)

	dc.SetFontFace(r.face(12))
	dc.DrawStringAnchored(
		"IN RESPECT OF A PARCEL OF LAND MEASURING "+orDash(view.SubjectMatter),
		cx, s(378), 0.5, 0.5)

	if view.CounselPhoto != "" {
		photo, err := DecodeDataURL(view.CounselPhoto)
		if err != nil {
			return nil, fmt.Errorf("failed to decode counsel photo: %w", err)
		}
		drawCircularImage(dc, photo, cx, s(470), s(56))
	}

	dc.SetFontFace(r.face(13))
	dc.DrawStringAnchored("Prepared by:", cx, s(556), 0.5, 0.5)
	dc.SetFontFace(r.face(15))
	dc.DrawStringAnchored(orDash(strings.ToUpper(view.CounselName)), cx, s(582), 0.5, 0.5)
	dc.SetFontFace(r.face(11))
	if view.CounselAddress != "" {
		dc.DrawStringAnchored(view.CounselAddress, cx, s(602), 0.5, 0.5)
	}
	if view.CounselContact != "" {
		dc.DrawStringAnchored(view.CounselContact, cx, s(620), 0.5, 0.5)
	}

	dc.SetFontFace(r.face(14))
	dc.DrawStringAnchored(view.Title, cx, s(688), 0.5, 0.5)
	if view.Reference != "" {
		dc.SetFontFace(r.face(11))
		dc.DrawStringAnchored("Ref: "+view.Reference, cx, s(714), 0.5, 0.5)
	}

	if err := r.drawQR(dc, view.QRRef, s(48), s(baseHeight-48-96), s(96)); err != nil {
		return nil, err
	}
	r.drawSeal(dc, s(baseWidth-48-60), s(baseHeight-48-60))

	return dc.Image(), nil
}

// drawQR 在左下角绘制 QR 图像
// 远端 URL 引用无法在进程内取回, 绘制占位框; 内嵌 data URL 直接解码绘制
func (r *GGRasterizer) drawQR(dc *gg.Context, qrRef string, x, y, size float64) error {
	dc.SetLineWidth(r.scale)
	dc.DrawRectangle(x, y, size, size)
	dc.Stroke()
	if qrRef == "" || !strings.HasPrefix(qrRef, "data:") {
		dc.SetFontFace(r.face(10))
		dc.DrawStringAnchored("QR", x+size/2, y+size/2, 0.5, 0.5)
		return nil
	}
	img, err := DecodeDataURL(qrRef)
	if err != nil {
		return fmt.Errorf("failed to decode QR image: %w", err)
	}
	drawScaledImage(dc, img, x, y, size)
	return nil
}

// drawSeal 在右下角绘制圆形钢印
func (r *GGRasterizer) drawSeal(dc *gg.Context, cx, cy float64) {
	sc := r.scale
	dc.SetRGB(0.93, 0.93, 0.93)
	dc.DrawCircle(cx, cy, 56*sc)
	dc.Fill()
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(2 * sc)
	dc.DrawCircle(cx, cy, 56*sc)
	dc.Stroke()
	dc.DrawCircle(cx, cy, 42*sc)
	dc.Stroke()

	dc.SetFontFace(r.face(10))
	dc.DrawStringAnchored("SAGBAMA", cx, cy-26*sc, 0.5, 0.5)
	dc.SetFontFace(r.face(8))
	dc.DrawStringAnchored("LOCAL GOVERNMENT", cx, cy-10*sc, 0.5, 0.5)
	dc.DrawStringAnchored("LAND AUTH", cx, cy+10*sc, 0.5, 0.5)
	dc.SetFontFace(r.face(7))
	dc.DrawStringAnchored("CERTIFIED TRUE COPY", cx, cy+28*sc, 0.5, 0.5)
}

// drawCircularImage 圆形裁剪绘制图像
func drawCircularImage(dc *gg.Context, img image.Image, cx, cy, radius float64) {
	dc.Push()
	dc.DrawCircle(cx, cy, radius)
	dc.Clip()
	drawScaledImage(dc, img, cx-radius, cy-radius, radius*2)
	dc.ResetClip()
	dc.Pop()
}

// drawScaledImage 将图像缩放绘制到边长 size 的正方形区域
func drawScaledImage(dc *gg.Context, img image.Image, x, y, size float64) {
	bounds := img.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	if w == 0 || h == 0 {
		return
	}
	scale := size / w
	if h > w {
		scale = size / h
	}
	dc.Push()
	dc.Translate(x, y)
	dc.Scale(scale, scale)
	dc.DrawImage(img, 0, 0)
	dc.Pop()
}

// DecodeDataURL 解码 data URL 形式的图像
func DecodeDataURL(dataURL string) (image.Image, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, errors.New("not a data URL")
	}
	idx := strings.Index(dataURL, ",")
	if idx < 0 {
		return nil, errors.New("malformed data URL")
	}
	raw, err := base64.StdEncoding.DecodeString(dataURL[idx+1:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URL payload: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// 占位符与降级层文本证书保持一致
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

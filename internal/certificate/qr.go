package certificate

import (
	"encoding/base64"
	"fmt"
	"net/url"

	"github.com/Franklyn101/sagbama-land-authentication/internal/metrics"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/sirupsen/logrus"
)

// DefaultQRSize QR 图像边长(像素)
const DefaultQRSize = 200

// DefaultQRFallbackEndpoint 降级模式使用的远端图表服务
const DefaultQRFallbackEndpoint = "https://chart.googleapis.com/chart"

// QREncoder 将规范载荷编码为可扫描的图像引用
// 返回值要么是内嵌的 PNG data URL, 要么是远端渲染服务的 URL
type QREncoder interface {
	Encode(payload string) (string, error)
}

// LocalQREncoder 进程内光栅化编码 (主策略)
type LocalQREncoder struct {
	Size int
}

// NewLocalQREncoder 创建本地 QR 编码器
func NewLocalQREncoder(size int) *LocalQREncoder {
	if size <= 0 {
		size = DefaultQRSize
	}
	return &LocalQREncoder{Size: size}
}

// Encode 将载荷编码为 PNG data URL
// 固定尺寸正方形, 保留标准静区边距
func (e *LocalQREncoder) Encode(payload string) (string, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, e.Size)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// RemoteQREncoder 远端图表服务编码 (降级策略)
// 引入外部网络依赖, 只在主策略不可用时使用
type RemoteQREncoder struct {
	Endpoint string
	Size     int
}

// NewRemoteQREncoder 创建远端 QR 编码器
func NewRemoteQREncoder(endpoint string, size int) *RemoteQREncoder {
	if endpoint == "" {
		endpoint = DefaultQRFallbackEndpoint
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	return &RemoteQREncoder{Endpoint: endpoint, Size: size}
}

// Encode 构造远端渲染 URL, 载荷经过百分号编码
func (e *RemoteQREncoder) Encode(payload string) (string, error) {
	return fmt.Sprintf("%s?cht=qr&chs=%dx%d&chl=%s",
		e.Endpoint, e.Size, e.Size, url.QueryEscape(payload)), nil
}

// FallbackQREncoder 两级降级链: 主策略失败立即切换降级策略
// 无层内重试; 降级属于可观测事件, 不作为错误上抛给最终用户
type FallbackQREncoder struct {
	primary  QREncoder
	fallback QREncoder
	logger   *logrus.Logger
}

// NewFallbackQREncoder 创建降级链编码器
func NewFallbackQREncoder(primary, fallback QREncoder, logger *logrus.Logger) *FallbackQREncoder {
	if logger == nil {
		logger = logrus.New()
	}
	return &FallbackQREncoder{primary: primary, fallback: fallback, logger: logger}
}

// Encode 编码载荷
// 空载荷直接返回空结果, 不触发任何策略
func (e *FallbackQREncoder) Encode(payload string) (string, error) {
	if payload == "" {
		return "", nil
	}
	ref, err := e.primary.Encode(payload)
	if err == nil {
		return ref, nil
	}
	e.logger.WithError(err).Warn("primary QR encoder failed, degrading to remote chart service")
	metrics.RecordQRFallback()
	return e.fallback.Encode(payload)
}

package service

import (
	"bytes"
	"checkout/api/internal/infra/cache"
	"checkout/pkg/utils"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

const (
	QR_SCHEME    = "solana"
	qrCacheTtl   = 35 * time.Minute
	qrDataPrefix = "data:image/png;base64,"
)

type QrCodesService struct {
	cache *cache.Cache
}

func NewQrCodesService() *QrCodesService {
	return &QrCodesService{cache: cache.InitStorage()}
}

// wallet-app payment uri, e.g. solana:<address>?amount=0.4117
func QrPayload(address string, amount decimal.Decimal) string {
	return fmt.Sprintf("%s:%s?amount=%s", QR_SCHEME, address, amount.String())
}

// generates png and saves it to cache
func (s *QrCodesService) New(content string) ([]byte, error) {
	qr, err := generateQrCode(content)
	if err != nil {
		return nil, err
	}

	s.cache.Set(content, qr, qrCacheTtl)

	return qr, nil
}

// returns png from cache or generates new one
func (s *QrCodesService) FindOrNew(content string) ([]byte, error) {
	qr, err := utils.SafeCast[[]byte](s.cache.Load(content))
	if err != nil { // not found
		return s.New(content)
	}
	return qr, nil
}

func DataURL(png []byte) string {
	return qrDataPrefix + base64.StdEncoding.EncodeToString(png)
}

type smallerCircle struct {
	smallerPercent float64
}

// https://github.com/yeqown/go-qrcode/blob/main/example/with-custom-shape/main.go
func (sc *smallerCircle) DrawFinder(ctx *standard.DrawContext) {
	backup := sc.smallerPercent
	sc.smallerPercent = 1.0
	sc.Draw(ctx)
	sc.smallerPercent = backup
}

func newShape(radiusPercent float64) standard.IShape {
	return &smallerCircle{smallerPercent: radiusPercent}
}

func (sc *smallerCircle) Draw(ctx *standard.DrawContext) {
	w, h := ctx.Edge()
	x, y := ctx.UpperLeft()
	color := ctx.Color()

	radius := w / 2
	r2 := h / 2
	if r2 <= radius {
		radius = r2
	}

	radius = int(float64(radius) * sc.smallerPercent)

	cx, cy := x+float64(w)/2.0, y+float64(h)/2.0
	ctx.DrawCircle(cx, cy, float64(radius))
	ctx.SetColor(color)
	ctx.Fill()
}

type bufferAdaptor struct {
	*bytes.Buffer
}

func (b bufferAdaptor) Close() error {
	return nil
}

func generateQrCode(content string) ([]byte, error) {
	qrc, err := qrcode.New(content)
	if err != nil {
		return nil, fmt.Errorf("qrcode.New: %w", err)
	}

	b := bufferAdaptor{Buffer: bytes.NewBuffer(nil)}
	w := standard.NewWithWriter(b, standard.WithCustomShape(newShape(0.7)), standard.WithBuiltinImageEncoder(standard.PNG_FORMAT))

	if err = qrc.Save(w); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

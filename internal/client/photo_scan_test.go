package client_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/foodai/foodai-web/internal/analysis"
	"github.com/foodai/foodai-web/internal/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// pngHeader returns a PNG whose header declares w x h pixels with no image
// data behind it.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	chunk := append([]byte("IHDR"), ihdr...)
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

// blockingAnalyzer holds every call until release is closed.
type blockingAnalyzer struct {
	started chan struct{}
	release chan struct{}
}

func (a *blockingAnalyzer) Analyze(ctx context.Context, _ []byte, _ string) (*analysis.Result, error) {
	close(a.started)
	select {
	case <-a.release:
		return analysis.MockResult(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func decodePreview(t *testing.T, dataURL string) image.Image {
	t.Helper()
	const prefix = "data:image/jpeg;base64,"
	require.True(t, strings.HasPrefix(dataURL, prefix))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, prefix))
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestPhotoScan_Select(t *testing.T) {
	tests := []struct {
		name         string
		width        int
		height       int
		wantW, wantH int
	}{
		{name: "landscape is scaled", width: 1024, height: 600, wantW: 512, wantH: 300},
		{name: "portrait is scaled", width: 300, height: 1200, wantW: 128, wantH: 512},
		{name: "small image kept", width: 200, height: 100, wantW: 200, wantH: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scan := client.NewPhotoScan(&analysis.Mock{})

			photo, err := scan.Select(encodePNG(t, tt.width, tt.height))
			require.NoError(t, err)
			assert.Equal(t, "image/png", photo.MIMEType)

			bounds := decodePreview(t, photo.Preview).Bounds()
			assert.Equal(t, tt.wantW, bounds.Dx())
			assert.Equal(t, tt.wantH, bounds.Dy())
		})
	}
}

func TestPhotoScan_SelectRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "empty", data: nil, want: client.ErrNoPhoto},
		{name: "text file", data: []byte("Ingredients: water, salt"), want: client.ErrNotImage},
		{name: "pdf", data: []byte("%PDF-1.4\n%âãÏÓ\n"), want: client.ErrNotImage},
		{name: "truncated png", data: encodePNG(t, 10, 10)[:40], want: client.ErrNotImage},
		{name: "too large", data: make([]byte, client.MaxPhotoBytes+1), want: client.ErrPhotoTooLarge},
		{name: "too many pixels", data: pngHeader(100000, 100000), want: client.ErrPhotoTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scan := client.NewPhotoScan(&analysis.Mock{})
			_, err := scan.Select(tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPhotoScan_Analyze(t *testing.T) {
	scan := client.NewPhotoScan(&analysis.Mock{})

	_, err := scan.Analyze(context.Background())
	assert.ErrorIs(t, err, client.ErrNoPhoto)

	_, err = scan.Select(encodePNG(t, 64, 64))
	require.NoError(t, err)

	res, err := scan.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, analysis.MockResult(), res)
	assert.Equal(t, res, scan.Result())

	status, _ := scan.Status()
	assert.Equal(t, client.StatusSuccess, status)

	// a new selection drops the old result
	_, err = scan.Select(encodePNG(t, 32, 32))
	require.NoError(t, err)
	assert.Nil(t, scan.Result())
	status, _ = scan.Status()
	assert.Equal(t, client.StatusIdle, status)
}

func TestPhotoScan_AnalyzeCancelled(t *testing.T) {
	scan := client.NewPhotoScan(analysis.NewMock())
	_, err := scan.Select(encodePNG(t, 16, 16))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = scan.Analyze(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	status, msg := scan.Status()
	assert.Equal(t, client.StatusError, status)
	assert.Equal(t, "Analysis failed. Please try again.", msg)
	assert.Nil(t, scan.Result())
}

func TestPhotoScan_SelectWhileAnalyzing(t *testing.T) {
	analyzer := &blockingAnalyzer{started: make(chan struct{}), release: make(chan struct{})}
	scan := client.NewPhotoScan(analyzer)

	first, err := scan.Select(encodePNG(t, 20, 20))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := scan.Analyze(context.Background())
		done <- err
	}()

	select {
	case <-analyzer.started:
	case <-time.After(5 * time.Second):
		t.Fatal("analysis did not start")
	}

	_, err = scan.Select(encodePNG(t, 30, 30))
	assert.ErrorIs(t, err, client.ErrInFlight)
	assert.ErrorIs(t, scan.Clear(), client.ErrInFlight)

	close(analyzer.release)
	require.NoError(t, <-done)

	assert.Equal(t, analysis.MockResult(), scan.Result())
	assert.NotEmpty(t, first.Preview)

	require.NoError(t, scan.Clear())
	assert.Nil(t, scan.Result())
}

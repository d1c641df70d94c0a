package douban

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmeta/douban/metadata"
)

func pngImage(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCoverBySubjectID(t *testing.T) {
	imageBytes := pngImage(t, 60, 90)

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	coverURL := server.URL + "/img/s501.jpg"
	mux.HandleFunc("/subject/501/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(subjectPage("挪威的森林", "[日] 村上春树", "9787532742929", "8.0", coverURL)))
	})
	mux.HandleFunc("/img/s501.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(imageBytes)
	})

	src, err := New(testConfig(server))
	require.NoError(t, err)

	cover, err := src.Cover(context.Background(), map[string]string{metadata.IdentifierDouban: "501"})
	require.NoError(t, err)
	assert.Equal(t, coverURL, cover.URL)
	assert.Equal(t, imageBytes, cover.Data)
}

func TestCoverPlaceholderMeansNoCover(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/subject/502/", func(w http.ResponseWriter, r *http.Request) {
		page := subjectPage("小书", "某人", "", "", "https://img9.doubanio.com/icon/book-default-lpic.gif")
		_, _ = w.Write([]byte(page))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	src, err := New(testConfig(server))
	require.NoError(t, err)

	cover, err := src.Cover(context.Background(), map[string]string{metadata.IdentifierDouban: "502"})
	require.ErrorIs(t, err, metadata.ErrNoCover)
	assert.Nil(t, cover)
}

func TestCoverByISBNRunsLookup(t *testing.T) {
	imageBytes := pngImage(t, 60, 90)
	var searchHits atomic.Int32

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	coverURL := server.URL + "/img/s503.jpg"
	mux.HandleFunc("/j/search", func(w http.ResponseWriter, r *http.Request) {
		searchHits.Add(1)
		_, _ = w.Write(searchEnvelope(t, searchItem("503", "挪威的森林", "[日] 村上春树 / 上海译文出版社 / 2007-7", "8.0")))
	})
	mux.HandleFunc("/subject/503/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(subjectPage("挪威的森林", "[日] 村上春树", "978-7-5327-4292-9", "8.0", coverURL)))
	})
	mux.HandleFunc("/img/s503.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(imageBytes)
	})

	src, err := New(testConfig(server))
	require.NoError(t, err)

	cover, err := src.Cover(context.Background(), map[string]string{metadata.IdentifierISBN: "9787532742929"})
	require.NoError(t, err)
	assert.Equal(t, coverURL, cover.URL)
	assert.Equal(t, imageBytes, cover.Data)
	assert.Equal(t, int32(1), searchHits.Load(), "an ISBN-only cover request has to go through a lookup")
}

func TestCoverShrinksWideImages(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	coverURL := server.URL + "/img/s504.jpg"
	mux.HandleFunc("/subject/504/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(subjectPage("三体", "刘慈欣", "9787536692930", "8.9", coverURL)))
	})
	mux.HandleFunc("/img/s504.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngImage(t, 100, 50))
	})

	cfg := testConfig(server)
	cfg.MaxCoverWidth = 40
	src, err := New(cfg)
	require.NoError(t, err)

	cover, err := src.Cover(context.Background(), map[string]string{metadata.IdentifierDouban: "504"})
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(cover.Data))
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
}

func TestCoverWithoutUsableIdentifiers(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	src, err := New(testConfig(server))
	require.NoError(t, err)

	cover, err := src.Cover(context.Background(), nil)
	require.ErrorIs(t, err, metadata.ErrNoCover)
	assert.Nil(t, cover)
	assert.Equal(t, int32(0), hits.Load())
}

func TestCoverSubjectFetchFailurePropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	src, err := New(testConfig(server))
	require.NoError(t, err)

	_, err = src.Cover(context.Background(), map[string]string{metadata.IdentifierDouban: "505"})
	require.Error(t, err)
	assert.True(t, metadata.IsRateLimited(err))
}

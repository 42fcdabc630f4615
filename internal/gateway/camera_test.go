package gateway

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"punogaria/internal/models"
)

func uniformPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestSkyClassifier_Classify(t *testing.T) {
	t.Parallel()

	payload := uniformPNG(t, color.RGBA{R: 230, G: 232, B: 240, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	c := NewSkyClassifier(srv.URL, time.Second, nil)
	res := c.Classify(context.Background())
	if res.Condition != models.SkyClear {
		t.Fatalf("condition: got %s (err %q)", res.Condition, res.Error)
	}
	if res.Stats == nil || res.Stats.Brightness != 240 {
		t.Fatalf("stats: got %+v", res.Stats)
	}
	if !bytes.Equal(res.Image, payload) || res.ContentType != "image/png" {
		t.Fatalf("image not carried through: %d bytes, %q", len(res.Image), res.ContentType)
	}
}

func TestSkyClassifier_FailuresAreUnknown(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		handler http.HandlerFunc
		wantSub string
	}{
		{
			name: "bad status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "no camera", http.StatusServiceUnavailable)
			},
			wantSub: "network failure",
		},
		{
			name: "not an image",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>hello</html>"))
			},
			wantSub: "decode failure",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			res := NewSkyClassifier(srv.URL, time.Second, nil).Classify(context.Background())
			if res.Condition != models.SkyUnknown {
				t.Fatalf("condition: got %s", res.Condition)
			}
			if !strings.Contains(res.Error, tc.wantSub) {
				t.Fatalf("error %q does not mention %q", res.Error, tc.wantSub)
			}
			if res.Image != nil {
				t.Fatalf("no image expected on failure")
			}
			if !strings.HasPrefix(res.Label(), "Sky detection failed") {
				t.Fatalf("label: %q", res.Label())
			}
		})
	}
}

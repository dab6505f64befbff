package thumbnail

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// Video frames are captured by loading the source into a minimal shim
// page in headless Chrome, seeking past the opening frame and taking an
// element screenshot. Chrome carries the codec support a pure-Go
// decoder cannot.
const videoShim = `<!DOCTYPE html>
<html>
<head><style>body{margin:0;background:#000}video{display:block;width:100%}</style></head>
<body>
<video id="frame" src="{{.Source}}" muted preload="auto"></video>
<script>
	var v = document.getElementById('frame');
	window.__frameReady = false;
	v.addEventListener('seeked', function() { window.__frameReady = true; });
	v.addEventListener('loadedmetadata', function() {
		v.currentTime = Math.min({{.Seek}}, v.duration || {{.Seek}});
	});
	v.addEventListener('error', function() { window.__frameError = true; });
</script>
</body>
</html>`

var videoShimTmpl = template.Must(template.New("shim").Parse(videoShim))

// VideoStrategy captures a still frame from a video via headless Chrome.
type VideoStrategy struct {
	browser  common.BrowserConfig
	seek     time.Duration
	maxWidth int
	quality  int
	logger   arbor.ILogger
	tempDir  string
}

var _ interfaces.ThumbnailStrategy = (*VideoStrategy)(nil)

func NewVideoStrategy(browser common.BrowserConfig, tc common.ThumbnailConfig, logger arbor.ILogger) *VideoStrategy {
	tempDir := filepath.Join(os.TempDir(), "colligo-video")
	os.MkdirAll(tempDir, 0755)

	return &VideoStrategy{
		browser:  browser,
		seek:     tc.VideoSeek,
		maxWidth: tc.MaxWidth,
		quality:  tc.JPEGQuality,
		logger:   logger,
		tempDir:  tempDir,
	}
}

func (s *VideoStrategy) Derive(ctx context.Context, input interfaces.DeriveInput) (models.ThumbnailState, error) {
	source := input.URL
	if source == "" {
		if len(input.Data) == 0 {
			return models.ThumbnailState{}, &models.ThumbnailDerivationError{
				Kind:   models.KindVideo,
				Reason: "no video data or URL supplied",
			}
		}
		videoFile := filepath.Join(s.tempDir, fmt.Sprintf("src_%d_%d.mp4", os.Getpid(), input.Generation))
		if err := os.WriteFile(videoFile, input.Data, 0644); err != nil {
			return models.ThumbnailState{}, &models.ThumbnailDerivationError{
				Kind:   models.KindVideo,
				Reason: fmt.Sprintf("failed to write temp video file: %v", err),
			}
		}
		defer os.Remove(videoFile)
		source = "file://" + videoFile
	}

	frame, err := s.captureFrame(ctx, source)
	if err != nil {
		return models.ThumbnailState{}, &models.ThumbnailDerivationError{
			Kind:   models.KindVideo,
			Reason: err.Error(),
		}
	}

	preview, err := encodePreview(frame, s.maxWidth, s.quality)
	if err != nil {
		return models.ThumbnailState{}, &models.ThumbnailDerivationError{
			Kind:   models.KindVideo,
			Reason: err.Error(),
		}
	}

	s.logger.Debug().
		Int("preview_bytes", len(preview)).
		Str("seek", s.seek.String()).
		Msg("Captured video frame")

	return models.LocalBlobThumbnail(input.Generation, preview, ""), nil
}

// captureFrame renders the shim page in headless Chrome and screenshots
// the video element once the seek completes.
func (s *VideoStrategy) captureFrame(ctx context.Context, source string) ([]byte, error) {
	shimFile := filepath.Join(s.tempDir, fmt.Sprintf("shim_%d.html", os.Getpid()))
	f, err := os.Create(shimFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create shim page: %w", err)
	}
	err = videoShimTmpl.Execute(f, struct {
		Source string
		Seek   float64
	}{Source: source, Seek: s.seek.Seconds()})
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to render shim page: %w", err)
	}
	defer os.Remove(shimFile)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.browser.Headless),
		chromedp.Flag("disable-gpu", s.browser.DisableGPU),
		chromedp.Flag("no-sandbox", s.browser.NoSandbox),
		chromedp.Flag("allow-file-access-from-files", true),
		chromedp.Flag("autoplay-policy", "no-user-gesture-required"),
		chromedp.WindowSize(1280, 720),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, s.browser.CaptureTimeout)
	defer cancel()

	var ready, failed bool
	var frame []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+shimFile),
		chromedp.ActionFunc(func(ctx context.Context) error {
			for {
				if err := chromedp.Evaluate(`window.__frameReady === true`, &ready).Do(ctx); err != nil {
					return err
				}
				if ready {
					return nil
				}
				if err := chromedp.Evaluate(`window.__frameError === true`, &failed).Do(ctx); err != nil {
					return err
				}
				if failed {
					return fmt.Errorf("video element reported a load error")
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(100 * time.Millisecond):
				}
			}
		}),
		chromedp.Screenshot("#frame", &frame, chromedp.ByID),
	)
	if err != nil {
		return nil, fmt.Errorf("frame capture failed: %w", err)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("frame capture produced no image")
	}
	return frame, nil
}

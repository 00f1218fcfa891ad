package render

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"bookshop-insights/models"
	"bookshop-insights/utils"
)

// Display presents a rendered chart to the user.
type Display interface {
	Show(ctx context.Context, name string, spec *models.ChartSpec) error
}

// FileDisplay writes each chart as <dir>/<name>.png and returns immediately.
type FileDisplay struct {
	dir    string
	logger *utils.Logger
}

func NewFileDisplay(dir string, logger *utils.Logger) *FileDisplay {
	return &FileDisplay{dir: dir, logger: logger}
}

// Show renders spec and writes it, replacing any earlier chart of that name.
func (d *FileDisplay) Show(ctx context.Context, name string, spec *models.ChartSpec) error {
	_, err := d.write(name, spec)
	return err
}

func (d *FileDisplay) write(name string, spec *models.ChartSpec) (string, error) {
	img, err := PNG(spec)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("chart: create output dir: %w", err)
	}

	path := filepath.Join(d.dir, name+".png")
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return "", fmt.Errorf("chart: write %q: %w", path, err)
	}

	d.logger.Info("[chart] %s saved to %s", spec.Title, path)
	return path, nil
}

// BrowserDisplay writes the chart like FileDisplay, then opens it in a Chrome
// window and blocks until the user closes that window.
type BrowserDisplay struct {
	files     *FileDisplay
	chromeBin string
	logger    *utils.Logger
}

func NewBrowserDisplay(dir, chromeBin string, logger *utils.Logger) *BrowserDisplay {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	return &BrowserDisplay{
		files:     NewFileDisplay(dir, logger),
		chromeBin: chromeBin,
		logger:    logger,
	}
}

func (d *BrowserDisplay) Show(ctx context.Context, name string, spec *models.ChartSpec) error {
	path, err := d.files.write(name, spec)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("chart: resolve %q: %w", path, err)
	}
	return d.open(ctx, fileURL(abs))
}

func (d *BrowserDisplay) open(ctx context.Context, pageURL string) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", false),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.WindowSize(chartWidth+40, chartHeight+120),
	)
	if d.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(d.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	if err := chromedp.Run(browserCtx, chromedp.Navigate(pageURL)); err != nil {
		return fmt.Errorf("chart: open browser: %w", err)
	}

	c := chromedp.FromContext(browserCtx)
	closed := make(chan struct{})
	chromedp.ListenBrowser(browserCtx, func(ev interface{}) {
		if e, ok := ev.(*target.EventTargetDestroyed); ok && e.TargetID == c.Target.TargetID {
			select {
			case <-closed:
			default:
				close(closed)
			}
		}
	})

	d.logger.Info("[chart] Close the chart window to return to the menu")
	select {
	case <-closed:
	case <-c.Browser.LostConnection:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func fileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// NoDisplay skips rendering altogether.
type NoDisplay struct{}

func (NoDisplay) Show(context.Context, string, *models.ChartSpec) error { return nil }

func findChromeBinary() string {
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

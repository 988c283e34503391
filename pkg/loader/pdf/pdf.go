// Package pdf implements the document boundary for PDF files: per-page
// text extraction and page-image rendering for the recognition fallback.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/doclens/doclens/pkg/logger"

	"github.com/ledongthuc/pdf"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/singleflight"
)

const (
	defaultRenderDPI = 200
	renderTimeout    = 120 * time.Second
)

// Renderer exposes one PDF file as ordered pages. Page text comes from
// the embedded text layer; page images are rendered with pdftoppm, so
// poppler-utils must be installed for the recognition fallback to work.
//
// A Renderer should be created using NewRenderer and closed after use.
type Renderer struct {
	path string
	dpi  int

	logger *logger.Logger

	openOnce sync.Once
	openErr  error
	file     *os.File
	reader   *pdf.Reader

	textLock  sync.RWMutex
	textCache map[int]string
	textGroup singleflight.Group
}

// NewRendererParams defines the configuration parameters for creating a
// new Renderer. Path is required; DPI falls back to 200.
type NewRendererParams struct {
	Path   string
	DPI    int
	Logger *logger.Logger
}

// NewRenderer creates a new Renderer for the PDF at params.Path. The file
// is opened lazily on first use.
func NewRenderer(params NewRendererParams) (*Renderer, error) {
	if params.Path == "" {
		return nil, errors.New("pdf path is required")
	}

	dpi := params.DPI
	if dpi <= 0 {
		dpi = defaultRenderDPI
	}

	return &Renderer{
		path:      params.Path,
		dpi:       dpi,
		logger:    params.Logger,
		textCache: make(map[int]string),
	}, nil
}

func (r *Renderer) open() error {
	r.openOnce.Do(func() {
		file, reader, err := pdf.Open(r.path)
		if err != nil {
			r.openErr = fmt.Errorf("opening pdf %s: %w", r.path, err)
			return
		}
		r.file = file
		r.reader = reader
	})
	return r.openErr
}

// Close releases the underlying file handle.
func (r *Renderer) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}

// PageCount returns the number of pages in the document.
func (r *Renderer) PageCount(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := r.open(); err != nil {
		return 0, err
	}
	return r.reader.NumPage(), nil
}

// PageText extracts the text layer of page pageIndex (zero-based).
// Results are cached; concurrent requests for the same page collapse
// into one extraction.
func (r *Renderer) PageText(ctx context.Context, pageIndex int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := r.open(); err != nil {
		return "", err
	}

	r.textLock.RLock()
	cached, ok := r.textCache[pageIndex]
	r.textLock.RUnlock()
	if ok {
		return cached, nil
	}

	text, err, _ := r.textGroup.Do(strconv.Itoa(pageIndex), func() (any, error) {
		page := r.reader.Page(pageIndex + 1)
		if page.V.IsNull() {
			return "", nil
		}

		extracted, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extracting text from page %d: %w", pageIndex, err)
		}

		extracted = strings.TrimSpace(extracted)

		r.textLock.Lock()
		r.textCache[pageIndex] = extracted
		r.textLock.Unlock()

		return extracted, nil
	})
	if err != nil {
		return "", err
	}

	return text.(string), nil
}

// PageImage renders page pageIndex (zero-based) to a PNG using pdftoppm.
func (r *Renderer) PageImage(ctx context.Context, pageIndex int) ([]byte, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("pdftoppm not found in PATH: %w", err)
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("nanoid: %w", err)
	}
	tmpDir := filepath.Join(os.TempDir(), "doclens-render-"+id)
	if err := os.MkdirAll(tmpDir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir tmp: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	ctx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()

	pageNum := pageIndex + 1
	prefix := filepath.Join(tmpDir, fmt.Sprintf("page-%04d", pageNum))

	args := []string{
		"-png",
		"-r", strconv.Itoa(r.dpi),
		"-q",
		"-singlefile",
		"-f", strconv.Itoa(pageNum),
		"-l", strconv.Itoa(pageNum),
		r.path,
		prefix,
	}

	cmd := exec.CommandContext(ctx, "pdftoppm", args...)
	cmd.Env = append(os.Environ(), "LANG=C.UTF-8", "LC_ALL=C.UTF-8")
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("pdftoppm timed out on page %d", pageNum)
	}
	if err != nil {
		return nil, fmt.Errorf(
			"pdftoppm failed on page %d: %w: %s",
			pageNum, err, strings.TrimSpace(string(out)),
		)
	}

	image, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("read rendered page %d: %w", pageNum, err)
	}

	r.logger.Debug("page rendered", "page", pageIndex, "bytes", len(image))

	return image, nil
}

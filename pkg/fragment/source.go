package fragment

import (
	"context"
	"fmt"

	"github.com/doclens/doclens/pkg/common"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// PageRenderer is the document boundary. Implementations open one
// document and expose its pages as text and as rendered images.
type PageRenderer interface {
	PageCount(ctx context.Context) (int, error)
	PageText(ctx context.Context, pageIndex int) (string, error)
	PageImage(ctx context.Context, pageIndex int) ([]byte, error)
}

// TextRecognizer transcribes a rendered page image back into text. Used
// as a fallback when direct extraction yields too little text.
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte, languageHints []string) (string, error)
}

// DocumentUnreadableError is the only fatal pipeline error. It means the
// document could not be opened or paginated at all; every other failure
// is chunk-local.
type DocumentUnreadableError struct {
	Cause error
}

func (e *DocumentUnreadableError) Error() string {
	return fmt.Sprintf("document unreadable: %v", e.Cause)
}

func (e *DocumentUnreadableError) Unwrap() error {
	return e.Cause
}

// loadPages extracts every page's text in order. A page whose direct
// text falls below the noise threshold is rendered and passed through
// the recognizer; when recognition itself fails, the page keeps whatever
// direct text it had. Page loading never fails past this point, only
// pagination can.
func (c *FragmentClient) loadPages(
	ctx context.Context,
	renderer PageRenderer,
) ([]common.Page, error) {
	count, err := renderer.PageCount(ctx)
	if err != nil {
		return nil, &DocumentUnreadableError{Cause: err}
	}

	pages := make([]common.Page, 0, count)
	for i := 0; i < count; i++ {
		text, err := renderer.PageText(ctx, i)
		if err != nil {
			c.logger.Warn("page text extraction failed", "page", i, "error", err)
			text = ""
		}

		method := common.ExtractMethodDirect
		if len([]rune(text)) < c.noiseThreshold && c.recognizer != nil {
			if recognized, ok := c.recognizePage(ctx, renderer, i); ok {
				text = recognized
				method = common.ExtractMethodRecognized
			}
		}

		c.logger.Debug("page loaded", "page", i, "method", method, "chars", len(text))
		pages = append(pages, common.Page{
			Index:  i,
			Text:   text,
			Method: method,
		})
	}

	return pages, nil
}

func (c *FragmentClient) recognizePage(
	ctx context.Context,
	renderer PageRenderer,
	pageIndex int,
) (string, bool) {
	image, err := renderer.PageImage(ctx, pageIndex)
	if err != nil {
		c.logger.Warn("page render failed", "page", pageIndex, "error", err)
		return "", false
	}

	text, err := c.recognizer.Recognize(ctx, image, c.languageHints)
	if err != nil {
		c.logger.Warn("page recognition failed", "page", pageIndex, "error", err)
		return "", false
	}

	return text, true
}

// chunkPlan is the dispatch decision for one document.
type chunkPlan struct {
	// Visual is true when the document is small enough for the
	// whole-document pipeline. Chunks still carry a fallback plan
	// covering all pages in case no visual collaborator is wired.
	Visual bool
	Chunks []common.Chunk
}

// planChunks partitions the loaded pages into ordered, non-overlapping
// chunks. Documents at or below the page threshold are flagged for the
// whole-document pipeline. The partition is deterministic; only the
// generated chunk IDs differ between runs.
func (c *FragmentClient) planChunks(pages []common.Page) (*chunkPlan, error) {
	size := c.chunkSize
	if c.fineGrained {
		size = 1
	}

	visual := len(pages) <= c.pageThreshold

	chunks := make([]common.Chunk, 0, (len(pages)+size-1)/size)
	for start := 0; start < len(pages); start += size {
		end := start + size
		if end > len(pages) {
			end = len(pages)
		}

		id, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("failed to generate chunk id: %w", err)
		}

		text := ""
		method := common.ExtractMethodDirect
		for _, page := range pages[start:end] {
			if text != "" {
				text += "\n"
			}
			text += page.Text
			if page.Method == common.ExtractMethodRecognized {
				method = common.ExtractMethodRecognized
			}
		}

		chunks = append(chunks, common.Chunk{
			ID:     id,
			Index:  len(chunks),
			Text:   text,
			Method: method,
		})
	}

	return &chunkPlan{
		Visual: visual,
		Chunks: chunks,
	}, nil
}

package fragment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/doclens/doclens/pkg/common"
)

type stubRenderer struct {
	pages    []string
	countErr error
	textErr  map[int]error
	imageErr map[int]error
}

func (r *stubRenderer) PageCount(ctx context.Context) (int, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	return len(r.pages), nil
}

func (r *stubRenderer) PageText(ctx context.Context, pageIndex int) (string, error) {
	if err := r.textErr[pageIndex]; err != nil {
		return "", err
	}
	return r.pages[pageIndex], nil
}

func (r *stubRenderer) PageImage(ctx context.Context, pageIndex int) ([]byte, error) {
	if err := r.imageErr[pageIndex]; err != nil {
		return nil, err
	}
	return []byte("image-" + string(rune('0'+pageIndex))), nil
}

type stubRecognizer struct {
	texts map[string]string
	err   error
	calls int
}

func (r *stubRecognizer) Recognize(
	ctx context.Context,
	image []byte,
	languageHints []string,
) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return r.texts[string(image)], nil
}

func newSourceTestClient(t *testing.T, recognizer TextRecognizer) *FragmentClient {
	t.Helper()
	client, err := NewFragmentClient(NewFragmentClientParams{
		Oracle:     &stubOracle{},
		Recognizer: recognizer,
	})
	if err != nil {
		t.Fatalf("NewFragmentClient: %v", err)
	}
	return client
}

func TestLoadPages_DirectText(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("text ", 20)
	client := newSourceTestClient(t, nil)
	pages, err := client.loadPages(context.Background(), &stubRenderer{
		pages: []string{long, long},
	})
	if err != nil {
		t.Fatalf("loadPages: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	for _, page := range pages {
		if page.Method != common.ExtractMethodDirect {
			t.Fatalf("expected direct method, got %s", page.Method)
		}
	}
}

func TestLoadPages_NoiseFallback(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("text ", 20)
	recognizer := &stubRecognizer{texts: map[string]string{
		"image-1": "recognized page text",
	}}
	client := newSourceTestClient(t, recognizer)

	pages, err := client.loadPages(context.Background(), &stubRenderer{
		pages: []string{long, "x", long},
	})
	if err != nil {
		t.Fatalf("loadPages: %v", err)
	}

	if pages[1].Method != common.ExtractMethodRecognized {
		t.Fatalf("expected recognized method for noisy page, got %s", pages[1].Method)
	}
	if pages[1].Text != "recognized page text" {
		t.Fatalf("expected recognized text, got %q", pages[1].Text)
	}
	if pages[0].Method != common.ExtractMethodDirect || pages[2].Method != common.ExtractMethodDirect {
		t.Fatal("expected direct method for pages with enough text")
	}
	if recognizer.calls != 1 {
		t.Fatalf("expected 1 recognition call, got %d", recognizer.calls)
	}
}

func TestLoadPages_RecognitionFailureKeepsDirectText(t *testing.T) {
	t.Parallel()

	recognizer := &stubRecognizer{err: errors.New("vision down")}
	client := newSourceTestClient(t, recognizer)

	pages, err := client.loadPages(context.Background(), &stubRenderer{
		pages: []string{"tiny"},
	})
	if err != nil {
		t.Fatalf("recognition failure must not fail page loading: %v", err)
	}
	if pages[0].Text != "tiny" || pages[0].Method != common.ExtractMethodDirect {
		t.Fatalf("expected direct text kept, got %+v", pages[0])
	}
}

func TestLoadPages_UnreadableDocument(t *testing.T) {
	t.Parallel()

	client := newSourceTestClient(t, nil)
	_, err := client.loadPages(context.Background(), &stubRenderer{
		countErr: errors.New("not a pdf"),
	})

	var unreadable *DocumentUnreadableError
	if !errors.As(err, &unreadable) {
		t.Fatalf("expected DocumentUnreadableError, got %v", err)
	}
}

func TestPlanChunks_Partition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		pages       int
		chunkSize   int
		fineGrained bool
		wantChunks  int
		wantVisual  bool
	}{
		{
			name:       "at threshold flagged visual",
			pages:      50,
			chunkSize:  50,
			wantChunks: 1,
			wantVisual: true,
		},
		{
			name:       "above threshold chunked",
			pages:      120,
			chunkSize:  50,
			wantChunks: 3,
			wantVisual: false,
		},
		{
			name:       "exact multiple",
			pages:      100,
			chunkSize:  50,
			wantChunks: 2,
			wantVisual: false,
		},
		{
			name:        "fine grained one page per chunk",
			pages:       60,
			chunkSize:   50,
			fineGrained: true,
			wantChunks:  60,
			wantVisual:  false,
		},
		{
			name:       "empty document",
			pages:      0,
			chunkSize:  50,
			wantChunks: 0,
			wantVisual: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewFragmentClient(NewFragmentClientParams{
				Oracle:      &stubOracle{},
				ChunkSize:   tc.chunkSize,
				FineGrained: tc.fineGrained,
			})
			if err != nil {
				t.Fatalf("NewFragmentClient: %v", err)
			}

			pages := make([]common.Page, tc.pages)
			for i := range pages {
				pages[i] = common.Page{
					Index:  i,
					Text:   "page",
					Method: common.ExtractMethodDirect,
				}
			}

			plan, err := client.planChunks(pages)
			if err != nil {
				t.Fatalf("planChunks: %v", err)
			}
			if len(plan.Chunks) != tc.wantChunks {
				t.Fatalf("expected %d chunks, got %d", tc.wantChunks, len(plan.Chunks))
			}
			if plan.Visual != tc.wantVisual {
				t.Fatalf("expected visual=%v, got %v", tc.wantVisual, plan.Visual)
			}
			for i, chunk := range plan.Chunks {
				if chunk.Index != i {
					t.Fatalf("chunk %d has index %d", i, chunk.Index)
				}
				if chunk.ID == "" {
					t.Fatalf("chunk %d has empty id", i)
				}
			}
		})
	}
}

func TestPlanChunks_RecognizedMethodPropagates(t *testing.T) {
	t.Parallel()

	client := newSourceTestClient(t, nil)
	pages := []common.Page{
		{Index: 0, Text: "a", Method: common.ExtractMethodDirect},
		{Index: 1, Text: "b", Method: common.ExtractMethodRecognized},
	}

	plan, err := client.planChunks(pages)
	if err != nil {
		t.Fatalf("planChunks: %v", err)
	}
	if len(plan.Chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(plan.Chunks))
	}
	if plan.Chunks[0].Method != common.ExtractMethodRecognized {
		t.Fatal("expected chunk method recognized when any page fell back")
	}
}

package server

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestUploadCreatesPendingItems(t *testing.T) {
	e := newTestEnv(t, &stubExtractor{})

	ids := e.upload(t,
		uploadFile{name: "apfelkuchen.txt", content: []byte("500 g Mehl")},
		uploadFile{name: "pfannkuchen.md", content: []byte("# Pfannkuchen")},
	)

	rec := e.do(t, http.MethodGet, "/api/queue", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var resp queueResp
	decodeJSON(t, rec, &resp)
	if resp.Processing {
		t.Error("queue must not be processing after upload alone")
	}
	if len(resp.Items) != 2 {
		t.Fatalf("queue has %d items, want 2", len(resp.Items))
	}
	for i, it := range resp.Items {
		if it.ID != ids[i] {
			t.Errorf("item %d out of upload order", i)
		}
		if it.Status != "PENDING" {
			t.Errorf("item %d status = %s, want PENDING", i, it.Status)
		}
	}
	if resp.Items[0].FileName != "apfelkuchen.txt" || resp.Items[1].FileName != "pfannkuchen.md" {
		t.Errorf("file names = %q, %q", resp.Items[0].FileName, resp.Items[1].FileName)
	}

	// The raw bytes are spooled to disk for the batch run.
	id, err := uuid.Parse(ids[0])
	if err != nil {
		t.Fatal(err)
	}
	it, ok := e.store.Get(id)
	if !ok {
		t.Fatal("item missing from store")
	}
	data, err := os.ReadFile(it.Path)
	if err != nil {
		t.Fatalf("spool file: %v", err)
	}
	if string(data) != "500 g Mehl" {
		t.Errorf("spooled content = %q", data)
	}
}

func TestUploadRejectsEmptyForm(t *testing.T) {
	e := newTestEnv(t, &stubExtractor{})

	// Multipart form without any file part.
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if err := w.WriteField("note", "no files here"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/queue/files", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Errorf("body = %s, want error payload", rec.Body.String())
	}

	// Not multipart at all.
	rec = e.do(t, http.MethodPost, "/api/queue/files", map[string]string{"files": "nope"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestProcessBatchMovesItemsToReview(t *testing.T) {
	e := newTestEnv(t, &stubExtractor{})
	ids := e.upload(t,
		uploadFile{name: "a.txt", content: []byte("first")},
		uploadFile{name: "b.txt", content: []byte("second")},
	)

	rec := e.do(t, http.MethodPost, "/api/queue/process", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("process status = %d, body %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		Scheduled int `json:"scheduled"`
	}
	decodeJSON(t, rec, &accepted)
	if accepted.Scheduled != 2 {
		t.Fatalf("scheduled = %d, want 2", accepted.Scheduled)
	}
	e.waitIdle(t)

	rec = e.do(t, http.MethodGet, "/api/queue", nil)
	var resp queueResp
	decodeJSON(t, rec, &resp)
	if resp.Processing {
		t.Error("processing flag still set after batch end")
	}
	for i, it := range resp.Items {
		if it.Status != "REVIEW" {
			t.Errorf("item %d status = %s, want REVIEW", i, it.Status)
		}
		if it.Recipe == nil {
			t.Fatalf("item %d has no recipe", i)
		}
	}
	if resp.Items[0].Recipe.Name != "Recipe from a.txt" {
		t.Errorf("recipe name = %q", resp.Items[0].Recipe.Name)
	}

	// The first finished item was selected for review automatically.
	rec = e.do(t, http.MethodGet, "/api/review", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("review status = %d", rec.Code)
	}
	var form formResp
	decodeJSON(t, rec, &form)
	if form.ItemID != ids[0] {
		t.Errorf("selected item = %s, want %s", form.ItemID, ids[0])
	}
}

func TestProcessConflictWhileRunning(t *testing.T) {
	ex := &stubExtractor{
		gate:    make(chan struct{}),
		started: make(chan string, 8),
	}
	e := newTestEnv(t, ex)
	e.upload(t, uploadFile{name: "slow.txt", content: []byte("x")})

	if rec := e.do(t, http.MethodPost, "/api/queue/process", nil); rec.Code != http.StatusAccepted {
		t.Fatalf("first process status = %d", rec.Code)
	}
	<-ex.started

	rec := e.do(t, http.MethodPost, "/api/queue/process", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("second process status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "batch already running") {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = e.do(t, http.MethodGet, "/api/queue", nil)
	var resp queueResp
	decodeJSON(t, rec, &resp)
	if !resp.Processing {
		t.Error("processing flag not set while batch runs")
	}

	close(ex.gate)
	e.waitIdle(t)
}

func TestProcessFailureIsIsolated(t *testing.T) {
	ex := &stubExtractor{failOn: map[string]error{
		"burnt.txt": errors.New("model refused the request"),
	}}
	e := newTestEnv(t, ex)
	ids := e.upload(t,
		uploadFile{name: "good.txt", content: []byte("fine")},
		uploadFile{name: "burnt.txt", content: []byte("bad")},
	)

	e.do(t, http.MethodPost, "/api/queue/process", nil)
	e.waitIdle(t)

	rec := e.do(t, http.MethodGet, "/api/queue/"+ids[1], nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var failed itemResp
	decodeJSON(t, rec, &failed)
	if failed.Status != "ERROR" {
		t.Fatalf("status = %s, want ERROR", failed.Status)
	}
	if failed.Error == nil || failed.Error.Kind != "extraction" {
		t.Fatalf("error = %+v, want extraction kind", failed.Error)
	}
	if !strings.Contains(failed.Error.Message, "model refused") {
		t.Errorf("message = %q", failed.Error.Message)
	}

	rec = e.do(t, http.MethodGet, "/api/queue/"+ids[0], nil)
	var good itemResp
	decodeJSON(t, rec, &good)
	if good.Status != "REVIEW" {
		t.Errorf("good item status = %s, want REVIEW", good.Status)
	}
}

func TestGetItemErrors(t *testing.T) {
	e := newTestEnv(t, &stubExtractor{})

	if rec := e.do(t, http.MethodGet, "/api/queue/not-a-uuid", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid id status = %d, want 400", rec.Code)
	}
	if rec := e.do(t, http.MethodGet, "/api/queue/"+uuid.NewString(), nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 220, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestPreviewForImage(t *testing.T) {
	e := newTestEnv(t, &stubExtractor{})
	ids := e.upload(t, uploadFile{name: "photo.png", content: pngBytes(t, 800, 400)})

	rec := e.do(t, http.MethodGet, "/api/queue/"+ids[0]+"/preview", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content type = %s, want image/jpeg", ct)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("empty preview body")
	}

	// The thumbnail path is remembered so the next request reuses it.
	id, _ := uuid.Parse(ids[0])
	it, _ := e.store.Get(id)
	if it.PreviewPath == "" {
		t.Fatal("preview path not recorded on item")
	}
	if _, err := os.Stat(it.PreviewPath); err != nil {
		t.Fatalf("cached preview missing: %v", err)
	}

	rec = e.do(t, http.MethodGet, "/api/queue/"+ids[0]+"/preview", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cached preview status = %d", rec.Code)
	}
}

func TestPreviewForPDFServesRawBytes(t *testing.T) {
	e := newTestEnv(t, &stubExtractor{})
	raw := []byte("%PDF-1.4\n% fake pdf for preview\n")
	ids := e.upload(t, uploadFile{name: "menu.pdf", content: raw})

	rec := e.do(t, http.MethodGet, "/api/queue/"+ids[0]+"/preview", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %s, want application/pdf", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), raw) {
		t.Error("pdf preview body does not match the uploaded file")
	}
}

func TestPreviewUnsupportedType(t *testing.T) {
	e := newTestEnv(t, &stubExtractor{})
	ids := e.upload(t, uploadFile{name: "notes.txt", content: []byte("text only")})

	rec := e.do(t, http.MethodGet, "/api/queue/"+ids[0]+"/preview", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("preview status = %d, want 404", rec.Code)
	}
}

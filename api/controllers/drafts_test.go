package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techhub-commerce/admin-gateway/internal/sessions"
	"github.com/techhub-commerce/admin-gateway/pkg/catalog"
	pkgerrors "github.com/techhub-commerce/admin-gateway/pkg/errors"
	"github.com/techhub-commerce/admin-gateway/pkg/types"
)

type stubUploader struct {
	err   error
	calls int
}

func (s *stubUploader) Upload(ctx context.Context, data []byte, suggestedName, contentType string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "https://storage.example.com/bucket/" + suggestedName, nil
}

type stubCreator struct {
	err      error
	payloads []catalog.CreateProductPayload
	bearers  []string
}

func (s *stubCreator) CreateProduct(ctx context.Context, payload catalog.CreateProductPayload, bearer string) (*catalog.CreatedProduct, error) {
	s.payloads = append(s.payloads, payload)
	s.bearers = append(s.bearers, bearer)
	if s.err != nil {
		return nil, s.err
	}
	return &catalog.CreatedProduct{ID: "prod-9", Name: payload.Name, Status: payload.Status}, nil
}

func newTestRegistry(t *testing.T) (*sessions.Registry, *stubUploader, *stubCreator) {
	t.Helper()
	uploader := &stubUploader{}
	creator := &stubCreator{}
	registry, err := sessions.NewRegistry(sessions.RegistryConfig{
		Uploader: uploader,
		Products: creator,
	})
	require.NoError(t, err)
	return registry, uploader, creator
}

func newSession(t *testing.T, registry *sessions.Registry) *sessions.Session {
	t.Helper()
	session, err := registry.Create(context.Background())
	require.NoError(t, err)
	return session
}

func draftRequest(method, target, draftID string, body *bytes.Buffer) *http.Request {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	rc := chi.NewRouteContext()
	rc.URLParams.Add("draftId", draftID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func draftRequestWithIndex(method, target, draftID, indexKey, index string, body *bytes.Buffer) *http.Request {
	req := draftRequest(method, target, draftID, body)
	chi.RouteContext(req.Context()).URLParams.Add(indexKey, index)
	return req
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok, "expected object payload, got %T", envelope.Data)
	return data
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope.Error.Code
}

func TestCreateDraftReturnsSession(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	rec := httptest.NewRecorder()

	CreateDraft(registry, nil)(rec, httptest.NewRequest(http.MethodPost, "/api/v1/drafts", nil))

	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeData(t, rec)
	assert.NotEmpty(t, data["draft_id"])
	assert.Equal(t, "idle", data["state"])

	images, ok := data["images"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(0), images["count"])
	assert.Equal(t, false, images["ready"])
}

func TestGetDraftUnknownID(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	rec := httptest.NewRecorder()

	GetDraft(registry, nil)(rec, draftRequest(http.MethodGet, "/api/v1/drafts/missing", "missing", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeNotFound), decodeErrorCode(t, rec))
}

func TestPatchDraftAppliesPartialUpdate(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	session := newSession(t, registry)

	body := bytes.NewBufferString(`{"name":"Phone","price":"500"}`)
	rec := httptest.NewRecorder()
	PatchDraft(registry, nil)(rec, draftRequest(http.MethodPatch, "/api/v1/drafts/"+session.ID(), session.ID(), body))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	draft, ok := data["draft"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Phone", draft["name"])
	assert.Equal(t, "500", draft["price"])
	assert.Equal(t, "", draft["category_id"], "untouched fields keep their values")
}

func TestPatchDraftRejectsUnknownFields(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	session := newSession(t, registry)

	body := bytes.NewBufferString(`{"bogus":"x"}`)
	rec := httptest.NewRecorder()
	PatchDraft(registry, nil)(rec, draftRequest(http.MethodPatch, "/api/v1/drafts/"+session.ID(), session.ID(), body))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decodeErrorCode(t, rec))
}

func TestSpecLifecycle(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	session := newSession(t, registry)
	id := session.ID()

	// Add two rows.
	for _, payload := range []string{`{"key":"Color","value":"Black"}`, `{"key":"Storage","value":"128GB"}`} {
		rec := httptest.NewRecorder()
		AddSpec(registry, nil)(rec, draftRequest(http.MethodPost, "/api/v1/drafts/"+id+"/specs", id, bytes.NewBufferString(payload)))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	// Update the second.
	rec := httptest.NewRecorder()
	UpdateSpec(registry, nil)(rec, draftRequestWithIndex(http.MethodPatch, "/api/v1/drafts/"+id+"/specs/1", id, "index", "1", bytes.NewBufferString(`{"key":"Storage","value":"256GB"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	// Update out of range is not found.
	rec = httptest.NewRecorder()
	UpdateSpec(registry, nil)(rec, draftRequestWithIndex(http.MethodPatch, "/api/v1/drafts/"+id+"/specs/9", id, "index", "9", bytes.NewBufferString(`{"key":"x","value":"y"}`)))
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Remove out of range is a silent no-op.
	rec = httptest.NewRecorder()
	RemoveSpec(registry, nil)(rec, draftRequestWithIndex(http.MethodDelete, "/api/v1/drafts/"+id+"/specs/9", id, "index", "9", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// Remove the first and confirm the survivor.
	rec = httptest.NewRecorder()
	RemoveSpec(registry, nil)(rec, draftRequestWithIndex(http.MethodDelete, "/api/v1/drafts/"+id+"/specs/0", id, "index", "0", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData(t, rec)
	draft := data["draft"].(map[string]any)
	specs, ok := draft["specifications"].([]any)
	require.True(t, ok)
	require.Len(t, specs, 1)
	assert.Equal(t, "Storage", specs[0].(map[string]any)["key"])
	assert.Equal(t, "256GB", specs[0].(map[string]any)["value"])
}

func TestAddSpecRequiresKey(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	session := newSession(t, registry)

	rec := httptest.NewRecorder()
	AddSpec(registry, nil)(rec, draftRequest(http.MethodPost, "/api/v1/drafts/"+session.ID()+"/specs", session.ID(), bytes.NewBufferString(`{"value":"Black"}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decodeErrorCode(t, rec))
}

func TestDeleteDraftRemovesSession(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	session := newSession(t, registry)

	rec := httptest.NewRecorder()
	DeleteDraft(registry, nil)(rec, draftRequest(http.MethodDelete, "/api/v1/drafts/"+session.ID(), session.ID(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := registry.Get(session.ID())
	require.Error(t, err)
}

// multipartBody builds a multipart request body with the given files under
// the "files" field.
func multipartBody(t *testing.T, files ...[3]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, f[0]))
		header.Set("Content-Type", f[1])
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte(f[2]))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func stageBatch(t *testing.T, registry *sessions.Registry, session *sessions.Session, files ...[3]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, files...)
	req := draftRequest(http.MethodPost, "/api/v1/drafts/"+session.ID()+"/images", session.ID(), body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	StageImages(registry, 10<<20, nil, nil)(rec, req)
	return rec
}

func pngFile(name string) [3]string {
	return [3]string{name, "image/png", "\x89PNG fake"}
}

func TestStageImagesAcceptsBatch(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	session := newSession(t, registry)

	rec := stageBatch(t, registry, session, pngFile("a.png"), pngFile("b.png"))
	require.Equal(t, http.StatusCreated, rec.Code)

	data := decodeData(t, rec)
	assert.Equal(t, float64(2), data["count"])
	assert.Equal(t, float64(8), data["remaining_capacity"])
	assert.Equal(t, false, data["ready"])

	items := data["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, float64(0), first["position"])
	assert.Equal(t, "a.png", first["name"])
	assert.True(t, strings.HasPrefix(first["preview"].(string), "data:image/png;base64,"))
}

func TestStageImagesFiltersNonImages(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	session := newSession(t, registry)

	rec := stageBatch(t, registry, session,
		pngFile("a.png"),
		[3]string{"doc.pdf", "application/pdf", "pdf"},
	)
	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, float64(1), data["count"], "non-image parts are dropped silently")
}

func TestStageImagesRejectsImagelessBatch(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	session := newSession(t, registry)

	rec := stageBatch(t, registry, session, [3]string{"doc.pdf", "application/pdf", "pdf"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decodeErrorCode(t, rec))
}

func TestStageImagesRejectsOverCapacityBatch(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	session := newSession(t, registry)

	var first [][3]string
	for i := 0; i < 8; i++ {
		first = append(first, pngFile(fmt.Sprintf("f-%d.png", i)))
	}
	require.Equal(t, http.StatusCreated, stageBatch(t, registry, session, first...).Code)

	rec := stageBatch(t, registry, session, pngFile("x.png"), pngFile("y.png"), pngFile("z.png"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	status := httptest.NewRecorder()
	ListImages(registry, nil)(status, draftRequest(http.MethodGet, "/api/v1/drafts/"+session.ID()+"/images", session.ID(), nil))
	data := decodeData(t, status)
	assert.Equal(t, float64(8), data["count"], "rejected batch must not partially apply")
}

func TestStageImagesEnforcesSizeLimit(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	session := newSession(t, registry)

	body, contentType := multipartBody(t, [3]string{"big.png", "image/png", strings.Repeat("x", 2048)})
	req := draftRequest(http.MethodPost, "/api/v1/drafts/"+session.ID()+"/images", session.ID(), body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	StageImages(registry, 1024, nil, nil)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decodeErrorCode(t, rec))
}

func TestRemoveImageClosesGap(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	session := newSession(t, registry)
	require.Equal(t, http.StatusCreated, stageBatch(t, registry, session, pngFile("a.png"), pngFile("b.png"), pngFile("c.png")).Code)

	rec := httptest.NewRecorder()
	RemoveImage(registry, nil)(rec, draftRequestWithIndex(http.MethodDelete, "/api/v1/drafts/"+session.ID()+"/images/1", session.ID(), "position", "1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData(t, rec)
	assert.Equal(t, float64(2), data["count"])
	items := data["items"].([]any)
	assert.Equal(t, "a.png", items[0].(map[string]any)["name"])
	assert.Equal(t, "c.png", items[1].(map[string]any)["name"])

	// Out-of-range removal is a silent no-op.
	rec = httptest.NewRecorder()
	RemoveImage(registry, nil)(rec, draftRequestWithIndex(http.MethodDelete, "/api/v1/drafts/"+session.ID()+"/images/9", session.ID(), "position", "9", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeData(t, rec)["count"])
}

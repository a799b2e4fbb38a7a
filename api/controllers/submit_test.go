package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techhub-commerce/admin-gateway/api/middleware"
	"github.com/techhub-commerce/admin-gateway/internal/sessions"
	pkgerrors "github.com/techhub-commerce/admin-gateway/pkg/errors"
	"github.com/techhub-commerce/admin-gateway/pkg/types"
)

func eligibleSession(t *testing.T, registry *sessions.Registry) *sessions.Session {
	t.Helper()
	session := newSession(t, registry)

	body := bytes.NewBufferString(`{"name":"Phone","price":"500","category_id":"cat-1"}`)
	rec := httptest.NewRecorder()
	PatchDraft(registry, nil)(rec, draftRequest(http.MethodPatch, "/api/v1/drafts/"+session.ID(), session.ID(), body))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = stageBatch(t, registry, session,
		pngFile("a.png"), pngFile("b.png"), pngFile("c.png"), pngFile("d.png"))
	require.Equal(t, http.StatusCreated, rec.Code)
	return session
}

func jsonDecode(rec *httptest.ResponseRecorder, dest any) error {
	return json.NewDecoder(rec.Body).Decode(dest)
}

func submitRequest(session *sessions.Session, bearer string) *http.Request {
	req := draftRequest(http.MethodPost, "/api/v1/drafts/"+session.ID()+"/submit", session.ID(), nil)
	if bearer != "" {
		req = req.WithContext(middleware.WithBearer(req.Context(), bearer))
	}
	return req
}

func TestSubmitDraftSuccess(t *testing.T) {
	registry, uploader, creator := newTestRegistry(t)
	session := eligibleSession(t, registry)

	rec := httptest.NewRecorder()
	SubmitDraft(registry, nil)(rec, submitRequest(session, "token-1"))

	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, "prod-9", data["product_id"])

	assert.Equal(t, 4, uploader.calls)
	require.Len(t, creator.payloads, 1)
	assert.Equal(t, "token-1", creator.bearers[0])
	assert.Equal(t, 500.0, creator.payloads[0].Price)
	assert.Len(t, creator.payloads[0].Media, 4)

	// Staged set cleared: a second submit fails validation on image count.
	rec = httptest.NewRecorder()
	SubmitDraft(registry, nil)(rec, submitRequest(session, "token-1"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decodeErrorCode(t, rec))
}

func TestSubmitDraftValidationFailureListsViolations(t *testing.T) {
	registry, uploader, _ := newTestRegistry(t)
	session := newSession(t, registry)

	rec := httptest.NewRecorder()
	SubmitDraft(registry, nil)(rec, submitRequest(session, "token-1"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope types.ErrorEnvelope
	require.NoError(t, jsonDecode(rec, &envelope))
	assert.Equal(t, string(pkgerrors.CodeValidation), envelope.Error.Code)

	details, ok := envelope.Error.Details.(map[string]any)
	require.True(t, ok)
	violations, ok := details["violations"].([]any)
	require.True(t, ok)
	assert.Len(t, violations, 4)
	assert.Equal(t, 0, uploader.calls, "validation failure must not reach the network")
}

func TestSubmitDraftUploadFailureCarriesIndex(t *testing.T) {
	registry, uploader, creator := newTestRegistry(t)
	session := eligibleSession(t, registry)
	uploader.err = assert.AnError

	rec := httptest.NewRecorder()
	SubmitDraft(registry, nil)(rec, submitRequest(session, "token-1"))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var envelope types.ErrorEnvelope
	require.NoError(t, jsonDecode(rec, &envelope))
	assert.Equal(t, string(pkgerrors.CodeUpload), envelope.Error.Code)

	details := envelope.Error.Details.(map[string]any)
	assert.Equal(t, float64(0), details["index"])
	assert.Empty(t, creator.payloads)

	// Failure leaves the staged set intact for a retry.
	status := httptest.NewRecorder()
	ListImages(registry, nil)(status, draftRequest(http.MethodGet, "/api/v1/drafts/"+session.ID()+"/images", session.ID(), nil))
	assert.Equal(t, float64(4), decodeData(t, status)["count"])
}

func TestSubmitDraftRejectedCreateSurfacesServerMessage(t *testing.T) {
	registry, _, creator := newTestRegistry(t)
	session := eligibleSession(t, registry)
	creator.err = pkgerrors.New(pkgerrors.CodeSubmission, "sku already exists")

	rec := httptest.NewRecorder()
	SubmitDraft(registry, nil)(rec, submitRequest(session, "token-1"))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var envelope types.ErrorEnvelope
	require.NoError(t, jsonDecode(rec, &envelope))
	assert.Equal(t, string(pkgerrors.CodeSubmission), envelope.Error.Code)
	assert.Equal(t, "sku already exists", envelope.Error.Message)

	status := httptest.NewRecorder()
	ListImages(registry, nil)(status, draftRequest(http.MethodGet, "/api/v1/drafts/"+session.ID()+"/images", session.ID(), nil))
	assert.Equal(t, float64(4), decodeData(t, status)["count"])
}

func TestSubmitDraftUnknownSession(t *testing.T) {
	registry, _, _ := newTestRegistry(t)

	rec := httptest.NewRecorder()
	SubmitDraft(registry, nil)(rec, draftRequest(http.MethodPost, "/api/v1/drafts/nope/submit", "nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/techhub-commerce/admin-gateway/api/responses"
	"github.com/techhub-commerce/admin-gateway/api/validators"
	"github.com/techhub-commerce/admin-gateway/internal/drafts"
	"github.com/techhub-commerce/admin-gateway/internal/sessions"
	"github.com/techhub-commerce/admin-gateway/internal/staging"
	pkgerrors "github.com/techhub-commerce/admin-gateway/pkg/errors"
	"github.com/techhub-commerce/admin-gateway/pkg/logger"
)

type draftView struct {
	DraftID   string        `json:"draft_id"`
	Draft     *drafts.Draft `json:"draft"`
	Images    imagesStatus  `json:"images"`
	State     string        `json:"state"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type imagesStatus struct {
	Count             int         `json:"count"`
	MinImages         int         `json:"min_images"`
	MaxImages         int         `json:"max_images"`
	RemainingCapacity int         `json:"remaining_capacity"`
	Ready             bool        `json:"ready"`
	Items             []imageView `json:"items"`
}

type imageView struct {
	Position    int    `json:"position"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Preview     string `json:"preview"`
}

func buildImagesStatus(images *staging.Manager) imagesStatus {
	snapshot := images.Snapshot()
	items := make([]imageView, 0, len(snapshot))
	for position, img := range snapshot {
		items = append(items, imageView{
			Position:    position,
			Name:        img.File.Name(),
			ContentType: img.File.ContentType(),
			Size:        img.File.Size(),
			Preview:     img.PreviewDataURI,
		})
	}
	return imagesStatus{
		Count:             images.Len(),
		MinImages:         images.MinImages(),
		MaxImages:         images.MaxImages(),
		RemainingCapacity: images.RemainingCapacity(),
		Ready:             images.IsReady(),
		Items:             items,
	}
}

func buildDraftView(session *sessions.Session) draftView {
	var view draftView
	session.View(func(draft *drafts.Draft, images *staging.Manager) {
		view = draftView{
			DraftID: session.ID(),
			Draft:   draft,
			Images:  buildImagesStatus(images),
			State:   string(session.SubmissionState()),
		}
	})
	view.UpdatedAt = session.UpdatedAt()
	return view
}

func resolveSession(registry *sessions.Registry, r *http.Request) (*sessions.Session, error) {
	return registry.Get(chi.URLParam(r, "draftId"))
}

// CreateDraft opens a fresh draft session and returns its id plus the empty
// form so the UI can render immediately.
func CreateDraft(registry *sessions.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := registry.Create(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, buildDraftView(session))
	}
}

func GetDraft(registry *sessions.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := resolveSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buildDraftView(session))
	}
}

// PatchDraft applies a partial form update. Absent fields keep their values.
func PatchDraft(registry *sessions.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := resolveSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var patch drafts.Patch
		if err := validators.DecodeJSONBody(r, &patch); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = session.Mutate(func(draft *drafts.Draft, _ *staging.Manager) error {
			draft.Apply(patch)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buildDraftView(session))
	}
}

// DeleteDraft discards the session and everything staged in it.
func DeleteDraft(registry *sessions.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := resolveSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		registry.Delete(session.ID())
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type specRequest struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

// AddSpec appends one specification row to the draft.
func AddSpec(registry *sessions.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := resolveSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req specRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = session.Mutate(func(draft *drafts.Draft, _ *staging.Manager) error {
			draft.AddSpec(req.Key, req.Value)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, buildDraftView(session))
	}
}

// UpdateSpec replaces the row at the given index.
func UpdateSpec(registry *sessions.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := resolveSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		index, err := validators.ParsePathIndex(r, "index")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req specRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = session.Mutate(func(draft *drafts.Draft, _ *staging.Manager) error {
			if !draft.UpdateSpec(index, req.Key, req.Value) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "specification row not found")
			}
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buildDraftView(session))
	}
}

// RemoveSpec drops the row at the given index. Out-of-range indexes are a
// silent no-op, matching row removal semantics elsewhere in the draft.
func RemoveSpec(registry *sessions.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := resolveSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		index, err := validators.ParsePathIndex(r, "index")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = session.Mutate(func(draft *drafts.Draft, _ *staging.Manager) error {
			draft.RemoveSpec(index)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buildDraftView(session))
	}
}

package controllers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/techhub-commerce/admin-gateway/api/responses"
	"github.com/techhub-commerce/admin-gateway/api/validators"
	"github.com/techhub-commerce/admin-gateway/internal/drafts"
	"github.com/techhub-commerce/admin-gateway/internal/sessions"
	"github.com/techhub-commerce/admin-gateway/internal/staging"
	pkgerrors "github.com/techhub-commerce/admin-gateway/pkg/errors"
	"github.com/techhub-commerce/admin-gateway/pkg/logger"
	"github.com/techhub-commerce/admin-gateway/pkg/metrics"
)

const multipartMemoryLimit = 32 << 20

// StageImages accepts a multipart batch under the "files" field and stages
// every image in it. Non-image parts are filtered out before the capacity
// check; an over-capacity batch is rejected whole.
func StageImages(registry *sessions.Registry, maxUploadBytes int64, pipelineMetrics *metrics.PipelineMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := resolveSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart request"))
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		headers := r.MultipartForm.File["files"]
		if len(headers) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no files provided"))
			return
		}

		files := make([]staging.FileHandle, 0, len(headers))
		for _, header := range headers {
			if maxUploadBytes > 0 && header.Size > maxUploadBytes {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file exceeds upload size limit").
					WithDetails(map[string]any{"file": header.Filename, "max_bytes": maxUploadBytes}))
				return
			}
			data, readErr := readPart(header)
			if readErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, readErr, "read uploaded file").
					WithDetails(map[string]any{"file": header.Filename}))
				return
			}
			files = append(files, staging.NewMemoryFile(header.Filename, partContentType(header), data))
		}

		var accepted int
		err = session.Mutate(func(_ *drafts.Draft, images *staging.Manager) error {
			var stageErr error
			accepted, stageErr = images.Stage(r.Context(), files)
			return stageErr
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pipelineMetrics.AddStagedImages(accepted)
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"draft_id": session.ID(),
				"accepted": accepted,
			})
			logg.Info(ctx, "images staged")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, buildDraftView(session).Images)
	}
}

// ListImages reports the staged set and its readiness.
func ListImages(registry *sessions.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := resolveSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buildDraftView(session).Images)
	}
}

// RemoveImage drops the staged entry at the given position. Positions past
// the end are a silent no-op; the caller gets the current set either way.
func RemoveImage(registry *sessions.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := resolveSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		position, err := validators.ParsePathIndex(r, "position")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = session.Mutate(func(_ *drafts.Draft, images *staging.Manager) error {
			images.Remove(position)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buildDraftView(session).Images)
	}
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	part, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = part.Close() }()
	return io.ReadAll(part)
}

func partContentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

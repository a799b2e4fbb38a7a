package staging

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	pkgerrors "github.com/techhub-commerce/admin-gateway/pkg/errors"
)

const (
	DefaultMinImages = 4
	DefaultMaxImages = 10
)

// StagedImage is one candidate product image that has passed type and count
// checks but has not been uploaded yet.
type StagedImage struct {
	File           FileHandle
	PreviewDataURI string
}

// Manager owns the ordered staged set for one product draft. Position 0 is
// the primary image. The manager is single-writer: callers serialize Stage
// and Remove against the same instance (the owning session holds the lock).
type Manager struct {
	minImages int
	maxImages int
	images    []StagedImage
}

func NewManager(minImages, maxImages int) (*Manager, error) {
	if minImages < 0 {
		return nil, fmt.Errorf("min images must be non-negative")
	}
	if maxImages < minImages {
		return nil, fmt.Errorf("max images (%d) must be >= min images (%d)", maxImages, minImages)
	}
	return &Manager{minImages: minImages, maxImages: maxImages}, nil
}

// Stage filters the batch down to image files, applies the all-or-nothing
// capacity check, derives previews for every accepted file concurrently, and
// appends the results in input order. Returns the number of files accepted.
func (m *Manager) Stage(ctx context.Context, files []FileHandle) (int, error) {
	accepted := make([]FileHandle, 0, len(files))
	for _, file := range files {
		if isImage(file.ContentType()) {
			accepted = append(accepted, file)
		}
	}

	if len(accepted) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "no valid image files")
	}

	if len(m.images)+len(accepted) > m.maxImages {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "max images exceeded").
			WithDetails(map[string]any{
				"staged":    len(m.images),
				"incoming":  len(accepted),
				"max_images": m.maxImages,
			})
	}

	staged := make([]StagedImage, len(accepted))
	group, ctx := errgroup.WithContext(ctx)
	for i, file := range accepted {
		i, file := i, file
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			preview, err := derivePreview(file)
			if err != nil {
				return fmt.Errorf("derive preview for %q: %w", file.Name(), err)
			}
			staged[i] = StagedImage{File: file, PreviewDataURI: preview}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read staged files")
	}

	m.images = append(m.images, staged...)
	return len(staged), nil
}

// Remove drops the entry at the given dense position, shifting later entries
// down. Out-of-range positions are a silent no-op.
func (m *Manager) Remove(position int) {
	if position < 0 || position >= len(m.images) {
		return
	}
	m.images = append(m.images[:position], m.images[position+1:]...)
}

// IsReady reports whether the set satisfies the minimum-image requirement.
func (m *Manager) IsReady() bool {
	return len(m.images) >= m.minImages
}

// RemainingCapacity returns how many more images may be staged, never negative.
func (m *Manager) RemainingCapacity() int {
	remaining := m.maxImages - len(m.images)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (m *Manager) Len() int {
	return len(m.images)
}

func (m *Manager) MinImages() int {
	return m.minImages
}

func (m *Manager) MaxImages() int {
	return m.maxImages
}

// Snapshot returns a copy of the current ordered set for read-only use.
func (m *Manager) Snapshot() []StagedImage {
	out := make([]StagedImage, len(m.images))
	copy(out, m.images)
	return out
}

// Clear empties the set. Called only after a successful submission.
func (m *Manager) Clear() {
	m.images = nil
}

func isImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// derivePreview renders the file as an inline data URI for UI display. The
// preview depends on nothing but the handle itself.
func derivePreview(file FileHandle) (string, error) {
	data, err := ReadAll(file)
	if err != nil {
		return "", err
	}
	return "data:" + file.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nexusvm/console/internal/domain"
	"github.com/nexusvm/console/internal/wizard"
)

// Ensure ImageRepository implements the wizard's registry interface
var _ wizard.ImageRegistry = (*ImageRepository)(nil)

// ImageRepository is an in-memory read-mostly store of kernel and rootfs
// images.
type ImageRepository struct {
	mu   sync.RWMutex
	data map[string]*domain.Image
}

// NewImageRepository creates a new in-memory image repository.
func NewImageRepository() *ImageRepository {
	return &ImageRepository{
		data: make(map[string]*domain.Image),
	}
}

// AddImage registers an image.
func (r *ImageRepository) AddImage(ctx context.Context, img *domain.Image) (*domain.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if img.ID == "" {
		img.ID = uuid.New().String()
	}
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now()
	}

	stored := *img
	r.data[stored.ID] = &stored

	out := stored
	return &out, nil
}

// GetImage retrieves an image by ID.
func (r *ImageRepository) GetImage(ctx context.Context, id string) (*domain.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	img, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *img
	return &out, nil
}

// ListImages returns all images of the given kind, oldest first so the
// first entry is a stable default.
func (r *ImageRepository) ListImages(ctx context.Context, kind domain.ImageKind) ([]domain.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Image
	for _, img := range r.data {
		if img.Kind == kind {
			result = append(result, *img)
		}
	}
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].CreatedAt.Before(result[i].CreatedAt) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result, nil
}

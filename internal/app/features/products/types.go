// internal/app/features/products/types.go
package products

import (
	"time"

	"github.com/coursedeck/coursedeck/internal/domain/models"
)

type createProductRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	PriceCents  int64     `json:"price_cents"`
	MinUsers    int       `json:"min_users"`
	MaxUsers    int       `json:"max_users"`
}

type createLessonRequest struct {
	Name     string `json:"name"`
	VideoURL string `json:"video_url"`
}

// productDetail is the gated detail view: the product plus its lessons.
type productDetail struct {
	Product models.Product  `json:"product"`
	Lessons []models.Lesson `json:"lessons"`
}

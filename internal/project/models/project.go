package models

import (
	"strings"
	"time"

	dErrors "landing/pkg/domain-errors"
)

// DefaultCurrency applies when a project is created without one.
const DefaultCurrency = "ILS"

// Project is a marketing listing shown in the projects carousel.
//
// Invariants:
//   - Title and Location are non-empty after trimming
//   - Price is non-negative (whole currency units)
//   - Images is non-empty; ImageURL mirrors Images[0]
type Project struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	Price     int64     `json:"price"`
	Currency  string    `json:"currency"`
	ImageURL  string    `json:"imageUrl"`
	Images    []string  `json:"images"`
	PDFURL    string    `json:"pdfUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasDocument reports whether the project has a brochure to embed.
func (p *Project) HasDocument() bool {
	return p.PDFURL != ""
}

// NewProject validates fields and builds a Project without an ID. Stores
// assign IDs on insert.
func NewProject(title, location string, price int64, currency string, images []string, pdfURL string, now time.Time) (*Project, error) {
	title = strings.TrimSpace(title)
	location = strings.TrimSpace(location)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "title is required", dErrors.WithField("title"))
	}
	if location == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "location is required", dErrors.WithField("location"))
	}
	if price < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "price must not be negative", dErrors.WithField("price"))
	}

	cleaned := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			cleaned = append(cleaned, img)
		}
	}
	if len(cleaned) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "at least one image is required", dErrors.WithField("images"))
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	now = now.UTC()
	return &Project{
		Title:     title,
		Location:  location,
		Price:     price,
		Currency:  currency,
		ImageURL:  cleaned[0],
		Images:    cleaned,
		PDFURL:    strings.TrimSpace(pdfURL),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

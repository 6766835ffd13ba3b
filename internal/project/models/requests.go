package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "landing/pkg/domain-errors"
	pstrings "landing/pkg/platform/strings"
)

// CreateProjectRequest is the admin create payload. Price is a pointer so a
// missing price is distinguishable from zero.
type CreateProjectRequest struct {
	Title    string   `json:"title" yaml:"title" validate:"required,max=200"`
	Location string   `json:"location" yaml:"location" validate:"required,max=200"`
	Price    *int64   `json:"price" yaml:"price" validate:"required,gte=0"`
	Currency string   `json:"currency,omitempty" yaml:"currency" validate:"omitempty,len=3,alpha"`
	ImageURL string   `json:"imageUrl,omitempty" yaml:"imageUrl" validate:"omitempty,url"`
	Images   []string `json:"images,omitempty" yaml:"images" validate:"omitempty,dive,url"`
	PDFURL   string   `json:"pdfUrl,omitempty" yaml:"pdfUrl" validate:"omitempty,url"`
}

// Normalize trims strings, drops blank and repeated image URLs and folds
// imageUrl into images.
func (r *CreateProjectRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Location = strings.TrimSpace(r.Location)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	r.PDFURL = strings.TrimSpace(r.PDFURL)
	r.Images = pstrings.DedupeAndTrim(r.Images)
	if len(r.Images) == 0 && r.ImageURL != "" {
		r.Images = []string{r.ImageURL}
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var fieldMessages = map[string]string{
	"Title.required":    "title is required",
	"Title.max":         "title is too long",
	"Location.required": "location is required",
	"Location.max":      "location is too long",
	"Price.required":    "price is required",
	"Price.gte":         "price must not be negative",
	"Currency.len":      "currency must be a 3-letter code",
	"Currency.alpha":    "currency must be a 3-letter code",
	"ImageURL.url":      "imageUrl must be a URL",
	"Images.url":        "image URLs must be URLs",
	"PDFURL.url":        "pdfUrl must be a URL",
}

var jsonNames = map[string]string{
	"Title":    "title",
	"Location": "location",
	"Price":    "price",
	"Currency": "currency",
	"ImageURL": "imageUrl",
	"Images":   "images",
	"PDFURL":   "pdfUrl",
}

// Validate reports the first failing field as a validation error.
func (r *CreateProjectRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return dErrors.Wrap(err, dErrors.CodeValidation, "Missing/invalid fields")
	}
	if len(r.Images) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one image is required", dErrors.WithField("images"))
	}
	return nil
}

func fieldError(fe validator.FieldError) error {
	// Images[0] -> Images
	name := fe.StructField()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	msg, ok := fieldMessages[name+"."+fe.Tag()]
	if !ok {
		msg = fmt.Sprintf("%s is invalid", jsonNames[name])
	}
	return dErrors.New(dErrors.CodeValidation, msg, dErrors.WithField(jsonNames[name]))
}

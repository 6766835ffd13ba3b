// Package seed loads project listings from a YAML file, for bootstrapping
// an empty store and for local development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"landing/internal/project/models"
)

// File is the seed document layout:
//
//	projects:
//	  - title: Sea View
//	    location: Bat Yam
//	    price: 2500000
//	    images: [https://...]
type File struct {
	Projects []models.CreateProjectRequest `yaml:"projects"`
}

// ProjectService is the subset of the project service used for seeding.
type ProjectService interface {
	List(ctx context.Context) ([]*models.Project, error)
	Create(ctx context.Context, req models.CreateProjectRequest) (*models.Project, error)
}

// Result summarises an Apply run.
type Result struct {
	Created int
	Skipped int
}

// LoadFile reads and decodes a seed file.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a seed document, rejecting unknown keys.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var file File
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return &file, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &file, nil
}

// Apply creates every project in file that is not already present. A
// project is present when a stored one has the same title and location, so
// re-running a seed is a no-op.
func Apply(ctx context.Context, svc ProjectService, file *File) (Result, error) {
	var res Result
	existing, err := svc.List(ctx)
	if err != nil {
		return res, err
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[key(p.Title, p.Location)] = true
	}

	for i, req := range file.Projects {
		k := key(req.Title, req.Location)
		if seen[k] {
			res.Skipped++
			continue
		}
		if _, err := svc.Create(ctx, req); err != nil {
			return res, fmt.Errorf("seed project %d (%q): %w", i, req.Title, err)
		}
		seen[k] = true
		res.Created++
	}
	return res, nil
}

func key(title, location string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "\x00" + strings.ToLower(strings.TrimSpace(location))
}

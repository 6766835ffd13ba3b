package web

import "landing/internal/project/models"

type ListingStatus string

const (
	ListingLoading ListingStatus = "loading"
	ListingLoaded  ListingStatus = "loaded"
	ListingEmpty   ListingStatus = "empty"
	ListingError   ListingStatus = "error"
)

const (
	msgNoProjects    = "אין פרויקטים להצגה כרגע."
	msgProjectsError = "לא הצלחנו לטעון את הפרויקטים. נסו שוב מאוחר יותר."
)

// Listing is the projects section view state. An empty result is its own
// terminal state, not an error.
type Listing struct {
	Status   ListingStatus
	Projects []*models.Project
	Message  string
}

// NewListing resolves a finished fetch into loaded, empty or error.
func NewListing(projects []*models.Project, err error) Listing {
	switch {
	case err != nil:
		return Listing{Status: ListingError, Message: msgProjectsError}
	case len(projects) == 0:
		return Listing{Status: ListingEmpty, Message: msgNoProjects}
	default:
		return Listing{Status: ListingLoaded, Projects: projects}
	}
}

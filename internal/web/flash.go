package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"landing/internal/web/contactform"
)

const flashCookie = "landing_flash"

// flash carries a contact form status across the post/redirect/get hop.
// It never holds the submitted phone or email.
type flash struct {
	State   contactform.State `json:"s"`
	Message string            `json:"m"`
	Focus   contactform.Field `json:"f,omitempty"`
}

func setFlash(w http.ResponseWriter, f flash, secure bool) {
	raw, _ := json.Marshal(f)
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the flash so it renders exactly once.
func popFlash(w http.ResponseWriter, r *http.Request) (flash, bool) {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return flash{}, false
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return flash{}, false
	}
	var f flash
	if err := json.Unmarshal(raw, &f); err != nil {
		return flash{}, false
	}
	return f, true
}

// Package a11y models the accessibility toolbar settings. A Settings value is
// loaded from a cookie once per request, changed by one Action, written back,
// and rendered as body classes and attributes.
package a11y

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"
)

const (
	CookieName = "a11y_settings_v3"

	MinFontScale  = 1.0
	MaxFontScale  = 1.35
	FontScaleStep = 0.05

	cookieMaxAge = 365 * 24 * time.Hour
)

type LineHeight string

const (
	LineHeightDefault LineHeight = "default"
	LineHeightRelaxed LineHeight = "relaxed"
	LineHeightExtra   LineHeight = "extra"
)

type Align string

const (
	AlignDefault Align = "default"
	AlignRight   Align = "right"
	AlignCenter  Align = "center"
	AlignLeft    Align = "left"
)

// Settings is the persisted toolbar state. The open/closed state of the panel
// is deliberately not part of it.
type Settings struct {
	FontScale      float64    `json:"fontScale"`
	HighContrast   bool       `json:"highContrast"`
	HighlightLinks bool       `json:"highlightLinks"`
	TextSpacing    bool       `json:"textSpacing"`
	HideImages     bool       `json:"hideImages"`
	ReduceMotion   bool       `json:"reduceMotion"`
	BigCursor      bool       `json:"bigCursor"`
	Dyslexia       bool       `json:"dyslexia"`
	LineHeight     LineHeight `json:"lineHeight"`
	Align          Align      `json:"align"`
	Descriptions   bool       `json:"descriptions"`
	Saturate       bool       `json:"saturate"`
	BigWidget      bool       `json:"bigWidget"`
}

// Defaults returns the settings of a first visit.
func Defaults() Settings {
	return Settings{
		FontScale:  MinFontScale,
		LineHeight: LineHeightDefault,
		Align:      AlignDefault,
	}
}

// Toggle keys accepted by Apply.
const (
	KeyHighContrast   = "highContrast"
	KeyHighlightLinks = "highlightLinks"
	KeyTextSpacing    = "textSpacing"
	KeyHideImages     = "hideImages"
	KeyReduceMotion   = "reduceMotion"
	KeyBigCursor      = "bigCursor"
	KeyDyslexia       = "dyslexia"
	KeyDescriptions   = "descriptions"
	KeySaturate       = "saturate"
	KeyBigWidget      = "bigWidget"
)

func (s *Settings) toggles() map[string]*bool {
	return map[string]*bool{
		KeyHighContrast:   &s.HighContrast,
		KeyHighlightLinks: &s.HighlightLinks,
		KeyTextSpacing:    &s.TextSpacing,
		KeyHideImages:     &s.HideImages,
		KeyReduceMotion:   &s.ReduceMotion,
		KeyBigCursor:      &s.BigCursor,
		KeyDyslexia:       &s.Dyslexia,
		KeyDescriptions:   &s.Descriptions,
		KeySaturate:       &s.Saturate,
		KeyBigWidget:      &s.BigWidget,
	}
}

// Toggle flips a boolean setting. Unknown keys leave s unchanged and report
// false.
func (s Settings) Toggle(key string) (Settings, bool) {
	flag, ok := s.toggles()[key]
	if !ok {
		return s, false
	}
	*flag = !*flag
	return s, true
}

// Enabled reports the value of a boolean setting.
func (s Settings) Enabled(key string) bool {
	flag, ok := s.toggles()[key]
	return ok && *flag
}

// BiggerText grows the font scale one step, capped at MaxFontScale.
func (s Settings) BiggerText() Settings {
	s.FontScale = clampScale(round2(s.FontScale + FontScaleStep))
	return s
}

// CycleLineHeight moves default -> relaxed -> extra -> default.
func (s Settings) CycleLineHeight() Settings {
	switch s.LineHeight {
	case LineHeightDefault:
		s.LineHeight = LineHeightRelaxed
	case LineHeightRelaxed:
		s.LineHeight = LineHeightExtra
	default:
		s.LineHeight = LineHeightDefault
	}
	return s
}

// CycleAlign moves default -> right -> center -> left -> default.
func (s Settings) CycleAlign() Settings {
	switch s.Align {
	case AlignDefault:
		s.Align = AlignRight
	case AlignRight:
		s.Align = AlignCenter
	case AlignCenter:
		s.Align = AlignLeft
	default:
		s.Align = AlignDefault
	}
	return s
}

// Apply runs a named toolbar action: "toggle" with key, "bigger-text",
// "line-height", "align" or "reset".
func (s Settings) Apply(action, key string) (Settings, bool) {
	switch action {
	case "toggle":
		return s.Toggle(key)
	case "bigger-text":
		return s.BiggerText(), true
	case "line-height":
		return s.CycleLineHeight(), true
	case "align":
		return s.CycleAlign(), true
	case "reset":
		return Defaults(), true
	default:
		return s, false
	}
}

// FontPercent is the scale shown on the toolbar tile.
func (s Settings) FontPercent() int {
	return int(math.Round(s.FontScale * 100))
}

// BodyClasses maps every enabled flag to its CSS class.
func (s Settings) BodyClasses() []string {
	var classes []string
	add := func(on bool, class string) {
		if on {
			classes = append(classes, class)
		}
	}
	add(s.HighContrast, "a11y-contrast")
	add(s.HighlightLinks, "a11y-highlight-links")
	add(s.TextSpacing, "a11y-text-spacing")
	add(s.HideImages, "a11y-hide-images")
	add(s.ReduceMotion, "a11y-reduce-motion")
	add(s.BigCursor, "a11y-big-cursor")
	add(s.Dyslexia, "a11y-dyslexia")
	add(s.Descriptions, "a11y-descriptions")
	add(s.Saturate, "a11y-saturate")
	add(s.BigWidget, "a11y-widget-big")
	return classes
}

// FontScaleCSS is the value of the --a11y-font-scale custom property.
func (s Settings) FontScaleCSS() string {
	return strconv.FormatFloat(s.FontScale, 'f', -1, 64)
}

// normalize repairs out-of-range values from an older or tampered cookie.
func (s Settings) normalize() Settings {
	if math.IsNaN(s.FontScale) || s.FontScale == 0 {
		s.FontScale = MinFontScale
	}
	s.FontScale = clampScale(round2(s.FontScale))
	switch s.LineHeight {
	case LineHeightDefault, LineHeightRelaxed, LineHeightExtra:
	default:
		s.LineHeight = LineHeightDefault
	}
	switch s.Align {
	case AlignDefault, AlignRight, AlignCenter, AlignLeft:
	default:
		s.Align = AlignDefault
	}
	return s
}

// Encode returns the cookie value.
func (s Settings) Encode() string {
	raw, _ := json.Marshal(s)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode parses a cookie value. Anything malformed yields defaults. Missing
// fields keep their defaults so older cookies still load.
func Decode(value string) Settings {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return Defaults()
	}
	s := Defaults()
	if err := json.Unmarshal(raw, &s); err != nil {
		return Defaults()
	}
	return s.normalize()
}

// Load reads settings from the request cookie.
func Load(r *http.Request) Settings {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return Defaults()
	}
	return Decode(c.Value)
}

// Save writes settings to the response cookie.
func Save(w http.ResponseWriter, s Settings, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.Encode(),
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clampScale(v float64) float64 {
	return math.Min(MaxFontScale, math.Max(MinFontScale, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

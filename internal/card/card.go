// Package card defines the editable ID-card document.
//
// Data is a plain value: copies made with Clone share nothing, so a Data can
// be pushed onto a history stack and later edited without touching the entry
// that was stored.
package card

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/samber/lo"
)

// ErrInvalidCard is returned by Validate and Apply for documents that cannot be shown.
var ErrInvalidCard = errors.New("invalid card")

// Photo shapes accepted for PhotoShape.
var PhotoShapes = []string{"circle", "square", "rounded", "rhombus", "hexagon", "pentagon", "octagon", "star"}

var (
	orientations = []string{"portrait", "landscape"}
	backgrounds  = []string{"gradient", "solid", "image"}
	imageFits    = []string{"cover", "contain", "tile"}
)

// Detail is one labelled line on the card.
type Detail struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Data is the whole card document. Image fields hold data URLs; an empty
// string means no image.
type Data struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Website    string `json:"website"`

	PhotoURL              string `json:"photoUrl"`
	PhotoShape            string `json:"photoShape"`
	PhotoSize             int    `json:"photoSize"`
	PhotoVerticalOffset   int    `json:"photoVerticalOffset"`
	PhotoHorizontalOffset int    `json:"photoHorizontalOffset"`

	Orientation string `json:"orientation"`

	CompanyName         string `json:"companyName"`
	CompanyLogoURL      string `json:"companyLogoUrl"`
	CompanyLogoSize     int    `json:"companyLogoSize"`
	CompanyNameFontSize int    `json:"companyNameFontSize"`

	Theme       string `json:"theme"`
	ThemeColor1 string `json:"themeColor1"`
	ThemeColor2 string `json:"themeColor2"`
	TextColor   string `json:"textColor"`

	EmployeeNameFontSize int `json:"employeeNameFontSize"`
	DetailsFontSize      int `json:"detailsFontSize"`
	WebsiteFontSize      int `json:"websiteFontSize"`

	Details []Detail `json:"details"`

	QRCodeURL  string `json:"qrCodeUrl"`
	QRCodeSize int    `json:"qrCodeSize"`

	BackgroundType     string `json:"backgroundType"`
	BackgroundColor    string `json:"backgroundColor"`
	BackgroundImageURL string `json:"backgroundImageUrl"`
	BackgroundImageFit string `json:"backgroundImageFit"`

	TermsAndConditions string `json:"termsAndConditions"`
	TermsFontSize      int    `json:"termsFontSize"`
	TermsColor         string `json:"termsColor"`

	BorderWidth  int    `json:"borderWidth"`
	BorderColor  string `json:"borderColor"`
	BorderRadius int    `json:"borderRadius"`
}

const dateLayout = "2006-01-02"

// EmployeeID returns a random identifier of the form EMP-dddd.
func EmployeeID(rng *rand.Rand) string {
	return fmt.Sprintf("EMP-%d", 1000+rng.IntN(9000))
}

// Default returns the blank card a new session starts from. The ID detail is
// drawn from rng, the card is issued on now's UTC date and expires a year later.
func Default(now time.Time, rng *rand.Rand) Data {
	now = now.UTC()
	return Data{
		PhotoShape:            "circle",
		PhotoSize:             128,
		PhotoVerticalOffset:   45,
		PhotoHorizontalOffset: 50,
		Orientation:           "portrait",
		CompanyLogoSize:       55,
		CompanyNameFontSize:   16,
		Theme:                 DefaultTheme,
		ThemeColor1:           "#0047AB",
		ThemeColor2:           "#FF6F00",
		TextColor:             "#FFFFFF",
		EmployeeNameFontSize:  17,
		DetailsFontSize:       12,
		WebsiteFontSize:       10,
		Details: []Detail{
			{ID: 1, Label: "Post"},
			{ID: 2, Label: "ID", Value: EmployeeID(rng)},
			{ID: 3, Label: "Phone"},
			{ID: 4, Label: "Email"},
			{ID: 5, Label: "Issued", Value: now.Format(dateLayout)},
			{ID: 6, Label: "Expires", Value: now.AddDate(1, 0, 0).Format(dateLayout)},
		},
		QRCodeSize:         72,
		BackgroundType:     "gradient",
		BackgroundColor:    "#4a90e2",
		BackgroundImageFit: "cover",
		TermsFontSize:      9,
		TermsColor:         "#E0E0E0",
		BorderColor:        "#000000",
		BorderRadius:       16,
	}
}

// Clone returns a deep copy of d.
func (d Data) Clone() Data {
	d.Details = slices.Clone(d.Details)
	return d
}

// Validate checks enumerated fields, colours and sizes.
func (d Data) Validate() error {
	var errs []error

	enums := []struct {
		field, value string
		allowed      []string
	}{
		{"photoShape", d.PhotoShape, PhotoShapes},
		{"orientation", d.Orientation, orientations},
		{"backgroundType", d.BackgroundType, backgrounds},
		{"backgroundImageFit", d.BackgroundImageFit, imageFits},
	}
	for _, e := range enums {
		if !slices.Contains(e.allowed, e.value) {
			errs = append(errs, fmt.Errorf("%s %q: want one of %s", e.field, e.value, strings.Join(e.allowed, ", ")))
		}
	}

	colors := []struct{ field, value string }{
		{"themeColor1", d.ThemeColor1},
		{"themeColor2", d.ThemeColor2},
		{"textColor", d.TextColor},
		{"backgroundColor", d.BackgroundColor},
		{"termsColor", d.TermsColor},
		{"borderColor", d.BorderColor},
	}
	for _, c := range colors {
		if _, err := colorful.Hex(c.value); err != nil {
			errs = append(errs, fmt.Errorf("%s %q: not a hex colour", c.field, c.value))
		}
	}

	if d.Theme != CustomTheme {
		if _, ok := LookupTheme(d.Theme); !ok {
			errs = append(errs, fmt.Errorf("theme %q: unknown", d.Theme))
		}
	}

	sizes := []struct {
		field string
		value int
	}{
		{"photoSize", d.PhotoSize},
		{"companyLogoSize", d.CompanyLogoSize},
		{"companyNameFontSize", d.CompanyNameFontSize},
		{"employeeNameFontSize", d.EmployeeNameFontSize},
		{"detailsFontSize", d.DetailsFontSize},
		{"websiteFontSize", d.WebsiteFontSize},
		{"qrCodeSize", d.QRCodeSize},
		{"termsFontSize", d.TermsFontSize},
		{"borderWidth", d.BorderWidth},
		{"borderRadius", d.BorderRadius},
	}
	for _, s := range sizes {
		if s.value < 0 {
			errs = append(errs, fmt.Errorf("%s %d: must not be negative", s.field, s.value))
		}
	}

	seen := make(map[int]bool, len(d.Details))
	for _, det := range d.Details {
		if seen[det.ID] {
			errs = append(errs, fmt.Errorf("details: duplicate id %d", det.ID))
		}
		seen[det.ID] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCard, errors.Join(errs...))
	}
	return nil
}

// Apply overlays the JSON object patch onto a copy of d. Fields absent from
// the patch keep their value; a details array replaces the list wholesale.
func (d Data) Apply(patch json.RawMessage) (Data, error) {
	var present struct {
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(patch, &present); err != nil {
		return d, fmt.Errorf("%w: %w", ErrInvalidCard, err)
	}

	next := d.Clone()
	if present.Details != nil {
		// Unmarshal would otherwise merge into the existing elements.
		next.Details = nil
	}
	if err := json.Unmarshal(patch, &next); err != nil {
		return d, fmt.Errorf("%w: %w", ErrInvalidCard, err)
	}
	if err := next.Validate(); err != nil {
		return d, err
	}
	return next, nil
}

var whitespace = regexp.MustCompile(`\s+`)

// ExportName returns the file stem used when the card is downloaded.
func (d Data) ExportName() string {
	slug := whitespace.ReplaceAllString(strings.ToLower(d.Name), "-")
	if slug == "" {
		slug = "employee"
	}
	return "id-card-" + slug
}

// DetailValue returns the value of the first detail with the given label.
func (d Data) DetailValue(label string) (string, bool) {
	det, _, ok := lo.FindIndexOf(d.Details, func(det Detail) bool { return det.Label == label })
	return det.Value, ok
}

// SetDetail sets the value of the first detail with the given label, adding
// a new detail when none exists. d's details are copied, never modified.
func (d Data) SetDetail(label, value string) Data {
	d.Details = slices.Clone(d.Details)
	if _, i, ok := lo.FindIndexOf(d.Details, func(det Detail) bool { return det.Label == label }); ok {
		d.Details[i].Value = value
		return d
	}
	return d.AddDetail(label, value)
}

// AddDetail appends a detail with the next free ID.
func (d Data) AddDetail(label, value string) Data {
	next := 1
	if len(d.Details) > 0 {
		next = lo.MaxBy(d.Details, func(a, b Detail) bool { return a.ID > b.ID }).ID + 1
	}
	d.Details = append(slices.Clone(d.Details), Detail{ID: next, Label: label, Value: value})
	return d
}

// RemoveDetail drops the detail with the given ID.
func (d Data) RemoveDetail(id int) Data {
	d.Details = lo.Reject(d.Details, func(det Detail, _ int) bool { return det.ID == id })
	return d
}

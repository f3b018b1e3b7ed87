package vanscrape

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcnijman/go-emailaddress"
	"github.com/nyaruka/phonenumbers"
)

const (
	// MaxGalleryPhotos caps how many photos a record may carry.
	MaxGalleryPhotos = 8

	// MaxDescriptionLen bounds the free-text description in runes.
	MaxDescriptionLen = 2000
)

// Photo is one gallery entry. A photo with an empty URL and the
// NoPhotosAlt alt text is the placeholder emitted when extraction
// found nothing qualifying.
type Photo struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

const NoPhotosAlt = "No photos available"

// PlaceholderPhoto marks a gallery that was scraped but yielded nothing.
func PlaceholderPhoto() Photo {
	return Photo{URL: "", Alt: NoPhotosAlt}
}

// BuilderRecord is the unit of persistence: one camper-van conversion
// business, keyed naturally by (Name, State).
type BuilderRecord struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	City        string            `json:"city"`
	State       string            `json:"state"`
	Zip         string            `json:"zip"`
	Latitude    float64           `json:"lat"`
	Longitude   float64           `json:"lng"`
	Address     string            `json:"address"`
	Phone       string            `json:"phone"`
	Email       string            `json:"email"`
	Website     string            `json:"website"`
	Description string            `json:"description"`
	VanTypes    []string          `json:"van_types"`
	Amenities   []string          `json:"amenities"`
	Services    []string          `json:"services"`
	SocialMedia map[string]string `json:"social_media"`
	// Gallery nil means "not yet scraped"; empty means "scraped, none found".
	Gallery  []Photo `json:"photos"`
	Verified bool    `json:"verified"`

	// Scoring artifacts from the pipeline, not persisted.
	LocationScore int `json:"-"`
	BusinessScore int `json:"-"`
}

// Geocoded reports whether the record carries real coordinates.
// (0,0) is the recognized "ungeocoded" sentinel.
func (r *BuilderRecord) Geocoded() bool {
	return r.Latitude != 0 || r.Longitude != 0
}

func (r *BuilderRecord) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("record has no name")
	}

	if r.State == "" {
		return fmt.Errorf("record has no state")
	}

	if (r.Latitude == 0) != (r.Longitude == 0) {
		return fmt.Errorf("record %q has partial coordinates", r.Name)
	}

	return nil
}

// Normalize coerces contact fields into their canonical shapes:
// phone as (XXX) XXX-XXXX, email lowercased and syntax checked,
// website with an explicit scheme, van types deduplicated
// case-insensitively with order preserved, description bounded.
func (r *BuilderRecord) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = FormatPhone(r.Phone)
	r.Email = normalizeEmail(r.Email)
	r.Website = normalizeWebsite(r.Website)
	r.VanTypes = dedupeFold(r.VanTypes)
	r.Amenities = dedupeFold(r.Amenities)
	r.Services = dedupeFold(r.Services)

	if runes := []rune(r.Description); len(runes) > MaxDescriptionLen {
		r.Description = string(runes[:MaxDescriptionLen])
	}

	if len(r.Gallery) > MaxGalleryPhotos {
		r.Gallery = r.Gallery[:MaxGalleryPhotos]
	}
}

// FormatPhone renders a US number as (XXX) XXX-XXXX. Input that does not
// parse as a US number is returned trimmed but otherwise untouched.
func FormatPhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	num, err := phonenumbers.Parse(raw, "US")
	if err != nil || !phonenumbers.IsValidNumberForRegion(num, "US") {
		return raw
	}

	national := phonenumbers.GetNationalSignificantNumber(num)
	if len(national) != 10 {
		return raw
	}

	return fmt.Sprintf("(%s) %s-%s", national[:3], national[3:6], national[6:])
}

func normalizeEmail(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}

	if _, err := emailaddress.Parse(raw); err != nil {
		return ""
	}

	return raw
}

func normalizeWebsite(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	return strings.TrimRight(raw, "/")
}

func dedupeFold(items []string) []string {
	if items == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))

	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}

		key := strings.ToLower(it)
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}

		out = append(out, it)
	}

	return out
}

// MarshalLists renders the list and map typed fields as canonical JSON
// text for storage. Zero items round-trips as [] (or {} for social
// media), never null or the empty string.
func (r *BuilderRecord) MarshalLists() (vanTypes, amenities, services, socialMedia, photos string, err error) {
	vanTypes, err = marshalList(r.VanTypes)
	if err != nil {
		return "", "", "", "", "", err
	}

	amenities, err = marshalList(r.Amenities)
	if err != nil {
		return "", "", "", "", "", err
	}

	services, err = marshalList(r.Services)
	if err != nil {
		return "", "", "", "", "", err
	}

	sm := r.SocialMedia
	if sm == nil {
		sm = map[string]string{}
	}

	raw, err := json.Marshal(sm)
	if err != nil {
		return "", "", "", "", "", err
	}

	socialMedia = string(raw)

	gallery := r.Gallery
	if len(gallery) == 0 {
		gallery = []Photo{PlaceholderPhoto()}
	}

	raw, err = json.Marshal(gallery)
	if err != nil {
		return "", "", "", "", "", err
	}

	photos = string(raw)

	return vanTypes, amenities, services, socialMedia, photos, nil
}

func marshalList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}

// UnmarshalSocialMedia decodes a stored social_media column. Legacy rows
// were written as JSON arrays; those decode to an empty map so the defect
// is healed on the next write.
func UnmarshalSocialMedia(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return map[string]string{}
	}

	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err == nil && m != nil {
		return m
	}

	return map[string]string{}
}

// UnmarshalStringList decodes a stored JSON list column, tolerating
// empty and null legacy values.
func UnmarshalStringList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []string{}
	}

	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []string{}
	}

	return items
}

// UnmarshalPhotos decodes a stored photos column.
func UnmarshalPhotos(raw string) []Photo {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []Photo{}
	}

	var photos []Photo
	if err := json.Unmarshal([]byte(raw), &photos); err != nil || photos == nil {
		return []Photo{}
	}

	return photos
}

func (r *BuilderRecord) CsvHeaders() []string {
	return []string{
		"name",
		"city",
		"state",
		"zip",
		"lat",
		"lng",
		"address",
		"phone",
		"email",
		"website",
		"description",
		"van_types",
		"amenities",
		"services",
		"social_media",
		"photos",
		"verified",
	}
}

func (r *BuilderRecord) CsvRow() []string {
	vanTypes, amenities, services, socialMedia, photos, err := r.MarshalLists()
	if err != nil {
		vanTypes, amenities, services, socialMedia, photos = "[]", "[]", "[]", "{}", "[]"
	}

	return []string{
		r.Name,
		r.City,
		r.State,
		r.Zip,
		fmt.Sprintf("%f", r.Latitude),
		fmt.Sprintf("%f", r.Longitude),
		r.Address,
		r.Phone,
		r.Email,
		r.Website,
		r.Description,
		vanTypes,
		amenities,
		services,
		socialMedia,
		photos,
		fmt.Sprintf("%t", r.Verified),
	}
}

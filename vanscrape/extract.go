package vanscrape

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mcnijman/go-emailaddress"
)

var phoneRes = []*regexp.Regexp{
	regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\b\d{3}[-.]\d{3}[-.]\d{4}\b`),
	regexp.MustCompile(`\+1[-.\s]?\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\b\d{10}\b`),
}

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// Street address shaped like "123 Main St, Austin, TX 78701".
var addressRe = regexp.MustCompile(
	`\b\d{1,6}\s+[A-Za-z0-9.\- ]+?\s(?:St|Street|Ave|Avenue|Blvd|Boulevard|Rd|Road|Dr|Drive|Ln|Lane|Way|Ct|Court|Pl|Place|Hwy|Highway|Pkwy|Parkway)\.?,?\s+[A-Za-z.\- ]+,?\s+[A-Z]{2}\s+\d{5}(?:-\d{4})?\b`)

// Platform hostnames checked against anchor hrefs, first match per
// platform wins. x.com and twitter.com both map to "x".
var socialDomains = []struct {
	domain   string
	platform string
}{
	{"facebook.com", "facebook"},
	{"instagram.com", "instagram"},
	{"youtube.com", "youtube"},
	{"tiktok.com", "tiktok"},
	{"x.com", "x"},
	{"twitter.com", "x"},
	{"pinterest.com", "pinterest"},
	{"linkedin.com", "linkedin"},
}

var vanTypeKeywords = []string{
	"sprinter",
	"transit",
	"promaster",
	"metris",
	"econoline",
	"camper van",
	"class b",
	"4x4 van",
	"high roof",
}

var amenityKeywords = []string{
	"solar",
	"shower",
	"toilet",
	"kitchen",
	"heater",
	"air conditioning",
	"refrigerator",
	"water tank",
	"inverter",
	"roof rack",
	"awning",
	"bed platform",
	"composting toilet",
}

// Image candidates whose URL, alt or class contain one of these are
// never gallery material.
var photoExclusions = []string{
	"logo",
	"icon",
	"avatar",
	"footer",
	"header",
	"placeholder",
	"sprite",
	"badge",
	"banner-ad",
	"pixel",
}

var photoKeywords = []string{
	"van",
	"sprinter",
	"camper",
	"conversion",
	"interior",
	"build",
}

const minPhotoDimension = 200

// ExtractPhone returns the first phone-shaped match in the text.
func ExtractPhone(text string) string {
	for _, re := range phoneRes {
		if m := re.FindString(text); m != "" {
			return m
		}
	}

	return ""
}

// ExtractEmail returns the first email in the page text, falling back
// to mailto: link targets.
func ExtractEmail(doc *goquery.Document, text string) string {
	if m := emailRe.FindString(text); m != "" {
		if _, err := emailaddress.Parse(strings.ToLower(m)); err == nil {
			return m
		}
	}

	var found string

	doc.Find(`a[href^="mailto:"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := s.AttrOr("href", "")

		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}

		if _, err := emailaddress.Parse(strings.ToLower(addr)); err == nil {
			found = addr
			return false
		}

		return true
	})

	return found
}

// ExtractAddress returns the first street-address-shaped match.
func ExtractAddress(text string) string {
	return strings.TrimSpace(addressRe.FindString(text))
}

// ExtractSocialLinks scans anchors first, then meta tags, then JSON-LD
// sameAs entries as lower-priority fallbacks. First hit per platform
// wins; absent keys mean unknown, not confirmed absent.
func ExtractSocialLinks(doc *goquery.Document) map[string]string {
	links := map[string]string{}

	addIfSocial := func(href string) {
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		for _, sd := range socialDomains {
			if !strings.Contains(href, sd.domain) {
				continue
			}

			if _, ok := links[sd.platform]; !ok {
				links[sd.platform] = href
			}

			return
		}
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		addIfSocial(s.AttrOr("href", ""))
	})

	doc.Find(`meta[property="og:see_also"], meta[name="twitter:site"], meta[property="article:author"]`).Each(func(_ int, s *goquery.Selection) {
		addIfSocial(s.AttrOr("content", ""))
	})

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var payload struct {
			SameAs []string `json:"sameAs"`
		}

		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return
		}

		for _, u := range payload.SameAs {
			addIfSocial(u)
		}
	})

	return links
}

// ExtractKeywords appends every keyword found in the lowercased text.
// Matches are appended in table order, not scored.
func ExtractKeywords(text string, keywords []string) []string {
	lower := strings.ToLower(text)

	var out []string

	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			out = append(out, kw)
		}
	}

	return out
}

// ExtractVanTypes returns the van model/category tags found in the text.
func ExtractVanTypes(text string) []string {
	return ExtractKeywords(text, vanTypeKeywords)
}

// ExtractAmenities returns the amenity tags found in the text.
func ExtractAmenities(text string) []string {
	return ExtractKeywords(text, amenityKeywords)
}

type photoCandidate struct {
	photo Photo
	score int
}

// ExtractPhotos collects every <img> and inline background-image,
// filters by minimum size and exclusion keywords, scores survivors by
// van keywords and size, and keeps at most MaxGalleryPhotos. Zero
// survivors yields exactly one placeholder entry so downstream callers
// can tell "scraped, nothing found" from "not yet scraped".
func ExtractPhotos(doc *goquery.Document) []Photo {
	var candidates []photoCandidate

	seen := map[string]struct{}{}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		if src == "" {
			src = s.AttrOr("data-src", "")
		}

		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}

		if _, dup := seen[src]; dup {
			return
		}

		alt := s.AttrOr("alt", "")
		class := s.AttrOr("class", "")

		w := attrInt(s, "width")
		h := attrInt(s, "height")

		if excludedPhoto(src, alt, class) {
			return
		}

		// Unspecified dimensions pass; only known-small images drop.
		if (w > 0 && w < minPhotoDimension) || (h > 0 && h < minPhotoDimension) {
			return
		}

		seen[src] = struct{}{}

		candidates = append(candidates, photoCandidate{
			photo: Photo{URL: src, Alt: alt, Caption: s.AttrOr("title", "")},
			score: photoScore(src, alt, w, h),
		})
	})

	doc.Find("[style*='background-image']").Each(func(_ int, s *goquery.Selection) {
		style := s.AttrOr("style", "")

		src := backgroundImageURL(style)
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}

		if _, dup := seen[src]; dup {
			return
		}

		if excludedPhoto(src, "", s.AttrOr("class", "")) {
			return
		}

		seen[src] = struct{}{}

		candidates = append(candidates, photoCandidate{
			photo: Photo{URL: src},
			score: photoScore(src, "", 0, 0),
		})
	})

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > MaxGalleryPhotos {
		candidates = candidates[:MaxGalleryPhotos]
	}

	if len(candidates) == 0 {
		return []Photo{PlaceholderPhoto()}
	}

	photos := make([]Photo, 0, len(candidates))
	for _, c := range candidates {
		photos = append(photos, c.photo)
	}

	return photos
}

func excludedPhoto(src, alt, class string) bool {
	haystack := strings.ToLower(src + " " + alt + " " + class)

	for _, kw := range photoExclusions {
		if strings.Contains(haystack, kw) {
			return true
		}
	}

	return false
}

func photoScore(src, alt string, w, h int) int {
	haystack := strings.ToLower(src + " " + alt)

	score := 0

	for _, kw := range photoKeywords {
		if strings.Contains(haystack, kw) {
			score += 5
		}
	}

	if w >= 600 || h >= 600 {
		score += 3
	} else if w >= minPhotoDimension || h >= minPhotoDimension {
		score++
	}

	return score
}

func attrInt(s *goquery.Selection, name string) int {
	v, err := strconv.Atoi(strings.TrimSuffix(s.AttrOr(name, ""), "px"))
	if err != nil {
		return 0
	}

	return v
}

var bgURLRe = regexp.MustCompile(`background-image\s*:\s*url\(['"]?([^'")]+)['"]?\)`)

func backgroundImageURL(style string) string {
	m := bgURLRe.FindStringSubmatch(style)
	if len(m) < 2 {
		return ""
	}

	return strings.TrimSpace(m[1])
}

package vanscrape

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	return doc
}

func TestExtractPhone(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Call us at (512) 555-1234 today", "(512) 555-1234"},
		{"Phone: 512-555-1234", "512-555-1234"},
		{"Reach us on +1 512 555 1234", "+1 512 555 1234"},
		{"Contact: 5125551234", "5125551234"},
		{"No phone here", ""},
		{"Order #123456 shipped", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ExtractPhone(tc.text), "text: %q", tc.text)
	}
}

func TestExtractEmail_FromText(t *testing.T) {
	doc := docFromHTML(t, "<html><body></body></html>")

	got := ExtractEmail(doc, "Questions? Write to info@acmevan.com any time.")
	assert.Equal(t, "info@acmevan.com", got)
}

func TestExtractEmail_MailtoFallback(t *testing.T) {
	doc := docFromHTML(t, `<html><body>
		<a href="mailto:sales@acmevan.com?subject=Quote">Email us</a>
	</body></html>`)

	got := ExtractEmail(doc, "no address in the visible text")
	assert.Equal(t, "sales@acmevan.com", got)
}

func TestExtractEmail_NoneFound(t *testing.T) {
	doc := docFromHTML(t, "<html><body><a href='/contact'>Contact</a></body></html>")

	assert.Empty(t, ExtractEmail(doc, "nothing here"))
}

func TestExtractAddress(t *testing.T) {
	text := "Visit our shop at 4500 Burnet Rd, Austin, TX 78756 for a tour."

	assert.Equal(t, "4500 Burnet Rd, Austin, TX 78756", ExtractAddress(text))
	assert.Empty(t, ExtractAddress("we are everywhere and nowhere"))
}

func TestExtractSocialLinks(t *testing.T) {
	doc := docFromHTML(t, `<html><body>
		<a href="https://www.facebook.com/acmevan">fb</a>
		<a href="https://www.instagram.com/acmevan">ig</a>
		<a href="https://twitter.com/acmevan">tw</a>
		<a href="https://www.facebook.com/acmevan/reviews">fb again</a>
		<a href="/about">about</a>
	</body></html>`)

	got := ExtractSocialLinks(doc)

	assert.Equal(t, "https://www.facebook.com/acmevan", got["facebook"])
	assert.Equal(t, "https://www.instagram.com/acmevan", got["instagram"])
	assert.Equal(t, "https://twitter.com/acmevan", got["x"])
	assert.Len(t, got, 3)
}

func TestExtractSocialLinks_JSONLD(t *testing.T) {
	doc := docFromHTML(t, `<html><head>
		<script type="application/ld+json">
			{"@type":"LocalBusiness","sameAs":["https://www.youtube.com/@acmevan"]}
		</script>
	</head><body></body></html>`)

	got := ExtractSocialLinks(doc)

	assert.Equal(t, "https://www.youtube.com/@acmevan", got["youtube"])
}

func TestExtractVanTypes(t *testing.T) {
	got := ExtractVanTypes("We build on Sprinter and Transit chassis, high roof only.")

	assert.Equal(t, []string{"sprinter", "transit", "high roof"}, got)
	assert.Nil(t, ExtractVanTypes("no vans mentioned"))
}

func TestExtractAmenities(t *testing.T) {
	got := ExtractAmenities("Every build includes solar, a full kitchen and a composting toilet.")

	assert.Contains(t, got, "solar")
	assert.Contains(t, got, "kitchen")
	assert.Contains(t, got, "composting toilet")
}

func TestExtractPhotos_FiltersAndCaps(t *testing.T) {
	var sb strings.Builder

	sb.WriteString("<html><body>")
	sb.WriteString(`<img src="/img/logo.png" alt="company logo">`)
	sb.WriteString(`<img src="/img/tiny.jpg" width="50" height="50" alt="van thumb">`)

	for i := 0; i < 12; i++ {
		fmt.Fprintf(&sb, `<img src="/gallery/van-%d.jpg" width="800" height="600" alt="van interior %d">`, i, i)
	}

	sb.WriteString("</body></html>")

	doc := docFromHTML(t, sb.String())

	photos := ExtractPhotos(doc)

	require.Len(t, photos, MaxGalleryPhotos)

	for _, p := range photos {
		assert.NotContains(t, p.URL, "logo")
		assert.NotContains(t, p.URL, "tiny")
	}
}

func TestExtractPhotos_PlaceholderWhenEmpty(t *testing.T) {
	doc := docFromHTML(t, `<html><body><img src="/img/logo.png" alt="logo"></body></html>`)

	photos := ExtractPhotos(doc)

	require.Len(t, photos, 1)
	assert.Empty(t, photos[0].URL)
	assert.Equal(t, NoPhotosAlt, photos[0].Alt)
}

func TestExtractPhotos_BackgroundImage(t *testing.T) {
	doc := docFromHTML(t, `<html><body>
		<div style="background-image: url('/hero/van-build.jpg')"></div>
	</body></html>`)

	photos := ExtractPhotos(doc)

	require.Len(t, photos, 1)
	assert.Equal(t, "/hero/van-build.jpg", photos[0].URL)
}

func TestExtractPhotos_PrefersKeywordMatches(t *testing.T) {
	doc := docFromHTML(t, `<html><body>
		<img src="/img/team-photo.jpg" width="800" height="600" alt="our team">
		<img src="/img/sprinter-conversion.jpg" width="800" height="600" alt="van interior">
	</body></html>`)

	photos := ExtractPhotos(doc)

	require.Len(t, photos, 2)
	assert.Equal(t, "/img/sprinter-conversion.jpg", photos[0].URL)
}

package vanscrape

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const acmePage = `<html>
<head>
	<title>Acme Van Co | Custom Camper Vans</title>
	<meta name="description" content="Custom van conversion shop building sprinter camper vans in Austin, Texas.">
</head>
<body>
	<h1>Acme Van Co</h1>
	<p>We are a van conversion company based in Texas building custom sprinter
	and transit camper vans with solar, kitchen and shower options.</p>
	<p>Visit our shop at 4500 Burnet Rd, Austin, TX 78756.</p>
	<p>Call 5125551234 or email info@acmevan.com.</p>
	<a href="https://www.instagram.com/acmevan">Instagram</a>
	<img src="/gallery/sprinter-interior.jpg" width="800" height="600" alt="van interior">
</body>
</html>`

func newAcmeJob(t *testing.T) (*BuilderJob, *goquery.Document, string) {
	t.Helper()

	job := NewBuilderJob("parent", "https://acmevan.com", "Acme Van Co", "Texas")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(acmePage))
	require.NoError(t, err)

	return job, doc, doc.Find("body").Text()
}

func TestNewBuilderJob(t *testing.T) {
	job := NewBuilderJob("parent", "https://acmevan.com", "Acme Van Co", "tx")

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "parent", job.ParentID)
	assert.Equal(t, "https://acmevan.com", job.URL)
	assert.Equal(t, "Texas", job.TargetState)
	assert.Equal(t, MinBusinessScore, job.MinScore)
	assert.False(t, job.UseInResults())
}

func TestNewBuilderJob_LaxValidation(t *testing.T) {
	job := NewBuilderJob("parent", "https://acmevan.com", "", "Texas", WithLaxValidation())

	assert.Equal(t, LaxBusinessScore, job.MinScore)
}

func TestExtractRecord(t *testing.T) {
	job, doc, text := newAcmeJob(t)

	record := job.extractRecord(doc, text)

	assert.Equal(t, "Acme Van Co", record.Name)
	assert.Equal(t, "Texas", record.State)
	assert.Equal(t, "https://acmevan.com", record.Website)
	assert.Equal(t, "5125551234", record.Phone)
	assert.Equal(t, "info@acmevan.com", record.Email)
	assert.Equal(t, "4500 Burnet Rd, Austin, TX 78756", record.Address)
	assert.Equal(t, "Austin", record.City)
	assert.Equal(t, "78756", record.Zip)
	assert.Contains(t, record.VanTypes, "sprinter")
	assert.Contains(t, record.Amenities, "solar")
	assert.Equal(t, "https://www.instagram.com/acmevan", record.SocialMedia["instagram"])
	require.Len(t, record.Gallery, 1)
	assert.Equal(t, "/gallery/sprinter-interior.jpg", record.Gallery[0].URL)
	assert.Contains(t, record.Description, "Custom van conversion shop")
}

func TestExtractRecord_FallsBackToSearchTitle(t *testing.T) {
	job := NewBuilderJob("parent", "https://acmevan.com", "Acme Van Co - Search Result", "Texas")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body><p>bare page</p></body></html>"))
	require.NoError(t, err)

	record := job.extractRecord(doc, doc.Find("body").Text())

	assert.Equal(t, "Acme Van Co - Search Result", record.Name)
}

func TestExtractRecord_PipelineAccepts(t *testing.T) {
	job, doc, text := newAcmeJob(t)

	verification := VerifyLocation(text, job.TargetState)
	require.True(t, verification.Verified, "score %d reasons %v", verification.Score, verification.Reasons)

	record := job.extractRecord(doc, text)

	validation := ValidateBusiness(record, job.MinScore)
	require.True(t, validation.IsValid, "score %d reason %q", validation.Score, validation.Reason)

	require.NoError(t, record.Validate())

	record.Normalize()
	assert.Equal(t, "(512) 555-1234", record.Phone)
}

func TestExtractRecord_PipelineRejectsWrongCategory(t *testing.T) {
	const page = `<html><body>
		<h1>Lone Star Food Truck</h1>
		<p>Austin's favorite food truck, based in Texas. Find us at 78701.</p>
	</body></html>`

	job := NewBuilderJob("parent", "https://lonestarfood.example", "", "Texas")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	text := doc.Find("body").Text()

	require.True(t, VerifyLocation(text, job.TargetState).Verified)

	record := job.extractRecord(doc, text)

	validation := ValidateBusiness(record, job.MinScore)
	assert.False(t, validation.IsValid)
	assert.Contains(t, validation.Reason, "food truck")
}

func TestCityZipFromAddress(t *testing.T) {
	cases := []struct {
		address string
		city    string
		zip     string
	}{
		{"4500 Burnet Rd, Austin, TX 78756", "Austin", "78756"},
		{"12 Oak Ln, Dripping Springs, TX 78620-1234", "Dripping Springs", "78620"},
		{"no address here", "", ""},
	}

	for _, tc := range cases {
		city, zip := cityZipFromAddress(tc.address)
		assert.Equal(t, tc.city, city, tc.address)
		assert.Equal(t, tc.zip, zip, tc.address)
	}
}

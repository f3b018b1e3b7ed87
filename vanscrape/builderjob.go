package vanscrape

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/gosom/scrapemate"
	"github.com/playwright-community/playwright-go"

	"github.com/vanlist/van-builder-scraper/exiter"
)

const (
	navigationTimeoutMs = 30000

	// Politeness delay before each site visit.
	visitDelay = 2 * time.Second
)

type BuilderJobOptions func(*BuilderJob)

// BuilderJob visits one candidate result page, verifies the business is
// located in the target state and extracts a BuilderRecord from it.
// Candidates that fail verification or validation produce no result;
// the batch continues.
type BuilderJob struct {
	scrapemate.Job

	Title       string
	TargetState string
	MinScore    int

	ScreenshotDir string
	ExitMonitor   exiter.Exiter

	ok bool
}

func NewBuilderJob(parentID, u, title, targetState string, opts ...BuilderJobOptions) *BuilderJob {
	const (
		defaultPrio       = scrapemate.PriorityMedium
		defaultMaxRetries = 0
	)

	job := BuilderJob{
		Job: scrapemate.Job{
			ID:         uuid.New().String(),
			ParentID:   parentID,
			Method:     http.MethodGet,
			URL:        u,
			MaxRetries: defaultMaxRetries,
			Priority:   defaultPrio,
		},
		Title:       title,
		TargetState: CanonicalState(targetState),
		MinScore:    MinBusinessScore,
	}

	for _, opt := range opts {
		opt(&job)
	}

	return &job
}

func WithScreenshotDir(dir string) BuilderJobOptions {
	return func(j *BuilderJob) {
		j.ScreenshotDir = dir
	}
}

func WithBuilderJobExitMonitor(exitMonitor exiter.Exiter) BuilderJobOptions {
	return func(j *BuilderJob) {
		j.ExitMonitor = exitMonitor
	}
}

func WithLaxValidation() BuilderJobOptions {
	return func(j *BuilderJob) {
		j.MinScore = LaxBusinessScore
	}
}

func (j *BuilderJob) UseInResults() bool {
	return j.ok
}

func (j *BuilderJob) Process(ctx context.Context, resp *scrapemate.Response) (any, []scrapemate.IJob, error) {
	defer func() {
		resp.Document = nil
		resp.Body = nil
	}()

	defer func() {
		if j.ExitMonitor != nil {
			j.ExitMonitor.IncrCandidatesCompleted(1)
		}
	}()

	log := scrapemate.GetLoggerFromContext(ctx)

	if resp.Error != nil {
		return nil, nil, resp.Error
	}

	doc, ok := resp.Document.(*goquery.Document)
	if !ok {
		return nil, nil, fmt.Errorf("could not convert to goquery document")
	}

	text := doc.Find("body").Text()

	verification := VerifyLocation(text, j.TargetState)
	if !verification.Verified {
		log.Info("candidate rejected: location not verified",
			"url", j.URL, "state", j.TargetState, "score", verification.Score)

		return nil, nil, nil
	}

	record := j.extractRecord(doc, text)
	record.LocationScore = verification.Score

	validation := ValidateBusiness(record, j.MinScore)
	if !validation.IsValid {
		log.Info("candidate rejected: "+validation.Reason, "url", j.URL, "name", record.Name)

		return nil, nil, nil
	}

	record.BusinessScore = validation.Score

	if err := record.Validate(); err != nil {
		return nil, nil, err
	}

	log.Info("candidate accepted", "name", record.Name, "state", record.State,
		"location_score", verification.Score, "business_score", validation.Score)

	j.ok = true

	return record, nil, nil
}

// extractRecord builds a record from the page, best effort per field.
// A missing field never blocks the others.
func (j *BuilderJob) extractRecord(doc *goquery.Document, text string) *BuilderRecord {
	record := &BuilderRecord{
		ID:          j.ID,
		State:       j.TargetState,
		Website:     j.GetURL(),
		SocialMedia: map[string]string{},
	}

	record.Name = firstNonEmpty(
		doc.Find("h1").First().Text(),
		doc.Find(`meta[property="og:site_name"]`).AttrOr("content", ""),
		j.Title,
	)

	record.Phone = ExtractPhone(text)
	record.Email = ExtractEmail(doc, text)
	record.Address = ExtractAddress(text)
	record.SocialMedia = ExtractSocialLinks(doc)
	record.VanTypes = ExtractVanTypes(text)
	record.Amenities = ExtractAmenities(text)
	record.Gallery = ExtractPhotos(doc)

	record.Description = firstNonEmpty(
		doc.Find(`meta[name="description"]`).AttrOr("content", ""),
		doc.Find(`meta[property="og:description"]`).AttrOr("content", ""),
	)

	if record.Address != "" {
		if city, zip := cityZipFromAddress(record.Address); city != "" {
			record.City = city
			record.Zip = zip
		}
	}

	return record
}

func (j *BuilderJob) BrowserActions(ctx context.Context, page playwright.Page) scrapemate.Response {
	var resp scrapemate.Response

	select {
	case <-ctx.Done():
		resp.Error = ctx.Err()
		return resp
	case <-time.After(visitDelay):
	}

	pageResponse, err := page.Goto(j.GetFullURL(), playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(navigationTimeoutMs),
	})
	if err != nil {
		resp.Error = err

		return resp
	}

	resp.URL = pageResponse.URL()
	resp.StatusCode = pageResponse.Status()
	resp.Headers = make(http.Header, len(pageResponse.Headers()))

	for k, v := range pageResponse.Headers() {
		resp.Headers.Add(k, v)
	}

	if j.ScreenshotDir != "" {
		// Artifact is tracked by directory; the runner removes the whole
		// directory on teardown, every exit path included.
		path := filepath.Join(j.ScreenshotDir, j.ID+".png")

		if _, err := page.Screenshot(playwright.PageScreenshotOptions{
			Path:     playwright.String(path),
			FullPage: playwright.Bool(true),
		}); err != nil {
			log := scrapemate.GetLoggerFromContext(ctx)
			log.Info("screenshot failed", "url", j.GetURL(), "error", err.Error())
		}
	}

	body, err := page.Content()
	if err != nil {
		resp.Error = err

		return resp
	}

	resp.Body = []byte(body)

	return resp
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		v = strings.Join(strings.Fields(v), " ")
		if v != "" {
			return v
		}
	}

	return ""
}

var cityZipRe = regexp.MustCompile(`,\s*([A-Za-z.\- ]+?),?\s+[A-Z]{2}\s+(\d{5})(?:-\d{4})?\s*$`)

// cityZipFromAddress pulls the city and zip out of an extracted street
// address like "123 Main St, Austin, TX 78701".
func cityZipFromAddress(address string) (city, zip string) {
	m := cityZipRe.FindStringSubmatch(address)
	if len(m) < 3 {
		return "", ""
	}

	return strings.TrimSpace(m[1]), m[2]
}

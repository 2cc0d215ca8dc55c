// Seeds an organization's document store with crawled documentation pages so
// a fresh deployment has answerable content.
package main

import (
	"crypto/md5"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/docintel/answer-engine/internal/config"
	"github.com/docintel/answer-engine/internal/database"
	"github.com/docintel/answer-engine/internal/models"
	"github.com/docintel/answer-engine/internal/repository"
	"github.com/docintel/answer-engine/pkg/utils"
	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/debug"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// SeedPage is one documentation page to crawl into the document store.
type SeedPage struct {
	Title    string
	URL      string
	Category string
}

// DocumentSeeder crawls pages and upserts them as organization documents.
type DocumentSeeder struct {
	repoManager *repository.RepositoryManager
	logger      *logrus.Logger
	orgID       string
}

var (
	// Default corpus: public product/policy documentation that most
	// tenants ask questions about during evaluation.
	DefaultSeedPages = []SeedPage{
		{Title: "Go Documentation", Category: "reference", URL: "https://go.dev/doc/"},
		{Title: "Effective Go", Category: "reference", URL: "https://go.dev/doc/effective_go"},
		{Title: "Go FAQ", Category: "reference", URL: "https://go.dev/doc/faq"},
	}

	// Command line flags
	dryRun     = flag.Bool("dry-run", false, "Don't write documents, just print what would be stored")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	pageLimit  = flag.Int("limit", 0, "Limit number of pages to process (0 = all)")
	concurrent = flag.Int("concurrent", 2, "Number of concurrent page fetches")
	delay      = flag.Duration("delay", 2*time.Second, "Delay between requests to the same domain")
	orgID      = flag.String("org", "", "Organization to seed documents into (required)")
)

var whitespacePattern = regexp.MustCompile(`\s+`)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if *orgID == "" {
		logger.Fatal("-org is required")
	}

	logger.Info("Starting document seeder...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	var repoManager *repository.RepositoryManager
	if !*dryRun {
		dbManager, err := database.NewManager(&database.Config{
			DatabaseURL: cfg.Database.URL,
			RedisURL:    cfg.Redis.URL,
			LogLevel:    os.Getenv("LOG_LEVEL"),
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize database manager")
		}
		defer dbManager.Close()

		if err := dbManager.Migrate(); err != nil {
			logger.WithError(err).Fatal("Database migration failed")
		}

		repoManager = repository.NewRepositoryManager(dbManager.DB)
	}

	seeder := &DocumentSeeder{
		repoManager: repoManager,
		logger:      logger,
		orgID:       *orgID,
	}

	if err := seeder.SeedDocuments(DefaultSeedPages); err != nil {
		logger.WithError(err).Fatal("Document seeding failed")
	}

	logger.Info("Document seeding completed successfully!")
}

func (ds *DocumentSeeder) SeedDocuments(pages []SeedPage) error {
	if *pageLimit > 0 && *pageLimit < len(pages) {
		pages = pages[:*pageLimit]
		ds.logger.WithField("limit", *pageLimit).Info("Limited pages to process")
	}

	ds.logger.WithField("total_pages", len(pages)).Info("Processing seed pages")

	var g errgroup.Group
	g.SetLimit(*concurrent)

	for _, page := range pages {
		page := page
		g.Go(func() error {
			if err := ds.processPage(page); err != nil {
				ds.logger.WithError(err).WithField("page", page.Title).Error("Failed to process page")
				return fmt.Errorf("failed to process %s: %w", page.Title, err)
			}
			ds.logger.WithField("page", page.Title).Info("Page processed successfully")
			return nil
		})
	}

	return g.Wait()
}

func (ds *DocumentSeeder) processPage(page SeedPage) error {
	collector := colly.NewCollector(
		colly.UserAgent("AnswerEngine-Seeder/1.0"),
	)
	if *verbose {
		collector.SetDebugger(&debug.LogDebugger{})
	}
	collector.Limit(&colly.LimitRule{
		DomainGlob: "*",
		Delay:      *delay,
	})
	collector.SetRequestTimeout(30 * time.Second)

	var content string
	var processingError error

	collector.OnHTML("body", func(e *colly.HTMLElement) {
		e.DOM.Find("nav, header, footer, script, style, aside").Remove()
		text := strings.TrimSpace(e.DOM.Text())
		content = whitespacePattern.ReplaceAllString(text, " ")
	})

	collector.OnError(func(r *colly.Response, err error) {
		processingError = err
	})

	if err := collector.Visit(page.URL); err != nil {
		return fmt.Errorf("failed to visit page: %w", err)
	}
	if processingError != nil {
		return fmt.Errorf("processing error: %w", processingError)
	}
	if content == "" {
		return fmt.Errorf("no content extracted from page")
	}

	contentHash := hashContent(content)

	if *dryRun {
		ds.logger.WithFields(logrus.Fields{
			"page":           page.Title,
			"content_length": len(content),
			"hash":           contentHash[:8],
		}).Info("DRY RUN: Would store document")
		return nil
	}

	doc := &models.Document{
		DocumentID:     documentID(page.URL),
		OrganizationID: ds.orgID,
		OriginalName:   page.Title,
		TextContent:    content,
		Summary:        summarize(content),
		Category:       page.Category,
		SourceURL:      page.URL,
		ContentHash:    contentHash,
	}

	return ds.repoManager.Document.Upsert(doc)
}

// summarize keeps the leading slice of the extracted text. Real
// summarization belongs to the upload pipeline; seeded documents only need
// enough to render a source card.
func summarize(content string) string {
	const maxSummary = 500
	if len(content) <= maxSummary {
		return content
	}
	return content[:maxSummary]
}

func documentID(url string) string {
	return "seed-" + hashContent(url)[:12]
}

func hashContent(content string) string {
	hash := md5.Sum([]byte(content))
	return hex.EncodeToString(hash[:])
}

package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"bookmarket/internal/domain"
)

const chitaiGorodBase = "https://www.chitai-gorod.ru"

var chitaiGorodGenres = []string{
	"klassicheskaya-proza-110003",
	"detektiv-triller-110010",
	"fantastika-113787",
	"lyubovnye-romany-110005",
	"priklyucheniya-110006",
	"detskie-knigi-110013",
	"nauchnaya-literatura-110015",
	"psikhologiya-110016",
	"biznes-knigi-110017",
}

// ChitaiGorodSource scrapes the chitai-gorod.ru genre catalog pages.
type ChitaiGorodSource struct {
	logger *zap.Logger
}

func NewChitaiGorodSource(logger *zap.Logger) *ChitaiGorodSource {
	return &ChitaiGorodSource{logger: logger}
}

func (s *ChitaiGorodSource) Name() string { return "chitai-gorod" }

func (s *ChitaiGorodSource) FileName() string { return "chitai_gorod_1000.csv" }

func (s *ChitaiGorodSource) Scrape(ctx context.Context, client *Client, pageLimit int) ([]domain.Record, error) {
	var records []domain.Record

	pagesPerGenre := pageLimit / len(chitaiGorodGenres)
	if pagesPerGenre < 1 {
		pagesPerGenre = 1
	}

	for _, genre := range chitaiGorodGenres {
		for page := 1; page <= pagesPerGenre; page++ {
			if err := ctx.Err(); err != nil {
				return records, err
			}

			url := fmt.Sprintf("%s/catalog/books/%s?page=%d", chitaiGorodBase, genre, page)
			doc, err := client.GetDocument(ctx, url)
			if err != nil {
				s.logger.Warn("Skipping page",
					zap.String("source", s.Name()),
					zap.String("url", url),
					zap.Error(err),
				)
				continue
			}

			items := doc.Find("article.product-card, .product-card, .app-products-list__item")
			if items.Length() == 0 {
				// Past the last page of the genre.
				break
			}

			added := 0
			items.Each(func(_ int, item *goquery.Selection) {
				if record, ok := s.parseCard(item); ok {
					records = append(records, record)
					added++
				}
			})
			logPageDone(s.logger, s.Name(), genre, page, added, len(records))

			if len(records) >= targetRecords {
				return records[:targetRecords], nil
			}

			client.Throttle(ctx, time.Second, 2*time.Second)
		}
	}

	return records, nil
}

func (s *ChitaiGorodSource) parseCard(item *goquery.Selection) (domain.Record, bool) {
	title := firstText(item, ".product-card__title", ".product-card__caption a")
	if title == "" {
		return domain.Record{}, false
	}
	// Titles carry edition notes in parentheses, keep the bare title.
	if idx := strings.Index(title, "("); idx > 0 && strings.Contains(title, ")") {
		title = strings.TrimSpace(title[:idx])
	}

	author := firstText(item, ".product-card__subtitle", ".product-card__caption span")

	price := cleanPrice(firstText(item, ".product-mini-card-price__price", ".product-price__value"))

	link := ""
	for _, selector := range []string{"a.product-card__title", `a[href*="/product/"]`} {
		if href, ok := item.Find(selector).First().Attr("href"); ok && href != "" {
			link = absoluteURL(chitaiGorodBase, href)
			break
		}
	}

	imageURL := firstImage(item, chitaiGorodBase, "img.product-card__image", ".product-card__image-wrapper img")

	return domain.Record{
		Title:    title,
		Author:   author,
		ISBN:     generateISBN(),
		Price:    price,
		URL:      link,
		ImageURL: imageURL,
		Website:  s.Name(),
	}, true
}

// firstText returns the trimmed text of the first selector that matches a
// non-empty element.
func firstText(item *goquery.Selection, selectors ...string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(item.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// firstImage resolves the image URL from the first matching selector,
// preferring src and falling back to the lazy-loading data-src attribute.
func firstImage(item *goquery.Selection, base string, selectors ...string) string {
	for _, selector := range selectors {
		img := item.Find(selector).First()
		if img.Length() == 0 {
			continue
		}
		src, ok := img.Attr("src")
		if !ok || src == "" {
			src, _ = img.Attr("data-src")
		}
		if src != "" {
			return absoluteURL(base, src)
		}
	}
	return ""
}

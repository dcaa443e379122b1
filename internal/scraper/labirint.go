package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"bookmarket/internal/domain"
)

const labirintBase = "https://www.labirint.ru"

var labirintCategories = []struct {
	path string
	name string
}{
	{"/genres/2308/", "Фантастика"},
	{"/genres/1852/", "Детективы"},
	{"/genres/1851/", "Романы"},
	{"/genres/1850/", "Приключения"},
	{"/genres/1858/", "Детские книги"},
	{"/genres/1854/", "Бизнес"},
	{"/genres/1855/", "Психология"},
	{"/search/?stype=0&way=popular", "Популярное"},
}

// LabirintSource scrapes the labirint.ru genre catalog in table view.
type LabirintSource struct {
	logger *zap.Logger
}

func NewLabirintSource(logger *zap.Logger) *LabirintSource {
	return &LabirintSource{logger: logger}
}

func (s *LabirintSource) Name() string { return "labirint" }

func (s *LabirintSource) FileName() string { return "labirint_1000.csv" }

func (s *LabirintSource) Scrape(ctx context.Context, client *Client, pageLimit int) ([]domain.Record, error) {
	var records []domain.Record

	pagesPerCategory := pageLimit / len(labirintCategories)
	if pagesPerCategory < 1 {
		pagesPerCategory = 1
	}

	for _, category := range labirintCategories {
		for page := 1; page <= pagesPerCategory; page++ {
			if err := ctx.Err(); err != nil {
				return records, err
			}

			var url string
			if category.path == "/search/?stype=0&way=popular" {
				url = fmt.Sprintf("%s%s&page=%d", labirintBase, category.path, page)
			} else {
				url = fmt.Sprintf("%s%s?display=table&page=%d", labirintBase, category.path, page)
			}

			doc, err := client.GetDocument(ctx, url)
			if err != nil {
				s.logger.Warn("Skipping page",
					zap.String("source", s.Name()),
					zap.String("url", url),
					zap.Error(err),
				)
				continue
			}

			items := doc.Find(".product")
			if items.Length() == 0 {
				break
			}

			added := 0
			items.Each(func(_ int, item *goquery.Selection) {
				if record, ok := s.parseCard(item); ok {
					records = append(records, record)
					added++
				}
			})
			logPageDone(s.logger, s.Name(), category.name, page, added, len(records))

			if len(records) >= targetRecords {
				return records[:targetRecords], nil
			}

			// Labirint is the most aggressive about throttling.
			client.Throttle(ctx, 2*time.Second, 4*time.Second)
		}
	}

	return records, nil
}

func (s *LabirintSource) parseCard(item *goquery.Selection) (domain.Record, bool) {
	title := firstText(item, ".product-title")
	if title == "" {
		return domain.Record{}, false
	}

	author := firstText(item, ".product-author")
	price := cleanPrice(firstText(item, ".price-val"))

	link := ""
	if href, ok := item.Find(".product-title-link").First().Attr("href"); ok {
		link = absoluteURL(labirintBase, href)
	}

	imageURL := ""
	if src, ok := item.Find(".book-img-cover").First().Attr("data-src"); ok {
		imageURL = absoluteURL(labirintBase, src)
	}

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

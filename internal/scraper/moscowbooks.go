package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"bookmarket/internal/domain"
)

const moscowBooksBase = "https://www.moscowbooks.ru"

var moscowBooksGenres = []struct {
	path string
	name string
}{
	{"books/fiction/science-fiction/", "Фантастика"},
	{"books/exceptional/history-historical-sciences/", "История"},
	{"books/biographies-memoirs-publicism/", "Биографии"},
	{"books/exceptional/programming/", "Программирование"},
	{"books/fiction/the-novel/", "Романы"},
	{"books/children/children-fiction/", "Детская литература"},
	{"books/non-fiction/psychology/", "Психология"},
	{"books/non-fiction/business-finance/", "Бизнес"},
	{"books/non-fiction/philosophy/", "Философия"},
	{"books/non-fiction/art-culture/", "Искусство"},
}

// MoscowBooksSource scrapes the moscowbooks.ru catalog pages.
type MoscowBooksSource struct {
	logger *zap.Logger
}

func NewMoscowBooksSource(logger *zap.Logger) *MoscowBooksSource {
	return &MoscowBooksSource{logger: logger}
}

func (s *MoscowBooksSource) Name() string { return "moscowbooks" }

func (s *MoscowBooksSource) FileName() string { return "moscowbooks_1000.csv" }

func (s *MoscowBooksSource) Scrape(ctx context.Context, client *Client, pageLimit int) ([]domain.Record, error) {
	var records []domain.Record

	pagesPerGenre := pageLimit / len(moscowBooksGenres)
	if pagesPerGenre < 1 {
		pagesPerGenre = 1
	}

	for _, genre := range moscowBooksGenres {
		for page := 1; page <= pagesPerGenre; page++ {
			if err := ctx.Err(); err != nil {
				return records, err
			}

			url := fmt.Sprintf("%s/%s", moscowBooksBase, genre.path)
			if page > 1 {
				url = fmt.Sprintf("%s?PAGEN_1=%d", url, page)
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

			items := doc.Find(".catalog__item.js-catalog-item")
			if items.Length() == 0 {
				items = doc.Find(".js-catalog-item, .catalog__item")
			}
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
			logPageDone(s.logger, s.Name(), genre.name, page, added, len(records))

			if len(records) >= targetRecords {
				return records[:targetRecords], nil
			}

			client.Throttle(ctx, time.Second, 3*time.Second)
		}
	}

	return records, nil
}

func (s *MoscowBooksSource) parseCard(item *goquery.Selection) (domain.Record, bool) {
	title := firstText(item, ".book-preview__title-link")
	if title == "" {
		return domain.Record{}, false
	}

	author := firstText(item, ".book-preview__author .author-name")
	price := cleanPrice(firstText(item, ".book-preview__price"))

	link := ""
	for _, selector := range []string{".book-preview__title-link", ".book-preview__cover a"} {
		if href, ok := item.Find(selector).First().Attr("href"); ok && href != "" {
			link = absoluteURL(moscowBooksBase, href)
			break
		}
	}

	imageURL := firstImage(item, moscowBooksBase, ".book-preview__img")

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

package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCSVFile(t *testing.T, name, content string) SourceFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return SourceFile{Path: path, Website: "labirint"}
}

func TestLoadSource(t *testing.T) {
	source := writeCSVFile(t, "labirint.csv",
		"\xEF\xBB\xBF"+ // exports carry a UTF-8 BOM
			"title,author,isbn,price,url,image_url,website\n"+
			"Дюна,Фрэнк Герберт,9785171367060,450,https://labirint.ru/dune,https://img/dune.jpg,labirint\n"+
			"  Мастер  и Маргарита ,Михаил Булгаков,,380,https://labirint.ru/master,,labirint\n"+
			"Без названия,Кто-то,,100,https://labirint.ru/x,,labirint\n"+
			"Идиот,Фёдор Достоевский,,not-a-price,https://labirint.ru/idiot,,labirint\n"+
			"Сказки,Автор,,0,https://labirint.ru/free,,labirint\n")

	records, invalid, err := LoadSource(source)
	if err != nil {
		t.Fatalf("LoadSource failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 valid records, got %d", len(records))
	}
	if invalid != 3 {
		t.Errorf("invalid = %d, want 3 (placeholder title, bad price, zero price)", invalid)
	}

	// BOM must not leak into the first header column.
	if records[0].Title != "Дюна" {
		t.Errorf("Title = %q, want %q", records[0].Title, "Дюна")
	}
	if records[0].Website != "labirint" {
		t.Errorf("Website = %q, want source website", records[0].Website)
	}

	// Fields come back normalized.
	if records[1].Title != "Мастер и Маргарита" {
		t.Errorf("Title = %q, want cleaned form", records[1].Title)
	}
}

func TestLoadSource_MissingFile(t *testing.T) {
	_, _, err := LoadSource(SourceFile{Path: filepath.Join(t.TempDir(), "absent.csv"), Website: "labirint"})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadSource_ExtraColumnsIgnored(t *testing.T) {
	source := writeCSVFile(t, "chitai.csv",
		"title,author,price,url,image_url,isbn,category,description\n"+
			"Дюна,Фрэнк Герберт,450,https://chitai-gorod.ru/dune,,9785171367060,Фантастика,Роман\n")

	records, invalid, err := LoadSource(source)
	if err != nil {
		t.Fatalf("LoadSource failed: %v", err)
	}
	if len(records) != 1 || invalid != 0 {
		t.Fatalf("got %d records, %d invalid", len(records), invalid)
	}
	if records[0].ISBN != "9785171367060" {
		t.Errorf("ISBN = %q, columns must be matched by header name", records[0].ISBN)
	}
}

func TestDefaultSources(t *testing.T) {
	sources := DefaultSources("data")
	if len(sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(sources))
	}

	websites := map[string]bool{}
	for _, s := range sources {
		websites[s.Website] = true
		if filepath.Dir(s.Path) != "data" {
			t.Errorf("source path %q not under data dir", s.Path)
		}
	}
	for _, w := range []string{"chitai-gorod", "labirint", "moscowbooks"} {
		if !websites[w] {
			t.Errorf("missing source for %s", w)
		}
	}
}

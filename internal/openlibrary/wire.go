package openlibrary

import (
	"bytes"
	"strings"

	"github.com/abelbrown/bookscout/internal/book"
)

// searchResponse matches search.json.
type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	CoverID          int      `json:"cover_i"`
	Subjects         []string `json:"subject"`
}

// workResponse matches works/{id}.json.
type workResponse struct {
	Title       string     `json:"title"`
	Description textValue  `json:"description"`
	Authors     []workRole `json:"authors"`
	Subjects    []string   `json:"subjects"`
	Covers      []int      `json:"covers"`
	Pages       int        `json:"number_of_pages"`
}

type workRole struct {
	Author struct {
		Key string `json:"key"`
	} `json:"author"`
}

// authorResponse matches authors/{key}.json.
type authorResponse struct {
	Name         string `json:"name"`
	PersonalName string `json:"personal_name"`
}

// textValue accepts either "text" or {"type": "/type/text", "value": "text"}.
type textValue string

func (t *textValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = textValue(s)
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*t = textValue(obj.Value)
	return nil
}

// WorkID strips the "/works/" prefix from an Open Library key.
func WorkID(key string) string {
	return strings.TrimPrefix(strings.TrimSpace(key), "/works/")
}

// AuthorID strips the "/authors/" prefix from an Open Library key.
func AuthorID(key string) string {
	return strings.TrimPrefix(strings.TrimSpace(key), "/authors/")
}

func (d searchDoc) summary() book.Summary {
	return book.Summary{
		ID:          WorkID(d.Key),
		Title:       d.Title,
		AuthorNames: d.AuthorNames,
		PublishYear: max(d.FirstPublishYear, 0),
		CoverID:     max(d.CoverID, 0),
		Subjects:    d.Subjects,
	}
}

func (w workResponse) detail(id string) book.Detail {
	d := book.Detail{
		ID:            id,
		Title:         w.Title,
		Description:   string(w.Description),
		Subjects:      w.Subjects,
		NumberOfPages: max(w.Pages, 0),
	}
	for _, a := range w.Authors {
		if a.Author.Key != "" {
			d.AuthorKeys = append(d.AuthorKeys, a.Author.Key)
		}
	}
	// Open Library uses -1 for removed covers.
	for _, c := range w.Covers {
		if c > 0 {
			d.CoverIDs = append(d.CoverIDs, c)
		}
	}
	return d
}

package server

import (
	"github.com/1Zgp/sailfish-barcode/datastore"
	"github.com/1Zgp/sailfish-barcode/trans"
)

type Context struct {
	Name     string    `json:"name"`
	Comment  string    `json:"comment,omitempty"`
	Messages []Message `json:"messages"`
}

func NewContext(dc *datastore.Context) *Context {
	c := &Context{Name: dc.Name, Comment: dc.Comment, Messages: make([]Message, len(dc.Messages))}

	for i, m := range dc.Messages {
		nm := Message{
			Id:           m.MsgID,
			Source:       m.Source,
			Comment:      m.Comment,
			ExtraComment: m.ExtraComment,
			Numerus:      m.Numerus,
			Translations: make(map[string]Translation),
		}
		for code, t := range m.Translations {
			nm.Translations[code] = NewTranslation(t)
		}
		c.Messages[i] = nm
	}

	return c
}

type Message struct {
	Id           string                 `json:"id,omitempty"`
	Source       string                 `json:"source"`
	Comment      string                 `json:"comment,omitempty"`
	ExtraComment string                 `json:"extracomment,omitempty"`
	Numerus      bool                   `json:"numerus,omitempty"`
	Translations map[string]Translation `json:"translations"`
}

// Translation is also the request body of translation edits.
type Translation struct {
	Status            string   `json:"status,omitempty"`
	Content           string   `json:"content,omitempty"`
	Forms             []string `json:"forms,omitempty"`
	TranslatorComment string   `json:"translatorcomment,omitempty"`
}

func NewTranslation(t *datastore.Translation) Translation {
	return Translation{
		Status:            statusName(t.Status),
		Content:           t.Text,
		Forms:             t.Forms,
		TranslatorComment: t.TranslatorComment,
	}
}

func (t Translation) datastore() datastore.Translation {
	return datastore.Translation{
		Translation: trans.Translation{
			Status: trans.ParseStatus(t.Status),
			Text:   t.Content,
			Forms:  t.Forms,
		},
		TranslatorComment: t.TranslatorComment,
	}
}

func statusName(s trans.Status) string {
	if s == trans.Finished {
		return "finished"
	}
	return s.String()
}

type Lookup struct {
	Language string `json:"language"`
	Text     string `json:"text"`
	Found    bool   `json:"found"`
}

type CatalogSummary struct {
	Language string      `json:"language"`
	Stats    trans.Stats `json:"stats"`
}

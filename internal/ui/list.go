package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/pubdex/internal/models"
)

var _ list.Item = publicationItem{}

// publicationItem wraps [models.Publication] to implement [list.Item].
type publicationItem struct {
	pub models.Publication
}

func (i publicationItem) FilterValue() string { return i.pub.Title }
func (i publicationItem) Title() string       { return i.pub.Title }
func (i publicationItem) Description() string {
	desc := i.pub.AuthorNames()
	if desc == "" {
		desc = "unknown authors"
	}
	if i.pub.Year != nil {
		desc = fmt.Sprintf("%s • %d", desc, *i.pub.Year)
	}
	if i.pub.Journal != nil && *i.pub.Journal != "" {
		desc = fmt.Sprintf("%s • %s", desc, *i.pub.Journal)
	}
	return desc
}

// publicationItems converts a fetched slice into list items.
func publicationItems(pubs []models.Publication) []list.Item {
	items := make([]list.Item, len(pubs))
	for i, pub := range pubs {
		items[i] = publicationItem{pub: pub}
	}
	return items
}

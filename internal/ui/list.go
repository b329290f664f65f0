package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/vincentsto199-blip/Comic/internal/catalog"
	"github.com/vincentsto199-blip/Comic/internal/library"
	"github.com/vincentsto199-blip/Comic/internal/models"
)

var (
	_ list.Item = issueItem{}
	_ list.Item = soundtrackItem{}
)

// issueItem wraps [catalog.Issue] to implement [list.Item].
type issueItem struct {
	issue catalog.Issue
}

func (i issueItem) FilterValue() string { return library.IssueTitle(i.issue) }
func (i issueItem) Title() string       { return library.IssueTitle(i.issue) }
func (i issueItem) Description() string {
	if i.issue.CoverDate != "" {
		return i.issue.CoverDate
	}
	return "no cover date"
}

// soundtrackItem wraps [models.Soundtrack] to implement [list.Item].
type soundtrackItem struct {
	soundtrack *models.Soundtrack
}

func (i soundtrackItem) FilterValue() string { return i.soundtrack.Title() }

func (i soundtrackItem) Title() string {
	marker := ""
	switch i.soundtrack.ViewerVote() {
	case 1:
		marker = " ▲"
	case -1:
		marker = " ▼"
	}
	return fmt.Sprintf("%s  [%+d]%s", i.soundtrack.Title(), i.soundtrack.Score(), marker)
}

func (i soundtrackItem) Description() string {
	return fmt.Sprintf("%d tracks • by %s", len(i.soundtrack.Tracks()), i.soundtrack.OwnerName())
}

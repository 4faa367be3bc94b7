package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/osintlab/papex/internal/model"
)

// minRawActivityLen guards the raw tier against storing stray fragments.
const minRawActivityLen = 10

var activityTitles = []string{"Activité", "Activité de"}

// parseActivity runs the three-tier chain for the activity section:
// label/value table rows, then bounded text patterns, then the section's
// whole text as an unstructured fallback.
func parseActivity(doc *goquery.Document) *model.Activity {
	section := locateAny(doc, activityTitles, []string{"activité"})
	if section == nil {
		return nil
	}

	activity, ok := runChain("activite",
		strategy[*model.Activity]{name: "table", run: func() (*model.Activity, bool) {
			return activityFromTables(section)
		}},
		strategy[*model.Activity]{name: "patterns", run: func() (*model.Activity, bool) {
			return activityFromPatterns(section.Text())
		}},
		strategy[*model.Activity]{name: "raw", run: func() (*model.Activity, bool) {
			text := trim(section.Text())
			if len(text) <= minRawActivityLen {
				return nil, false
			}
			return &model.Activity{Raw: text}, true
		}},
	)
	if !ok {
		return nil
	}
	return activity
}

func activityFromTables(section *goquery.Selection) (*model.Activity, bool) {
	activity := &model.Activity{}
	section.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(trim(cells.Eq(0).Text()))
		value := trim(cells.Eq(1).Text())
		applyActivityLabel(activity, label, value)
	})
	if !activity.Structured() {
		return nil, false
	}
	return activity, true
}

// applyActivityLabel routes a label cell onto the matching structured field.
// Shared with the universal table sweep.
func applyActivityLabel(activity *model.Activity, label, value string) {
	switch {
	case strings.Contains(label, "activité principale") || strings.Contains(label, "activité déclarée"):
		activity.Description = value
	case strings.Contains(label, "code naf") || strings.Contains(label, "code ape") || strings.Contains(label, "naf"):
		activity.Code = value
	case strings.Contains(label, "domaine"):
		activity.Domain = value
	}
}

func activityFromPatterns(text string) (*model.Activity, bool) {
	activity := &model.Activity{
		Description: firstMatch(activityDescExpr, text),
		Code:        firstMatch(activityCodeExpr, text),
		Domain:      firstMatch(activityDomainExpr, text),
	}
	if !activity.Structured() {
		return nil, false
	}
	return activity, true
}

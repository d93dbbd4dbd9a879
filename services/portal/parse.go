// services/portal/parse.go
package portal

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"classfinder/models"

	"github.com/PuerkitoBio/goquery"
)

// BuildingOption is one entry of the building selector on the room view.
type BuildingOption struct {
	ID   string
	Name string
}

// RoomRow is one classroom line of the occupancy grid.
type RoomRow struct {
	Name  string
	Slots []bool // true = free
}

// Page is the parsed room_view page.
type Page struct {
	Week      int // 0 when the page does not show a selected week
	Buildings []BuildingOption
	Rooms     []RoomRow
	HasGrid   bool
}

// header rows of the occupancy table: day names, then period numbers
const gridHeaderRows = 2

var digits = regexp.MustCompile(`\d+`)

// ParsePage extracts the week, building selector and occupancy grid.
func ParsePage(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse room view: %w", err)
	}

	page := &Page{Week: detectWeek(doc)}

	doc.Find(`select[name="jxlh"] option`).Each(func(_ int, opt *goquery.Selection) {
		val, _ := opt.Attr("value")
		if strings.TrimSpace(val) == "" {
			return
		}
		page.Buildings = append(page.Buildings, BuildingOption{ID: val, Name: strings.TrimSpace(opt.Text())})
	})

	table := doc.Find("table.table-bordered").First()
	if table.Length() == 0 {
		return page, nil
	}
	page.HasGrid = true

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i < gridHeaderRows {
			return
		}
		cells := row.Find("td")
		if cells.Length() < models.SlotsPerWeek+1 {
			return
		}
		slots := make([]bool, models.SlotsPerWeek)
		cells.Slice(1, models.SlotsPerWeek+1).Each(func(j int, cell *goquery.Selection) {
			style, _ := cell.Attr("style")
			slots[j] = isFreeStyle(style)
		})
		page.Rooms = append(page.Rooms, RoomRow{Name: roomName(cells.First().Text()), Slots: slots})
	})

	return page, nil
}

// detectWeek reads the selected week from the week selector, falling back to
// the chosen.js label ("第10周").
func detectWeek(doc *goquery.Document) int {
	if val, ok := doc.Find("select#zc option[selected]").First().Attr("value"); ok {
		if week, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return week
		}
	}
	label := doc.Find("a.chosen-single").First().Text()
	if m := digits.FindString(label); m != "" {
		if week, err := strconv.Atoi(m); err == nil {
			return week
		}
	}
	return 0
}

// roomName strips the capacity suffix, "SY101(120)" -> "SY101".
func roomName(cell string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(cell), "(")
	return strings.TrimSpace(name)
}

// Free cells are painted white; anything else is occupied.
func isFreeStyle(style string) bool {
	style = strings.ToLower(style)
	return strings.Contains(style, "background-color: #fff") || strings.Contains(style, "background-color:#fff")
}

func csrfToken(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	return doc.Find(`input[name="csrfmiddlewaretoken"]`).First().AttrOr("value", "")
}

package portal

import (
	"strings"
	"testing"
)

func TestParsePage(t *testing.T) {
	html := roomViewHTML(7,
		[]fakeBuilding{{"01", "思源楼"}, {"02", "逸夫楼"}},
		roomRowHTML("SY101(120)", 0, 1, 2),
		roomRowHTML(" SY102 ", 10),
		`<tr><td>SY103</td><td style="background-color: #fff"></td></tr>`,
	)

	page, err := ParsePage(strings.NewReader(html))
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}
	if page.Week != 7 {
		t.Fatalf("expected week 7, got %d", page.Week)
	}
	if len(page.Buildings) != 2 || page.Buildings[0].ID != "01" || page.Buildings[1].Name != "逸夫楼" {
		t.Fatalf("unexpected buildings: %+v", page.Buildings)
	}
	if !page.HasGrid {
		t.Fatal("expected grid to be detected")
	}
	if len(page.Rooms) != 2 {
		t.Fatalf("expected short rows to be skipped, got %d rooms", len(page.Rooms))
	}
	if page.Rooms[0].Name != "SY101" || page.Rooms[1].Name != "SY102" {
		t.Fatalf("unexpected room names: %q %q", page.Rooms[0].Name, page.Rooms[1].Name)
	}
	first := page.Rooms[0].Slots
	if !first[0] || !first[1] || !first[2] || first[3] {
		t.Fatalf("unexpected slots for SY101: %v", first[:4])
	}
}

func TestParsePageWeekFromChosenLabel(t *testing.T) {
	html := `<html><body><a class="chosen-single"><span>第12周</span></a></body></html>`
	page, err := ParsePage(strings.NewReader(html))
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}
	if page.Week != 12 {
		t.Fatalf("expected week 12, got %d", page.Week)
	}
	if page.HasGrid || len(page.Buildings) != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}
}

func TestParsePageWithoutWeek(t *testing.T) {
	page, err := ParsePage(strings.NewReader(`<html><body></body></html>`))
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}
	if page.Week != 0 {
		t.Fatalf("expected undetected week, got %d", page.Week)
	}
}

func TestIsFreeStyle(t *testing.T) {
	tests := map[string]bool{
		"background-color: #fff":           true,
		"BACKGROUND-COLOR:#FFF;":           true,
		"width:10px;background-color:#fff": true,
		"background-color: #c4e1ff":        false,
		"":                                 false,
	}
	for style, want := range tests {
		if got := isFreeStyle(style); got != want {
			t.Errorf("isFreeStyle(%q) = %v, want %v", style, got, want)
		}
	}
}

func TestCSRFToken(t *testing.T) {
	if got := csrfToken(loginPageHTML); got != "tok-123" {
		t.Fatalf("expected tok-123, got %q", got)
	}
	if got := csrfToken("<html></html>"); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
}

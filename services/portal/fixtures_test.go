package portal

import (
	"fmt"
	"strings"

	"classfinder/models"
)

const (
	freeCell = `<td style="background-color: #fff"></td>`
	busyCell = `<td style="background-color: #c4e1ff">课</td>`
)

// roomRowHTML renders a grid row; free lists the free slot indexes.
func roomRowHTML(name string, free ...int) string {
	isFree := make(map[int]bool, len(free))
	for _, i := range free {
		isFree[i] = true
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<tr><td>%s</td>", name)
	for i := 0; i < models.SlotsPerWeek; i++ {
		if isFree[i] {
			b.WriteString(freeCell)
		} else {
			b.WriteString(busyCell)
		}
	}
	b.WriteString("</tr>")
	return b.String()
}

type fakeBuilding struct {
	id, name string
}

// roomViewHTML renders a signed-in room view page.
func roomViewHTML(week int, buildings []fakeBuilding, rows ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><a href="/logout">退出</a>`)
	b.WriteString(`<select id="zc" name="zc">`)
	for w := 1; w <= 20; w++ {
		sel := ""
		if w == week {
			sel = " selected"
		}
		fmt.Fprintf(&b, `<option value="%d"%s>第%d周</option>`, w, sel, w)
	}
	b.WriteString(`</select><select name="jxlh"><option value="">全部</option>`)
	for _, bd := range buildings {
		fmt.Fprintf(&b, `<option value="%s">%s</option>`, bd.id, bd.name)
	}
	b.WriteString(`</select><table class="table table-bordered"><tr><th>教室</th></tr><tr><th>节次</th></tr>`)
	for _, r := range rows {
		b.WriteString(r)
	}
	b.WriteString(`</table></body></html>`)
	return b.String()
}

const loginPageHTML = `<html><head><title>用户登录</title></head><body>
<form method="post"><input type="hidden" name="csrfmiddlewaretoken" value="tok-123">
<input name="loginname"><input name="password" type="password"></form></body></html>`

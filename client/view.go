package client

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"classfinder/models"
)

// Messages shown to the user.
const (
	EmptyMessage        = "未找到数据"
	QueryErrorPrefix    = "查询出错: "
	FallbackWarning     = "无法连接服务器，当前显示的是演示数据"
	LoginFailedMessage  = "登录失败，请重试"
	LoginPromptMessage  = "请先登录教务系统"
	recommendedRoomText = "推荐教室"
	freeRunText         = "连续空闲"
)

// Card is one building's recommendation as displayed.
type Card struct {
	Building  string  `json:"building"`
	Room      string  `json:"room"`
	MaxFree   int     `json:"max_free"`
	TimeRange string  `json:"time_range"`
	Fill      float64 `json:"fill"` // share of models.MaxFreeDisplay, at most 1
}

// NewCard builds the card for one building.
func NewCard(b models.BuildingAvailability) Card {
	fill := float64(b.BestRoom.MaxFree) / float64(models.MaxFreeDisplay)
	if fill > 1 {
		fill = 1
	}
	if fill < 0 {
		fill = 0
	}
	return Card{
		Building:  b.Building,
		Room:      b.BestRoom.Room,
		MaxFree:   b.BestRoom.MaxFree,
		TimeRange: b.BestRoom.TimeRange,
		Fill:      fill,
	}
}

// WeekHeader is the title above a week's cards.
func WeekHeader(week int) string {
	return fmt.Sprintf("第 %d 周查询结果", week)
}

// View is the display the Controller drives.
type View interface {
	SetBusy(busy bool)
	// Clear empties the results area and hides banners.
	Clear()
	ShowLogin()
	HideLogin()
	ShowLoginError(msg string)
	ShowError(msg string)
	ShowWarning(msg string)
	ShowEmpty()
	ShowCards(week int, cards []Card)
}

// Flusher is implemented by views that buffer output until a cycle ends.
type Flusher interface {
	Flush() error
}

// TextView prints to a terminal as things happen.
type TextView struct {
	w        io.Writer
	barWidth int
}

func NewTextView(w io.Writer) *TextView {
	return &TextView{w: w, barWidth: 28}
}

func (v *TextView) SetBusy(busy bool) {
	if busy {
		fmt.Fprintln(v.w, "查询中...")
	}
}

func (v *TextView) Clear() {}

func (v *TextView) ShowLogin() {
	fmt.Fprintln(v.w, LoginPromptMessage)
}

func (v *TextView) HideLogin() {}

func (v *TextView) ShowLoginError(msg string) {
	fmt.Fprintln(v.w, "! "+msg)
}

func (v *TextView) ShowError(msg string) {
	fmt.Fprintln(v.w, "! "+msg)
}

func (v *TextView) ShowWarning(msg string) {
	fmt.Fprintln(v.w, "* "+msg)
}

func (v *TextView) ShowEmpty() {
	fmt.Fprintln(v.w, EmptyMessage)
}

func (v *TextView) ShowCards(week int, cards []Card) {
	fmt.Fprintf(v.w, "\n%s\n\n", WeekHeader(week))
	for _, c := range cards {
		filled := int(c.Fill*float64(v.barWidth) + 0.5)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", v.barWidth-filled)
		fmt.Fprintf(v.w, "%s\n  %s  %s\n  %s %s %d 节\n  %s\n\n",
			c.Building, recommendedRoomText, c.Room, bar, freeRunText, c.MaxFree, c.TimeRange)
	}
}

// JSONView buffers the latest state and writes it as one JSON document.
type JSONView struct {
	w     io.Writer
	state viewState
}

type viewState struct {
	Week       int    `json:"week,omitempty"`
	Cards      []Card `json:"cards,omitempty"`
	Empty      bool   `json:"empty,omitempty"`
	Warning    string `json:"warning,omitempty"`
	Error      string `json:"error,omitempty"`
	Login      bool   `json:"login_required,omitempty"`
	LoginError string `json:"login_error,omitempty"`
}

func NewJSONView(w io.Writer) *JSONView {
	return &JSONView{w: w}
}

func (v *JSONView) SetBusy(bool) {}

func (v *JSONView) Clear() {
	v.state = viewState{Login: v.state.Login}
}

func (v *JSONView) ShowLogin() {
	v.state.Login = true
}

func (v *JSONView) HideLogin() {
	v.state.Login, v.state.LoginError = false, ""
}

func (v *JSONView) ShowLoginError(msg string) {
	v.state.LoginError = msg
}

func (v *JSONView) ShowError(msg string) {
	v.state.Error = msg
}

func (v *JSONView) ShowWarning(msg string) {
	v.state.Warning = msg
}

func (v *JSONView) ShowEmpty() {
	v.state.Empty = true
}

func (v *JSONView) ShowCards(week int, cards []Card) {
	v.state.Week, v.state.Cards = week, cards
}

func (v *JSONView) Flush() error {
	enc := json.NewEncoder(v.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v.state)
}

package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Item mirrors the metadata document served at /{n}/info.0.json.
type Item struct {
	Index      int    `json:"num"`
	Title      string `json:"title"`
	SafeTitle  string `json:"safe_title"`
	Img        string `json:"img"`
	Alt        string `json:"alt"`
	Transcript string `json:"transcript"`
	Link       string `json:"link"`
	News       string `json:"news"`
	Year       string `json:"year"`
	Month      string `json:"month"`
	Day        string `json:"day"`
}

// Published returns the publish date. ok is false when any part is missing
// or not a number.
func (it Item) Published() (t time.Time, ok bool) {
	year, err := strconv.Atoi(strings.TrimSpace(it.Year))
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(strings.TrimSpace(it.Month))
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(strings.TrimSpace(it.Day))
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// Date formats the publish date as YYYY-MM-DD, or "" when unknown. Parts
// that are not numbers are shown as served.
func (it Item) Date() string {
	if t, ok := it.Published(); ok {
		return t.Format(time.DateOnly)
	}
	if strings.TrimSpace(it.Year) == "" {
		return ""
	}
	return fmt.Sprintf("%s-%s-%s", strings.TrimSpace(it.Year), pad2(it.Month), pad2(it.Day))
}

// DisplayTitle prefers the title and falls back to safe_title.
func (it Item) DisplayTitle() string {
	if title := strings.TrimSpace(it.Title); title != "" {
		return title
	}
	return strings.TrimSpace(it.SafeTitle)
}

func pad2(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return strings.Repeat("0", 2-len(s)) + s
	}
	return s
}

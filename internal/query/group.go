package query

import (
	"strings"
	"time"

	"spendlens/internal/core"
)

// GroupKey selects how ordered records are partitioned.
type GroupKey string

const (
	GroupNone     GroupKey = "none"
	GroupDate     GroupKey = "date"
	GroupCategory GroupKey = "category"
)

const (
	AllLabel           = "All Transactions"
	TodayLabel         = "Today"
	YesterdayLabel     = "Yesterday"
	UncategorizedLabel = "Uncategorized"

	dayLabelLayout = "Monday, January 2, 2006"
)

type Bucket struct {
	Label   string             `json:"label"`
	Records []core.Transaction `json:"records"`
}

// ParseGroupKey normalizes a grouping selector. Empty selects date.
func ParseGroupKey(s string) (GroupKey, error) {
	switch k := GroupKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return GroupDate, nil
	case GroupNone, GroupDate, GroupCategory:
		return k, nil
	default:
		return "", core.NewConfigurationError("group key", s)
	}
}

// Group partitions ordered into labelled buckets. Buckets appear in the order
// of their first record and records keep their input order; nothing is
// re-sorted.
func Group(ordered []core.Transaction, key GroupKey, now time.Time) ([]Bucket, error) {
	key, err := ParseGroupKey(string(key))
	if err != nil {
		return nil, err
	}

	if key == GroupNone {
		return []Bucket{{Label: AllLabel, Records: append([]core.Transaction{}, ordered...)}}, nil
	}

	today := core.DateOf(now)
	label := func(t core.Transaction) string {
		if key == GroupCategory {
			if t.Category == "" {
				return UncategorizedLabel
			}
			return t.Category
		}
		return DayLabel(t.Date, today)
	}

	buckets := []Bucket{}
	index := make(map[string]int)
	for _, t := range ordered {
		l := label(t)
		i, ok := index[l]
		if !ok {
			i = len(buckets)
			index[l] = i
			buckets = append(buckets, Bucket{Label: l})
		}
		buckets[i].Records = append(buckets[i].Records, t)
	}
	return buckets, nil
}

// DayLabel names d relative to today: "Today", "Yesterday" or the full
// weekday and date, e.g. "Monday, January 13, 2025".
func DayLabel(d, today core.Date) string {
	switch {
	case d.Compare(today) == 0:
		return TodayLabel
	case d.Compare(today.AddDays(-1)) == 0:
		return YesterdayLabel
	default:
		return d.Format(dayLabelLayout)
	}
}

package database

import "time"

// LabelCount is one row of a GROUP BY count.
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// CityCount is one (country, city) bucket.
type CityCount struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Count   int64  `json:"count"`
}

// TimeBound is a lower time bound on created/viewed timestamps.
type TimeBound struct {
	From time.Time
}

// Page is a limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalized(def, max int) Page {
	if p.Limit <= 0 {
		p.Limit = def
	}
	if max > 0 && p.Limit > max {
		p.Limit = max
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

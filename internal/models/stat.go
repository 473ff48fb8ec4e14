package models

import (
	"bytes"

	"github.com/goccy/go-json"
)

// StatRecord is a single statistic as served by the upstream API. It is
// either Bare (a plain number) or Ranked (an object with leaderboard metadata).
type StatRecord interface {
	isStatRecord()
}

// Bare is a statistic delivered as a plain number.
type Bare struct {
	Value Number
}

// Ranked is a statistic delivered as an object. Position, Percentile and
// TotalPlayers are independently optional.
type Ranked struct {
	Value        Number
	Position     *int64
	Percentile   *float64
	TotalPlayers *int64
}

func (Bare) isStatRecord()   {}
func (Ranked) isStatRecord() {}

// StatValue extracts the value of a record. Missing records and objects
// without a value read as zero.
func StatValue(rec StatRecord) Number {
	switch r := rec.(type) {
	case Bare:
		return r.Value
	case Ranked:
		return r.Value
	default:
		return Number{}
	}
}

// StatPosition returns the 1-based leaderboard position, if the record carries one.
func StatPosition(rec StatRecord) (int64, bool) {
	r, ok := rec.(Ranked)
	if !ok || r.Position == nil || *r.Position <= 0 {
		return 0, false
	}
	return *r.Position, true
}

// StatPercentile returns the percentile, if the record carries one.
func StatPercentile(rec StatRecord) (float64, bool) {
	r, ok := rec.(Ranked)
	if !ok || r.Percentile == nil {
		return 0, false
	}
	return *r.Percentile, true
}

// StatTotalPlayers returns the ranked population size, if the record carries one.
func StatTotalPlayers(rec StatRecord) (int64, bool) {
	r, ok := rec.(Ranked)
	if !ok || r.TotalPlayers == nil {
		return 0, false
	}
	return *r.TotalPlayers, true
}

type rankedWire struct {
	Value        json.RawMessage `json:"value"`
	StatValue    json.RawMessage `json:"statValue"`
	Position     *Number         `json:"position"`
	Percentile   *Number         `json:"percentile"`
	TotalPlayers *Number         `json:"totalPlayers"`
}

// DecodeStatRecord decodes one statistic. Objects become Ranked, numbers
// become Bare. Anything else is reported as absent.
func DecodeStatRecord(raw []byte) (StatRecord, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}

	if raw[0] != '{' {
		n, ok := ParseNumber(raw)
		if !ok {
			return nil, false
		}
		return Bare{Value: n}, true
	}

	var w rankedWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, false
	}

	rec := Ranked{}
	if n, ok := ParseNumber(w.Value); ok {
		rec.Value = n
	} else if n, ok := ParseNumber(w.StatValue); ok {
		rec.Value = n
	}
	if w.Position != nil {
		p := w.Position.Int64()
		rec.Position = &p
	}
	if w.Percentile != nil {
		p := w.Percentile.Float64()
		rec.Percentile = &p
	}
	if w.TotalPlayers != nil {
		tp := w.TotalPlayers.Int64()
		rec.TotalPlayers = &tp
	}
	return rec, true
}

// Statistics maps statistic keys to records.
type Statistics map[string]StatRecord

// UnmarshalJSON decodes each entry with DecodeStatRecord, dropping entries
// that are neither numbers nor objects.
func (s *Statistics) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Statistics, len(raw))
	for key, value := range raw {
		if rec, ok := DecodeStatRecord(value); ok {
			out[key] = rec
		}
	}
	*s = out
	return nil
}

// Value returns the extracted value of key, zero when absent.
func (s Statistics) Value(key string) Number {
	return StatValue(s[key])
}

// Position returns the leaderboard position of key, if ranked.
func (s Statistics) Position(key string) (int64, bool) {
	return StatPosition(s[key])
}

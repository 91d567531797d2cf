package typicality

import (
	"fmt"
	"strconv"
	"strings"

	"liftcast/domain/core"
)

// Table is the immutable summary set produced by Aggregate. It is safe for
// concurrent readers; accessors hand out copies.
type Table struct {
	records      []SummaryRecord
	index        map[Key]int
	gaps         []Key
	observations int
	fingerprint  core.Hash
}

func newTable(records []SummaryRecord, gaps []Key, observations int) *Table {
	index := make(map[Key]int, len(records))
	for i, r := range records {
		index[r.Key()] = i
	}
	t := &Table{
		records:      records,
		index:        index,
		gaps:         gaps,
		observations: observations,
	}
	t.fingerprint = t.computeFingerprint()
	return t
}

// Predict answers "what is typical at hour:minute". The minute is bucketized
// first. A slot with no record, including any hour outside [0,23], yields an
// error matching core.ErrMissingKey.
func (t *Table) Predict(hour, minute int) (SummaryRecord, error) {
	key := Key{Hour: hour, Minute: Bucketize(minute)}
	rec, ok := t.Lookup(key)
	if !ok {
		return SummaryRecord{}, core.NewMissingKeyError(key.Hour, key.Minute)
	}
	return rec, nil
}

// Lookup returns the record for an exact slot.
func (t *Table) Lookup(key Key) (SummaryRecord, bool) {
	if t == nil {
		return SummaryRecord{}, false
	}
	i, ok := t.index[key]
	if !ok {
		return SummaryRecord{}, false
	}
	return cloneRecord(t.records[i]), true
}

// Records returns all records ordered by (hour, minute).
func (t *Table) Records() []SummaryRecord {
	if t == nil {
		return nil
	}
	out := make([]SummaryRecord, len(t.records))
	for i, r := range t.records {
		out[i] = cloneRecord(r)
	}
	return out
}

// Gaps returns the slots that had no observations, in (hour, minute) order.
func (t *Table) Gaps() []Key {
	if t == nil {
		return nil
	}
	return append([]Key(nil), t.gaps...)
}

// Len is the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Observations is the number of raw observations the table was built from.
func (t *Table) Observations() int {
	if t == nil {
		return 0
	}
	return t.observations
}

// Fingerprint is a sha256 over the exact bits of every record and gap.
func (t *Table) Fingerprint() core.Hash {
	if t == nil {
		return ""
	}
	return t.fingerprint
}

func (t *Table) computeFingerprint() core.Hash {
	var b strings.Builder
	for _, r := range t.records {
		fmt.Fprintf(&b, "%d:%d=%d|%s|%s|%d;",
			r.Hour, r.Minute, r.TypicalFloor,
			strconv.FormatFloat(r.Confidence, 'x', -1, 64),
			strconv.FormatFloat(r.Entropy, 'x', -1, 64),
			r.Samples)
		for _, s := range r.Distribution {
			fmt.Fprintf(&b, "%d*%d,", s.Floor, s.Count)
		}
		b.WriteByte('\n')
	}
	for _, g := range t.gaps {
		fmt.Fprintf(&b, "gap %d:%d\n", g.Hour, g.Minute)
	}
	return core.NewHash([]byte(b.String()))
}

func cloneRecord(r SummaryRecord) SummaryRecord {
	r.Distribution = append([]FloorShare(nil), r.Distribution...)
	return r
}

// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/labelmap/core"
)

// recordVersion prefixes every encoded record.
const recordVersion byte = 1

// fieldWriter receives record fields in order. The sizer and encoder
// share one field layout per record type through it.
type fieldWriter interface {
	str(s string)
	i64(v int64)
	u64(v uint64)
	f64(v float64)
	flag(v bool)
}

type sizer struct{ n int }

func (s *sizer) str(v string)  { s.n += ord.String.Size(v) }
func (s *sizer) i64(v int64)   { s.n += varint.Int64.Size(v) }
func (s *sizer) u64(v uint64)  { s.n += varint.Uint64.Size(v) }
func (s *sizer) f64(v float64) { s.n += raw.Float64.Size(v) }
func (s *sizer) flag(v bool)   { s.n += ord.Bool.Size(v) }

type encoder struct {
	buf []byte
	n   int
}

func (e *encoder) str(v string)  { e.n += ord.String.Marshal(v, e.buf[e.n:]) }
func (e *encoder) i64(v int64)   { e.n += varint.Int64.Marshal(v, e.buf[e.n:]) }
func (e *encoder) u64(v uint64)  { e.n += varint.Uint64.Marshal(v, e.buf[e.n:]) }
func (e *encoder) f64(v float64) { e.n += raw.Float64.Marshal(v, e.buf[e.n:]) }
func (e *encoder) flag(v bool)   { e.n += ord.Bool.Marshal(v, e.buf[e.n:]) }

// marshal runs fields twice: once to size the buffer, once to fill it.
func marshal(fields func(w fieldWriter)) []byte {
	s := &sizer{n: 1}
	fields(s)
	e := &encoder{buf: make([]byte, s.n)}
	e.buf[0] = recordVersion
	e.n = 1
	fields(e)
	return e.buf[:e.n]
}

// decoder reads fields in order and keeps the first error.
type decoder struct {
	buf []byte
	n   int
	err error
}

func newDecoder(data []byte) *decoder {
	d := &decoder{buf: data}
	if len(data) == 0 {
		d.err = ErrTruncatedData
		return d
	}
	if data[0] != recordVersion {
		d.err = fmt.Errorf("%w: unknown record version %d", ErrSerializationFailed, data[0])
		return d
	}
	d.n = 1
	return d
}

func (d *decoder) str() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.buf[d.n:])
	d.advance(n, err)
	return v
}

func (d *decoder) i64() int64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(d.buf[d.n:])
	d.advance(n, err)
	return v
}

func (d *decoder) u64() uint64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(d.buf[d.n:])
	d.advance(n, err)
	return v
}

func (d *decoder) f64() float64 {
	if d.err != nil {
		return 0
	}
	v, n, err := raw.Float64.Unmarshal(d.buf[d.n:])
	d.advance(n, err)
	return v
}

func (d *decoder) flag() bool {
	if d.err != nil {
		return false
	}
	v, n, err := ord.Bool.Unmarshal(d.buf[d.n:])
	d.advance(n, err)
	return v
}

// count reads a slice length, rejecting lengths the remaining bytes
// cannot hold.
func (d *decoder) count() int {
	c := d.u64()
	if d.err == nil && c > uint64(len(d.buf)-d.n) {
		d.err = ErrTruncatedData
		return 0
	}
	return int(c)
}

func (d *decoder) advance(n int, err error) {
	if err != nil {
		d.err = fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		return
	}
	d.n += n
}

func (d *decoder) finish() error {
	if d.err == nil && d.n != len(d.buf) {
		d.err = fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(d.buf)-d.n)
	}
	return d.err
}

func writeTime(w fieldWriter, t time.Time) {
	if t.IsZero() {
		w.i64(0)
		return
	}
	w.i64(t.UnixMicro())
}

func (d *decoder) time() time.Time {
	v := d.i64()
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}

// MarshalCatalogEntry serializes a CatalogEntry to bytes.
func MarshalCatalogEntry(entry *core.CatalogEntry) []byte {
	return marshal(func(w fieldWriter) {
		w.str(entry.Code)
		w.str(entry.Description)
		w.str(entry.Category)
	})
}

// UnmarshalCatalogEntry deserializes a CatalogEntry from bytes.
func UnmarshalCatalogEntry(data []byte) (*core.CatalogEntry, error) {
	d := newDecoder(data)
	entry := &core.CatalogEntry{
		Code:        d.str(),
		Description: d.str(),
		Category:    d.str(),
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return entry, nil
}

// MarshalLabelMapping serializes a LabelMapping to bytes.
func MarshalLabelMapping(label *core.LabelMapping) []byte {
	return marshal(func(w fieldWriter) {
		w.u64(uint64(label.Id))
		w.str(label.Drug)
		w.str(label.SetID)
		w.str(label.Title)
		w.u64(uint64(len(label.Indications)))
		for _, s := range label.Indications {
			w.str(s)
		}
		w.str(label.Directions)
		w.flag(label.Mapping != nil)
		if label.Mapping != nil {
			w.str(label.Mapping.OriginalText)
			w.u64(uint64(len(label.Mapping.Matches)))
			for _, m := range label.Mapping.Matches {
				w.str(m.Code)
				w.str(m.Description)
				w.str(m.Category)
				w.f64(m.Score)
			}
		}
		writeTime(w, label.CreatedAt)
		writeTime(w, label.UpdatedAt)
	})
}

// UnmarshalLabelMapping deserializes a LabelMapping from bytes.
func UnmarshalLabelMapping(data []byte) (*core.LabelMapping, error) {
	d := newDecoder(data)
	label := &core.LabelMapping{
		Id:    core.ID(d.u64()),
		Drug:  d.str(),
		SetID: d.str(),
		Title: d.str(),
	}
	if n := d.count(); n > 0 {
		label.Indications = make(core.ExtractedText, n)
		for i := range label.Indications {
			label.Indications[i] = d.str()
		}
	}
	label.Directions = d.str()
	if d.flag() {
		mapping := &core.IndicationMapping{OriginalText: d.str()}
		if n := d.count(); n > 0 {
			mapping.Matches = make([]core.MatchResult, n)
			for i := range mapping.Matches {
				mapping.Matches[i] = core.MatchResult{
					Code:        d.str(),
					Description: d.str(),
					Category:    d.str(),
					Score:       d.f64(),
				}
			}
		}
		label.Mapping = mapping
	}
	label.CreatedAt = d.time()
	label.UpdatedAt = d.time()

	if err := d.finish(); err != nil {
		return nil, err
	}
	return label, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	return marshal(func(w fieldWriter) {
		w.str(checkpoint.Name)
		w.str(checkpoint.Source)
		w.i64(int64(checkpoint.Count))
		writeTime(w, checkpoint.UpdatedAt)
	})
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	d := newDecoder(data)
	checkpoint := &core.Checkpoint{
		Name:   d.str(),
		Source: d.str(),
		Count:  int(d.i64()),
	}
	checkpoint.UpdatedAt = d.time()
	if err := d.finish(); err != nil {
		return nil, err
	}
	return checkpoint, nil
}

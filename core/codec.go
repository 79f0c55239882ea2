package core

import (
	"maps"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Serializers for the collection and time fields of stored records.
// Lengths are varint prefixes; map entries are written in key order so equal
// records encode to equal bytes.

// StringsMUS serializes a string list. An empty list decodes as nil.
var StringsMUS = stringsMUS{}

type stringsMUS struct{}

func (stringsMUS) Marshal(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return
}

func (stringsMUS) Unmarshal(bs []byte) (v []string, n int, err error) {
	length, n, err := unmarshalLength(bs)
	if err != nil || length == 0 {
		return
	}
	v = make([]string, 0, length)
	for range length {
		var (
			s  string
			n1 int
		)
		s, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		v = append(v, s)
	}
	return
}

func (stringsMUS) Size(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return
}

func (s stringsMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// MetadataMUS serializes string maps.
var MetadataMUS = metadataMUS{}

type metadataMUS struct{}

func (metadataMUS) Marshal(v map[string]string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, k := range slices.Sorted(maps.Keys(v)) {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(v[k], bs[n:])
	}
	return
}

func (metadataMUS) Unmarshal(bs []byte) (v map[string]string, n int, err error) {
	length, n, err := unmarshalLength(bs)
	if err != nil || length == 0 {
		return
	}
	v = make(map[string]string, length)
	for range length {
		var (
			k, val string
			n1     int
		)
		k, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		val, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		v[k] = val
	}
	return
}

func (metadataMUS) Size(v map[string]string) (size int) {
	size = varint.Int.Size(len(v))
	for k, val := range v {
		size += ord.String.Size(k) + ord.String.Size(val)
	}
	return
}

func (s metadataMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// fieldValuesMUS serializes the per-field value lists of Selections.
var fieldValuesMUS = fieldValuesSer{}

type fieldValuesSer struct{}

func (fieldValuesSer) Marshal(v map[Field][]string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range slices.Sorted(maps.Keys(v)) {
		n += FieldMUS.Marshal(f, bs[n:])
		n += StringsMUS.Marshal(v[f], bs[n:])
	}
	return
}

func (fieldValuesSer) Unmarshal(bs []byte) (v map[Field][]string, n int, err error) {
	length, n, err := unmarshalLength(bs)
	if err != nil {
		return
	}
	v = make(map[Field][]string, length)
	for range length {
		var (
			f      Field
			values []string
			n1     int
		)
		f, n1, err = FieldMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		values, n1, err = StringsMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		v[f] = values
	}
	return
}

func (fieldValuesSer) Size(v map[Field][]string) (size int) {
	size = varint.Int.Size(len(v))
	for f, values := range v {
		size += FieldMUS.Size(f) + StringsMUS.Size(values)
	}
	return
}

// unixMicroMUS stores times as UTC microseconds since the epoch.
var unixMicroMUS = unixMicroSer{}

type unixMicroSer struct{}

func (unixMicroSer) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (unixMicroSer) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	var micros int64
	micros, n, err = varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func (unixMicroSer) Size(v time.Time) int {
	return varint.Int64.Size(v.UnixMicro())
}

// unmarshalLength reads a collection length. Every element takes at least one
// byte, so a length beyond the remaining input means the record is corrupt.
func unmarshalLength(bs []byte) (length, n int, err error) {
	length, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 || length > len(bs)-n {
		return 0, n, ErrCorruptRecord
	}
	return
}

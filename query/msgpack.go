package query

import (
	"maps"
	"slices"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	_ msgpack.CustomEncoder = Filter[any]{}
	_ msgpack.CustomEncoder = Comparison(nil)
)

// EncodeMsgpack writes f with its fields in sorted order, so equal filters
// always encode to the same bytes.
func (f Filter[T]) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(3); err != nil {
		return err
	}
	if f.Fields == nil {
		if err := enc.EncodeNil(); err != nil {
			return err
		}
	} else {
		if err := enc.EncodeMapLen(len(f.Fields)); err != nil {
			return err
		}
		for _, field := range slices.Sorted(maps.Keys(f.Fields)) {
			if err := enc.EncodeString(field); err != nil {
				return err
			}
			if err := f.Fields[field].EncodeMsgpack(enc); err != nil {
				return err
			}
		}
	}
	if err := encodeGroup(enc, f.And); err != nil {
		return err
	}
	return encodeGroup(enc, f.Or)
}

func encodeGroup[T any](enc *msgpack.Encoder, group []Filter[T]) error {
	if group == nil {
		return enc.EncodeNil()
	}
	if err := enc.EncodeArrayLen(len(group)); err != nil {
		return err
	}
	for _, f := range group {
		if err := f.EncodeMsgpack(enc); err != nil {
			return err
		}
	}
	return nil
}

// EncodeMsgpack writes c with its operators in sorted order.
func (c Comparison) EncodeMsgpack(enc *msgpack.Encoder) error {
	if c == nil {
		return enc.EncodeNil()
	}
	if err := enc.EncodeMapLen(len(c)); err != nil {
		return err
	}
	for _, op := range slices.Sorted(maps.Keys(c)) {
		if err := enc.EncodeString(string(op)); err != nil {
			return err
		}
		if err := enc.Encode(c[op]); err != nil {
			return err
		}
	}
	return nil
}

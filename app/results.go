package app

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

// ResultSet holds zero or more query results. It is the encoding of both the
// key and the value of every ABCI query response.
//
// Wire format: repeated bytes results = 1.
type ResultSet struct {
	Results [][]byte
}

var _ tokenvm.Persistent = (*ResultSet)(nil)

const resultsTag = 1<<3 | 2

// Marshal encodes the set in protobuf wire format.
func (r *ResultSet) Marshal() ([]byte, error) {
	var out []byte
	for _, res := range r.Results {
		out = append(out, proto.EncodeVarint(resultsTag)...)
		out = append(out, proto.EncodeVarint(uint64(len(res)))...)
		out = append(out, res...)
	}
	return out, nil
}

// Unmarshal decodes what Marshal produced.
func (r *ResultSet) Unmarshal(raw []byte) error {
	r.Results = nil
	for len(raw) > 0 {
		tag, n := proto.DecodeVarint(raw)
		if n == 0 {
			return errors.Wrap(errors.ErrInput, "malformed field tag")
		}
		if tag != resultsTag {
			return errors.Wrapf(errors.ErrInput, "unexpected field tag %d", tag)
		}
		raw = raw[n:]
		size, n := proto.DecodeVarint(raw)
		if n == 0 || size > uint64(len(raw)-n) {
			return errors.Wrap(errors.ErrInput, "malformed result length")
		}
		raw = raw[n:]
		res := make([]byte, size)
		copy(res, raw[:size])
		r.Results = append(r.Results, res)
		raw = raw[size:]
	}
	return nil
}

// ResultsFromKeys returns a ResultSet of all keys
// given a set of models
func ResultsFromKeys(models []tokenvm.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values
// given a set of models
func ResultsFromValues(models []tokenvm.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues
// and makes then a consistent whole again
func JoinResults(keys, values *ResultSet) ([]tokenvm.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrapf(errors.ErrInput, "mismatched result set size: %d keys, %d values", len(kref), len(vref))
	}
	mods := make([]tokenvm.Model, len(kref))
	for i := range mods {
		mods[i] = tokenvm.Model{
			Key:   kref[i],
			Value: vref[i],
		}
	}
	return mods, nil
}

// UnmarshalOneResult will parse a resultset, and
// it if is not empty, unmarshal the first result into o
func UnmarshalOneResult(bz []byte, o tokenvm.Persistent) error {
	var res ResultSet
	if err := res.Unmarshal(bz); err != nil {
		return err
	}
	if len(res.Results) == 0 {
		return nil
	}
	return o.Unmarshal(res.Results[0])
}

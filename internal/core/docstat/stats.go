package docstat

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Stats is a per-entity bundle of named observations: {"<name>": Stat, ...,
// "type": "stats"}. Variable names are caller-defined; the document itself
// is the output of the stats-from-pairs surface (spec §5.1).
type Stats map[string]Stat

const statsDiscriminator = "stats"

// MarshalJSON emits the bundle with its variable names sorted
// lexicographically alongside the "type" discriminator, which sorts into
// place like any other key.
func (s Stats) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(s))
	for k := range s {
		if k == "type" {
			return nil, newMalformed(`stats: %q is a reserved variable name`, k)
		}
		keys = append(keys, k)
	}
	keys = append(keys, "type")
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		if k == "type" {
			buf.WriteString(`"` + statsDiscriminator + `"`)
			continue
		}
		valueJSON, err := json.Marshal(s[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a stats bundle without materializing the whole
// document into a generic map[string]interface{} first — each field is
// decoded straight from its json.RawMessage into a Stat, and the "type"
// discriminator is checked in place rather than round-tripped through an
// intermediate representation.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return newMalformed("stats: %v", err)
	}
	typeRaw, ok := fields["type"]
	if !ok {
		return newMalformed(`stats: missing "type" field`)
	}
	var discriminator string
	if err := json.Unmarshal(typeRaw, &discriminator); err != nil || discriminator != statsDiscriminator {
		return newMalformed(`stats: "type" field must be %q`, statsDiscriminator)
	}
	delete(fields, "type")

	out := make(Stats, len(fields))
	for name, raw := range fields {
		var stat Stat
		if err := json.Unmarshal(raw, &stat); err != nil {
			return err
		}
		out[name] = stat
	}
	*s = out
	return nil
}

// StatsAgg is a per-entity bundle of named aggregate summaries:
// {"<name>": AggEntry, ..., "type": "stats_agg"}. It is both the output of
// agg-from-stats (spec §5.2) and the input/output of merge-of-aggs
// (spec §5.3).
type StatsAgg map[string]AggEntry

const statsAggDiscriminator = "stats_agg"

// MarshalJSON emits the bundle with its variable names sorted
// lexicographically alongside the "type" discriminator.
func (s StatsAgg) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(s))
	for k := range s {
		if k == "type" {
			return nil, newMalformed(`stats_agg: %q is a reserved variable name`, k)
		}
		keys = append(keys, k)
	}
	keys = append(keys, "type")
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		if k == "type" {
			buf.WriteString(`"` + statsAggDiscriminator + `"`)
			continue
		}
		valueJSON, err := json.Marshal(s[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a stats_agg bundle field by field, dispatching each
// value straight from its json.RawMessage to DecodeAggEntry.
func (s *StatsAgg) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return newMalformed("stats_agg: %v", err)
	}
	typeRaw, ok := fields["type"]
	if !ok {
		return newMalformed(`stats_agg: missing "type" field`)
	}
	var discriminator string
	if err := json.Unmarshal(typeRaw, &discriminator); err != nil || discriminator != statsAggDiscriminator {
		return newMalformed(`stats_agg: "type" field must be %q`, statsAggDiscriminator)
	}
	delete(fields, "type")

	out := make(StatsAgg, len(fields))
	for name, raw := range fields {
		entry, err := DecodeAggEntry(raw)
		if err != nil {
			return err
		}
		out[name] = entry
	}
	*s = out
	return nil
}

package models

import "encoding/json"

// DebateRecord is a recent debate projected from the debate service.
type DebateRecord struct {
	Headline  string   `json:"headline"`
	Source    string   `json:"source"`
	Consensus float64  `json:"consensus"`
	Agents    []string `json:"agents"`
}

// MarshalJSON encodes a nil agent list as [] so consumers never see null.
func (d DebateRecord) MarshalJSON() ([]byte, error) {
	type alias DebateRecord
	out := alias(d)
	if out.Agents == nil {
		out.Agents = []string{}
	}
	return json.Marshal(out)
}

// Clone returns a copy that shares no slices with d.
func (d DebateRecord) Clone() DebateRecord {
	out := d
	if d.Agents != nil {
		out.Agents = append([]string(nil), d.Agents...)
	}
	return out
}

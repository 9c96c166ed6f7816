package model

import (
	"fmt"
	"time"
)

// Sentinel marks an identifier that carries no server value.
type Sentinel int

const (
	Present Sentinel = iota
	NotLoaded
	FetchFailed
	NotConfigured
)

func (s Sentinel) String() string {
	switch s {
	case Present:
		return "present"
	case NotLoaded:
		return "not loaded"
	case FetchFailed:
		return "fetch failed"
	case NotConfigured:
		return "not configured"
	default:
		return "unknown"
	}
}

// Identifier is the server-reported descriptor of the active file, or a sentinel.
type Identifier struct {
	Sentinel Sentinel
	Filename string
	Modified string
}

func IdentifierOf(filename string) Identifier {
	return Identifier{Sentinel: Present, Filename: filename}
}

func SentinelIdentifier(s Sentinel) Identifier {
	return Identifier{Sentinel: s}
}

func (i Identifier) String() string {
	if i.Sentinel != Present {
		return "(" + i.Sentinel.String() + ")"
	}
	if i.Modified != "" {
		return fmt.Sprintf("%s (%s)", i.Filename, i.Modified)
	}
	return i.Filename
}

type ResourceMetadata struct {
	Label      string
	Identifier Identifier
}

// Snapshot is the displayed state of one metadata group. Always replaced as a whole.
type Snapshot struct {
	Group     Group
	Entries   map[Kind]ResourceMetadata
	FetchedAt time.Time
	// Stale is set when the last refresh failed; Entries then hold the last known good values.
	Stale bool
	Err   string
	// Seq is the fetch sequence that produced this snapshot. Results of older fetches are dropped.
	Seq uint64
}

// NewSnapshot returns a snapshot with every kind of group set to NotLoaded.
func NewSnapshot(group Group) *Snapshot {
	s := &Snapshot{Group: group, Entries: make(map[Kind]ResourceMetadata)}
	for _, k := range KindsInGroup(group) {
		spec, _ := GetKind(k)
		s.Entries[k] = ResourceMetadata{Label: spec.Label, Identifier: SentinelIdentifier(NotLoaded)}
	}
	return s
}

func (s *Snapshot) Clone() *Snapshot {
	out := *s
	out.Entries = make(map[Kind]ResourceMetadata, len(s.Entries))
	for k, v := range s.Entries {
		out.Entries[k] = v
	}
	return &out
}

// MasterInfo is the body of GET /api/masters/info.
type MasterInfo struct {
	Product  string `json:"product"`
	Customer string `json:"customer"`
}

// TemplateDescriptor is one entry of GET /api/templates/info.
type TemplateDescriptor struct {
	Filename string `json:"filename"`
	Label    string `json:"label"`
	Exists   bool   `json:"exists"`
	Modified string `json:"modified"`
}

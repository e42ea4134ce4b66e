package model

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
)

// Stamp is an ordered synchronization token attached to each datum.
// Stamps derived from the same NewStamp call share a lineage.
type Stamp struct {
	lineage uuid.UUID
	step    uint64
}

// NewStamp starts a new lineage.
func NewStamp() Stamp {
	return Stamp{lineage: uuid.New()}
}

// Next returns the successor of s within its lineage.
func (s Stamp) Next() Stamp {
	return Stamp{lineage: s.lineage, step: s.step + 1}
}

func (s Stamp) Step() uint64 {
	return s.step
}

// SameLineage reports whether s and o come from the same NewStamp call.
func (s Stamp) SameLineage(o Stamp) bool {
	return s.lineage == o.lineage
}

func (s Stamp) Equal(o Stamp) bool {
	return s.lineage == o.lineage && s.step == o.step
}

// Compare orders stamps by step, then by lineage so that the order is total.
func (s Stamp) Compare(o Stamp) int {
	switch {
	case s.step < o.step:
		return -1
	case s.step > o.step:
		return 1
	}

	return bytes.Compare(s.lineage[:], o.lineage[:])
}

func (s Stamp) Less(o Stamp) bool {
	return s.Compare(o) < 0
}

func (s Stamp) String() string {
	return fmt.Sprintf("%s#%d", s.lineage, s.step)
}

// StampsInSync reports whether all stamps are equal. A process reading several edges
// uses it to detect that its inputs have drifted apart.
func StampsInSync(stamps ...Stamp) bool {
	for i := 1; i < len(stamps); i++ {
		if !stamps[i].Equal(stamps[0]) {
			return false
		}
	}

	return true
}

// EdgeDatum is the atomic unit transported by an edge.
type EdgeDatum struct {
	Datum *Datum
	Stamp Stamp
}

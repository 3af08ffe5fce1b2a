package state

import (
	"net"
	"slices"

	"github.com/newtron-network/swreconcile/pkg/config"
)

// Subport is one member of an aggregate port.
type Subport struct {
	PortID   PortID
	Priority int
	Rate     config.LacpPortRate
	Activity config.LacpPortActivity
}

// AggregatePortFields is the state of one LAG. Subports are sorted by
// port id, then priority.
type AggregatePortFields struct {
	ID               AggregatePortID
	Name             string
	Description      string
	SystemPriority   int
	SystemID         net.HardwareAddr
	MinimumLinkCount int
	Subports         []Subport
}

func (f AggregatePortFields) Key() AggregatePortID { return f.ID }

func (f AggregatePortFields) Clone() AggregatePortFields {
	f.SystemID = append(net.HardwareAddr(nil), f.SystemID...)
	f.Subports = slices.Clone(f.Subports)
	return f
}

// HasMember reports whether p is a subport.
func (f AggregatePortFields) HasMember(p PortID) bool {
	return slices.ContainsFunc(f.Subports, func(s Subport) bool { return s.PortID == p })
}

type (
	AggregatePort    = Node[AggregatePortID, AggregatePortFields]
	AggregatePortMap = Map[AggregatePortID, AggregatePortFields]
)

// NewAggregatePortMap returns an empty LAG collection.
func NewAggregatePortMap() *AggregatePortMap {
	return NewOrderedMap[AggregatePortID, AggregatePortFields]()
}

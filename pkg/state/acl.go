package state

import (
	"slices"

	"github.com/newtron-network/swreconcile/pkg/config"
)

// QueueAction sends matched packets to a queue. SendToCPU marks queues of
// the CPU port.
type QueueAction struct {
	QueueID   int
	SendToCPU bool
}

// MatchAction is the compiled action of an ACL entry.
type MatchAction struct {
	SendToQueue    *QueueAction
	TrafficCounter *config.TrafficCounter
	SetDscp        *int
	IngressMirror  string
	EgressMirror   string
}

// Mirrors returns the mirror names the action refers to.
func (a *MatchAction) Mirrors() []string {
	if a == nil {
		return nil
	}
	var out []string
	if a.IngressMirror != "" {
		out = append(out, a.IngressMirror)
	}
	if a.EgressMirror != "" {
		out = append(out, a.EgressMirror)
	}
	return out
}

// AclEntryFields is one compiled ACL. Lower priority numbers win.
type AclEntryFields struct {
	Name     string
	Priority int
	Action   config.AclActionType
	Match    config.AclEntry
	Actions  *MatchAction
}

func (f AclEntryFields) Key() string { return f.Name }

func (f AclEntryFields) Clone() AclEntryFields {
	if f.Actions != nil {
		a := *f.Actions
		f.Actions = &a
	}
	return f
}

type (
	AclEntry = Node[string, AclEntryFields]
	AclMap   = Map[string, AclEntryFields]
)

// NewAclMap returns an empty ACL collection.
func NewAclMap() *AclMap { return NewOrderedMap[string, AclEntryFields]() }

// SortedByPriority returns the entries in evaluation order.
func SortedByPriority(m *AclMap) []*AclEntry {
	nodes := m.Nodes()
	slices.SortFunc(nodes, func(a, b *AclEntry) int {
		return a.Fields().Priority - b.Fields().Priority
	})
	return nodes
}

// QosRule maps DSCP values to a queue.
type QosRule struct {
	QueueID int
	Dscp    []int
}

// QosPolicyFields is one named QoS policy. Exactly one of Rules and QosMap
// is populated.
type QosPolicyFields struct {
	Name   string
	Rules  []QosRule
	QosMap *config.QosMap
}

func (f QosPolicyFields) Key() string { return f.Name }

func (f QosPolicyFields) Clone() QosPolicyFields {
	f.Rules = slices.Clone(f.Rules)
	return f
}

// TrafficClassOf returns the traffic class mapped onto queue, if any.
func (f QosPolicyFields) TrafficClassOf(queue int) (int, bool) {
	if f.QosMap == nil {
		return 0, false
	}
	found, tc := false, 0
	for class, q := range f.QosMap.TrafficClassToQueueID {
		if q == queue && (!found || class < tc) {
			found, tc = true, class
		}
	}
	return tc, found
}

type (
	QosPolicy    = Node[string, QosPolicyFields]
	QosPolicyMap = Map[string, QosPolicyFields]
)

// NewQosPolicyMap returns an empty QoS policy collection.
func NewQosPolicyMap() *QosPolicyMap { return NewOrderedMap[string, QosPolicyFields]() }

package model

import (
	"fmt"
	"strings"
)

const (
	// PortTypeAny connects to any other port type.
	PortTypeAny = "_any"
	// PortTypeFlowDependent takes the type of whatever it is connected to, resolved at setup.
	// All untagged flow dependent ports of a process share one type. A port typed
	// "_flow_dependent/<tag>" shares its type with the ports of the process carrying the same tag.
	PortTypeFlowDependent = "_flow_dependent"
	// FlowTagSep separates PortTypeFlowDependent from a tag.
	FlowTagSep = "/"
)

// IsFlowDependent reports whether typ is PortTypeFlowDependent, tagged or not.
func IsFlowDependent(typ string) bool {
	return typ == PortTypeFlowDependent || strings.HasPrefix(typ, PortTypeFlowDependent+FlowTagSep)
}

// FlowTag returns the tag of a flow dependent type, "" when untagged.
func FlowTag(typ string) string {
	tag, _ := strings.CutPrefix(typ, PortTypeFlowDependent+FlowTagSep)
	if tag == typ {
		return ""
	}

	return tag
}

// IsConcreteType reports whether typ names an actual data type rather than a wildcard.
func IsConcreteType(typ string) bool {
	return typ != PortTypeAny && !IsFlowDependent(typ)
}

// PortFlag qualifies a port.
type PortFlag string

const (
	// PortFlagRequired means the port must be connected before the pipeline can be set up.
	PortFlagRequired PortFlag = "_required"
	// PortFlagConst means the process does not modify data received on the port.
	PortFlagConst PortFlag = "_const"
)

// PortInfo describes the type of a port.
type PortInfo struct {
	Type        string
	Description string
	Flags       []PortFlag
}

func (pi PortInfo) HasFlag(flag PortFlag) bool {
	for _, f := range pi.Flags {
		if f == flag {
			return true
		}
	}

	return false
}

func (pi PortInfo) Required() bool {
	return pi.HasFlag(PortFlagRequired)
}

// Port is a named port declaration.
type Port struct {
	Name string
	Info PortInfo
}

// PortAddr identifies one endpoint of a connection.
type PortAddr struct {
	Process string
	Port    string
}

func (pa PortAddr) String() string {
	return fmt.Sprintf("%s.%s", pa.Process, pa.Port)
}

// PortTypesCompatible reports whether an output of type upType may feed an input of type downType.
// Flow dependent types are accepted here and resolved later.
func PortTypesCompatible(upType, downType string) bool {
	switch {
	case upType == downType:
		return true
	case upType == PortTypeAny, downType == PortTypeAny:
		return true
	case IsFlowDependent(upType), IsFlowDependent(downType):
		return true
	}

	return false
}

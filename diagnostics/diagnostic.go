package diagnostics

import (
	"fmt"
	"strings"

	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/traversal"
)

// DiagnosticReason is the serialisable form of a ServiceReason.
type DiagnosticReason struct {
	Code      traversal.ReasonCode `json:"code"`
	Text      string               `json:"text"`
	IsValid   bool                 `json:"isValid"`
	StateType traversal.StateType  `json:"stateType"`
	Node      graph.NodeID         `json:"node"`
	Path      []graph.NodeID       `json:"path,omitempty"`
}

// Describe renders a ServiceReason. The text depends only on the code, the
// state type and the chain.
func Describe(r ServiceReason) DiagnosticReason {
	var path []graph.NodeID
	for _, s := range r.Path.Steps() {
		path = append(path, s.Node)
	}
	return DiagnosticReason{
		Code:      r.Code,
		Text:      reasonText(r.Code, r.StateType, path),
		IsValid:   r.Code.IsValid(),
		StateType: r.StateType,
		Node:      r.Node,
		Path:      path,
	}
}

func reasonText(code traversal.ReasonCode, st traversal.StateType, path []graph.NodeID) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s in %s", code, st)
	if len(path) > 0 {
		parts := make([]string, len(path))
		for i, n := range path {
			parts[i] = fmt.Sprint(int64(n))
		}
		fmt.Fprintf(&b, " via %s", strings.Join(parts, ">"))
	}
	return b.String()
}

package models

// BuilderNodeType is the kind of a visual builder node.
type BuilderNodeType string

const (
	BuilderNodeTrigger   BuilderNodeType = "trigger"
	BuilderNodeCondition BuilderNodeType = "condition"
	BuilderNodeAction    BuilderNodeType = "action"
)

// BuilderPosition is the canvas position of a node. The engine ignores it.
type BuilderPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BuilderNode is a node of the visual rule builder. Data holds
// {"trigger"} for trigger nodes, {"field","operator","value"} for condition
// nodes and {"type","config","stopOnFailure"} for action nodes.
type BuilderNode struct {
	ID       string           `json:"id"                 validate:"required"`
	Type     BuilderNodeType  `json:"type"               validate:"oneof=trigger condition action"`
	Data     map[string]any   `json:"data"`
	Position *BuilderPosition `json:"position,omitempty"`
}

// BuilderEdge connects two builder nodes. Edges are kept for the editor only;
// action order comes from node order.
type BuilderEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// BuilderGraph is the visual builder document.
type BuilderGraph struct {
	Nodes []BuilderNode `json:"nodes" validate:"required,min=1,dive"`
	Edges []BuilderEdge `json:"edges"`
}

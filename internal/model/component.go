package model

// ComponentVariableType is the slot category a component variable accepts.
type ComponentVariableType string

const (
	ComponentVarText  ComponentVariableType = "text"
	ComponentVarImage ComponentVariableType = "image"
	ComponentVarLink  ComponentVariableType = "link"
	ComponentVarAudio ComponentVariableType = "audio"
	ComponentVarVideo ComponentVariableType = "video"
	ComponentVarIcon  ComponentVariableType = "icon"
)

// ComponentVariable declares an overridable slot on a component. Instances
// supply values keyed by the variable id; descendant layer slots link to it
// via Variable.ComponentVariableID.
type ComponentVariable struct {
	ID      string                `json:"id"`
	Name    string                `json:"name"`
	Type    ComponentVariableType `json:"type"`
	Default *Variable             `json:"default,omitempty"`
}

// Component is a named, standalone layer tree instanced by reference. Root is
// the content node whose children become the instance's children on
// expansion.
type Component struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Root      *Layer              `json:"root"`
	Variables []ComponentVariable `json:"variables,omitempty"`
}

// Variable returns the slot definition with the given id, or nil.
func (c *Component) Variable(id string) *ComponentVariable {
	for i := range c.Variables {
		if c.Variables[i].ID == id {
			return &c.Variables[i]
		}
	}
	return nil
}

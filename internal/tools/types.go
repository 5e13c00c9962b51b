package tools

// Status captures the resolved state for a required tool.
type Status struct {
	Tool      string   `json:"tool"`
	Version   string   `json:"version,omitempty"`
	Minimum   string   `json:"minimum,omitempty"`
	Path      string   `json:"path,omitempty"`
	Satisfied bool     `json:"satisfied"`
	Error     string   `json:"error,omitempty"`
	Notes     []string `json:"notes,omitempty"`
}

// BinarySpec describes the executable for a tool.
type BinarySpec struct {
	Executable    string
	VersionSwitch string
}

// ToolDefinition contains metadata required to locate and check a tool.
type ToolDefinition struct {
	Name           string
	MinimumVersion string
	EnvOverride    string
	Binary         BinarySpec
}

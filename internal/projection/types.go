package projection

// Rule maps one spec document type to its workspace paths
type Rule struct {
	FileType string   `yaml:"file_type"`
	Paths    []string `yaml:"paths"`
}

// tableFile is the YAML document shape
type tableFile struct {
	Projections []Rule `yaml:"projections"`
}

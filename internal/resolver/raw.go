package resolver

// Raw file shapes as decoded from YAML, before identifiers are resolved.
// They mirror the CUE definitions in internal/schema.

type rawDocument struct {
	ID           string   `yaml:"id"`
	Title        string   `yaml:"title"`
	Version      string   `yaml:"version"`
	Type         string   `yaml:"type"`
	AppliesTo    string   `yaml:"applies_to"`
	Introduction []string `yaml:"introduction"`
	Glossary     []string `yaml:"glossary"`
	References   []string `yaml:"references"`
	Annexes      []string `yaml:"annexes"`
}

type rawAuthor struct {
	Name    string   `yaml:"name"`
	Country string   `yaml:"country"`
	Members []string `yaml:"members"`
}

type rawCategoryRef struct {
	Category     string   `yaml:"category"`
	Requirements []string `yaml:"requirements"`
}

type rawSection struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Glossary    []string `yaml:"glossary"`
	References  []string `yaml:"references"`
}

type rawGlossary struct {
	ID          string `yaml:"id"`
	Term        string `yaml:"term"`
	Description string `yaml:"description"`
}

type rawPart struct {
	Description string   `yaml:"description"`
	Notes       []string `yaml:"notes"`
}

type rawLegacy struct {
	Optical string `yaml:"optical"`
	SAR     string `yaml:"sar"`
}

type rawRequirement struct {
	ID           string         `yaml:"id"`
	Title        string         `yaml:"title"`
	Description  string         `yaml:"description"`
	Threshold    *rawPart       `yaml:"threshold"`
	Goal         *rawPart       `yaml:"goal"`
	Glossary     []string       `yaml:"glossary"`
	References   []string       `yaml:"references"`
	Dependencies []string       `yaml:"dependencies"`
	Metadata     map[string]any `yaml:"metadata"`
	Legacy       *rawLegacy     `yaml:"legacy"`
}

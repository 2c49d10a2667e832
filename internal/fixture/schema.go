package fixture

// File is one YAML fixture describing a module. A minimal primary module:
//
//	assembly: App
//	module: App.dll
//	source: |
//	  class A { public virtual void M() {} }
//	  class B : A { public void M() {} }
//	types:
//	  - kind: class
//	    name: A
//	    members:
//	      - {kind: method, name: M, modifiers: [public, virtual], type: void}
//	  - kind: class
//	    name: B
//	    base: A
//	    members:
//	      - {kind: method, name: M, modifiers: [public], type: void}
//
// Declarations are anchored to identifiers of source: "at: M#1" is the
// second whole-word M. Without "at" a declaration takes the next unused
// occurrence of its own name.
type File struct {
	Assembly string `yaml:"assembly"`
	Module   string `yaml:"module"`
	// Kind is primary, added or referenced. The first file defaults to
	// primary, later ones to added.
	Kind string `yaml:"kind"`
	// ModuleAssembly overrides the assembly of a referenced module.
	ModuleAssembly string `yaml:"module_assembly"`
	// Source is inline text; SourceFile a path relative to the fixture.
	Source     string `yaml:"source"`
	SourceFile string `yaml:"source_file"`

	CaseInsensitiveNames bool `yaml:"case_insensitive_names"`

	References []Reference `yaml:"references"`
	Types      []Type      `yaml:"types"`
	Forwards   []Forward   `yaml:"forwards"`
}

// Reference is the forwarding table of a referenced assembly.
type Reference struct {
	Identity string            `yaml:"identity"`
	Forwards map[string]string `yaml:"forwards"`
	Defines  []string          `yaml:"defines"`
}

// Forward is a TypeForwardedTo record of the module.
type Forward struct {
	Name        string `yaml:"name"`
	Target      string `yaml:"target"`
	Container   string `yaml:"container"`
	IgnoreArity bool   `yaml:"ignore_arity"`
}

type Type struct {
	Kind       string      `yaml:"kind"`
	Name       string      `yaml:"name"`
	Namespace  string      `yaml:"namespace"`
	At         string      `yaml:"at"`
	Modifiers  []string    `yaml:"modifiers"`
	Flags      []string    `yaml:"flags"`
	TypeParams []TypeParam `yaml:"type_params"`
	Base       string      `yaml:"base"`
	Interfaces []string    `yaml:"interfaces"`
	Members    []Member    `yaml:"members"`
	Nested     []Type      `yaml:"nested"`
}

// TypeParam lists its where-clause C# style: "class", "struct", "new()",
// a class, interfaces or other type parameters.
type TypeParam struct {
	Name        string   `yaml:"name"`
	At          string   `yaml:"at"`
	Constraints []string `yaml:"constraints"`
	WhereAt     string   `yaml:"where_at"`
}

type Member struct {
	Kind       string      `yaml:"kind"`
	Name       string      `yaml:"name"`
	At         string      `yaml:"at"`
	Modifiers  []string    `yaml:"modifiers"`
	Flags      []string    `yaml:"flags"`
	Body       *bool       `yaml:"body"`
	TypeParams []TypeParam `yaml:"type_params"`
	// Type is the return type of methods and the type of fields,
	// properties, events and indexers.
	Type        string     `yaml:"type"`
	RefReturn   bool       `yaml:"ref_return"`
	Params      []Param    `yaml:"params"`
	Accessors   []Accessor `yaml:"accessors"`
	Explicit    string     `yaml:"explicit"`
	IndexerName string     `yaml:"indexer_name"`
}

type Param struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Ref    string `yaml:"ref"`
	Params bool   `yaml:"params"`
	At     string `yaml:"at"`
}

type Accessor struct {
	Kind      string   `yaml:"kind"`
	Modifiers []string `yaml:"modifiers"`
	Body      bool     `yaml:"body"`
	At        string   `yaml:"at"`
}

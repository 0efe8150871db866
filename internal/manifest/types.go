package manifest

import "encoding/xml"

// Document is the decoded catalog document.
type Document struct {
	LibDir  string       `yaml:"libdir" json:"libdir,omitempty"`
	Modules []ModuleDecl `yaml:"modules" json:"modules"`
}

// ModuleDecl declares one dynamically resolved module. Category is kept as
// written; mapping it onto the closed category set is the catalog's job.
type ModuleDecl struct {
	Name     string `yaml:"name" json:"name"`
	Category string `yaml:"category" json:"category"`
	InPorts  int    `yaml:"inport" json:"inport"`
	OutPorts int    `yaml:"outport" json:"outport"`
}

// xmlDocument mirrors the legacy layout:
//
//	<config>
//	  <libdir>/opt/cseis/lib</libdir>
//	  <module name="STACK" type="EXE_MULTIE_TRACE" inport="1" outport="1"/>
//	</config>
type xmlDocument struct {
	XMLName xml.Name    `xml:"config"`
	LibDir  string      `xml:"libdir"`
	Modules []xmlModule `xml:"module"`
}

type xmlModule struct {
	Name     string `xml:"name,attr"`
	Type     string `xml:"type,attr"`
	InPorts  int    `xml:"inport,attr"`
	OutPorts int    `xml:"outport,attr"`
}

// Format identifies the encoding of a catalog document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

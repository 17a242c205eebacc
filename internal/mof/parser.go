package mof

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parser reads a schema definition file.
type Parser struct {
	filePath string
}

// NewParser creates a parser for the given file.
func NewParser(filePath string) *Parser {
	return &Parser{filePath: filePath}
}

// Parse reads and decodes the YAML document.
func (p *Parser) Parse() (*SchemaFile, error) {
	data, err := os.ReadFile(p.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes decodes a schema definition document.
func ParseBytes(data []byte) (*SchemaFile, error) {
	var schema SchemaFile
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &schema, nil
}

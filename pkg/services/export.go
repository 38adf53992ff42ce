package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dukex/hireflow/pkg/models"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatYAML ExportFormat = "yaml"
)

// ParseExportFormat accepts "json", "yaml" and "yml"; empty means JSON.
func ParseExportFormat(format string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", NewValidationError("ParseExportFormat", "UNSUPPORTED_FORMAT",
			fmt.Sprintf("unsupported format '%s', allowed: json, yaml", format), ErrUnsupportedFormat)
	}
}

// ContentType is the media type of an export in this format.
func (f ExportFormat) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}

	return "application/json"
}

// importSchema only checks the document shape. Enum membership is left to
// rule validation so that it reports the specific error.
const importSchema = `{
  "type": "object",
  "required": ["name", "trigger", "actions", "version"],
  "properties": {
    "name": {"type": "string"},
    "trigger": {"type": "string"},
    "version": {"type": "string"},
    "exportedAt": {"type": "string"},
    "conditions": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["field", "operator"],
        "properties": {
          "field": {"type": "string"},
          "operator": {"type": "string"}
        }
      }
    },
    "actions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type"],
        "properties": {
          "type": {"type": "string"},
          "config": {"type": ["object", "null"]},
          "order": {"type": "integer"},
          "stopOnFailure": {"type": "boolean"}
        }
      }
    }
  }
}`

var importSchemaLoader = gojsonschema.NewStringLoader(importSchema)

// ExportRule renders the portable snapshot of a rule.
func (s *Rules) ExportRule(ctx context.Context, id string, format ExportFormat) ([]byte, error) {
	rule, err := s.persistence.RuleRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(models.NewRuleExport(rule, s.now()), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to export rule %s: %w", id, err)
	}

	if format != FormatYAML {
		return append(data, '\n'), nil
	}

	return jsonToYAML(data)
}

// jsonToYAML keeps the key order of the JSON document by going through a
// yaml.Node instead of a map.
func jsonToYAML(data []byte) ([]byte, error) {
	var node yaml.Node

	err := yaml.Unmarshal(data, &node)
	if err != nil {
		return nil, fmt.Errorf("failed to convert export to yaml: %w", err)
	}

	blockStyle(&node)

	var buf bytes.Buffer

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	err = encoder.Encode(&node)
	if err != nil {
		return nil, fmt.Errorf("failed to convert export to yaml: %w", err)
	}

	err = encoder.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to convert export to yaml: %w", err)
	}

	return buf.Bytes(), nil
}

func blockStyle(node *yaml.Node) {
	node.Style = 0

	for _, child := range node.Content {
		blockStyle(child)
	}
}

type ImportRequest struct {
	Data      []byte
	Format    ExportFormat
	CreatedBy string
	// IsActive defaults to false so an imported rule does not fire before review.
	IsActive bool
}

// ImportRule creates a rule from an export document.
func (s *Rules) ImportRule(ctx context.Context, req ImportRequest) (*models.WorkflowRule, error) {
	const op = "ImportRule"

	document, err := decodeImport(req.Data, req.Format)
	if err != nil {
		return nil, NewValidationError(op, "INVALID_IMPORT", err.Error(), ErrInvalidImport)
	}

	result, err := gojsonschema.Validate(importSchemaLoader, gojsonschema.NewBytesLoader(document))
	if err != nil {
		return nil, NewValidationError(op, "INVALID_IMPORT", err.Error(), ErrInvalidImport)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, resultErr := range result.Errors() {
			messages = append(messages, resultErr.String())
		}

		return nil, NewValidationError(op, "INVALID_IMPORT", strings.Join(messages, "; "), ErrInvalidImport)
	}

	var export models.RuleExport

	err = json.Unmarshal(document, &export)
	if err != nil {
		return nil, NewValidationError(op, "INVALID_IMPORT", err.Error(), ErrInvalidImport)
	}

	if export.Version != models.RuleExportVersion {
		return nil, NewValidationError(op, "UNSUPPORTED_EXPORT_VERSION",
			fmt.Sprintf("unsupported export version '%s', expected %s", export.Version, models.RuleExportVersion),
			ErrUnsupportedExportVersion)
	}

	isActive := req.IsActive

	return s.CreateRule(ctx, CreateRuleRequest{
		Name:       export.Name,
		Trigger:    export.Trigger,
		Conditions: export.Conditions,
		Actions:    export.Actions,
		IsActive:   &isActive,
		CreatedBy:  req.CreatedBy,
	})
}

// decodeImport normalises a JSON or YAML document to JSON bytes.
func decodeImport(data []byte, format ExportFormat) ([]byte, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	if format != FormatYAML {
		if !json.Valid(data) {
			return nil, fmt.Errorf("document is not valid JSON")
		}

		return data, nil
	}

	var document any

	err := yaml.Unmarshal(data, &document)
	if err != nil {
		return nil, fmt.Errorf("document is not valid YAML: %w", err)
	}

	normalised, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("document cannot be represented as JSON: %w", err)
	}

	return normalised, nil
}

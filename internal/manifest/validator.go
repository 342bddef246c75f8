package manifest

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/afero"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/agentx-labs/ctxloader/internal/artifact"
)

//go:embed schema/*.schema.json
var schemaFS embed.FS

// Schema selects the embedded schema a file is validated against.
type Schema string

const (
	// SchemaArtifact validates each normalized artifact in a file.
	SchemaArtifact Schema = "artifact"
	// SchemaFeature validates each feature manifest record in a file.
	SchemaFeature Schema = "feature"
)

type compiled struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

var (
	schemas = map[Schema]*compiled{
		SchemaArtifact: {},
		SchemaFeature:  {},
	}
	printer = message.NewPrinter(language.English)
)

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue represents a single validation error from the schema.
type ValidationIssue struct {
	Record  int    // Index of the record within the file, after normalization
	Path    string // Instance location inside the record (e.g., "/name")
	Message string // Human-readable error message
	Keyword string // Schema keyword that failed
}

func (i ValidationIssue) String() string {
	return fmt.Sprintf("[%d]%s: %s (%s)", i.Record, i.Path, i.Message, i.Keyword)
}

// getSchema compiles the named embedded schema once and returns it.
func getSchema(kind Schema) (*jsonschema.Schema, error) {
	entry, ok := schemas[kind]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", kind)
	}
	entry.once.Do(func() {
		file := string(kind) + ".schema.json"
		data, err := schemaFS.ReadFile("schema/" + file)
		if err != nil {
			entry.err = fmt.Errorf("reading schema %s: %w", file, err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			entry.err = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(file, doc); err != nil {
			entry.err = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		entry.schema, entry.err = c.Compile(file)
		if entry.err != nil {
			entry.err = fmt.Errorf("compiling schema: %w", entry.err)
		}
	})
	return entry.schema, entry.err
}

// Validate checks every record in an artifact file against the schema. The
// path only selects the decoder. The error return is for parse or schema
// compilation failures; validation issues are returned in the result.
func Validate(kind Schema, path string, data []byte) (*ValidationResult, error) {
	schema, err := getSchema(kind)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	docs, err := Parse(path, data)
	if err != nil {
		return nil, err
	}

	var records []any
	for _, doc := range docs {
		if kind == SchemaFeature {
			records = append(records, artifact.AsList(doc)...)
		} else {
			records = append(records, artifact.Normalize(doc)...)
		}
	}

	result := &ValidationResult{Valid: true}
	for i, rec := range records {
		issues, err := validateRecord(schema, rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		for _, issue := range issues {
			issue.Record = i
			result.Issues = append(result.Issues, issue)
		}
	}
	result.Valid = len(result.Issues) == 0
	return result, nil
}

// ValidateFile reads a file and validates it against the schema.
func ValidateFile(fs afero.Fs, kind Schema, path string) (*ValidationResult, error) {
	data, err := readFile(fs, path)
	if err != nil {
		return nil, err
	}
	return Validate(kind, path, data)
}

func validateRecord(schema *jsonschema.Schema, rec any) ([]ValidationIssue, error) {
	// Round-trip through JSON so numbers arrive as json.Number.
	jsonData, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("converting to JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("preparing JSON for validation: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil, nil
	}
	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}
	return extractIssues(validationErr), nil
}

// extractIssues walks the ValidationError tree and returns leaf-level issues.
func extractIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	collectValidationIssues(ve, &issues)

	if len(issues) == 0 {
		return []ValidationIssue{{
			Message: ve.Error(),
		}}
	}
	return deduplicateIssues(issues)
}

func collectValidationIssues(ve *jsonschema.ValidationError, issues *[]ValidationIssue) {
	if len(ve.Causes) == 0 {
		path := "/" + strings.Join(ve.InstanceLocation, "/")
		if len(ve.InstanceLocation) == 0 {
			path = ""
		}

		keyword := ""
		msg := ""
		if ve.ErrorKind != nil {
			if kwPath := ve.ErrorKind.KeywordPath(); len(kwPath) > 0 {
				keyword = kwPath[len(kwPath)-1]
			}
			msg = ve.ErrorKind.LocalizedString(printer)
		}

		// Container keywords carry no detail of their own.
		if keyword == "allOf" || keyword == "$ref" || keyword == "" {
			return
		}

		*issues = append(*issues, ValidationIssue{
			Path:    path,
			Message: msg,
			Keyword: keyword,
		})
		return
	}

	for _, cause := range ve.Causes {
		collectValidationIssues(cause, issues)
	}
}

// deduplicateIssues removes duplicate issues (same path + keyword + message).
func deduplicateIssues(issues []ValidationIssue) []ValidationIssue {
	seen := make(map[string]bool)
	var result []ValidationIssue
	for _, issue := range issues {
		key := issue.Path + "|" + issue.Keyword + "|" + issue.Message
		if !seen[key] {
			seen[key] = true
			result = append(result, issue)
		}
	}
	return result
}

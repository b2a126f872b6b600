package ir

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaFS embed.FS

var schemaLoader = sync.OnceValue(loadSchemaLoader)

func loadSchemaLoader() gojsonschema.JSONLoader {
	data, err := schemaFS.ReadFile("schema.json")
	if err != nil {
		panic(fmt.Sprintf("ir: embedded schema.json missing: %v", err))
	}
	return gojsonschema.NewBytesLoader(data)
}

// validateSchema checks data against the embedded IR envelope schema,
// exactly the way the teacher validates node-level data with the same
// library. Schema violations are reported as workflow-level Issues.
func validateSchema(data []byte) []Issue {
	result, err := gojsonschema.Validate(schemaLoader(), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return []Issue{{Field: "$", Message: fmt.Sprintf("malformed document: %v", err)}}
	}
	if result.Valid() {
		return nil
	}

	issues := make([]Issue, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		field := e.Field()
		if field == "" || field == "(root)" {
			field = "$"
		}
		issues = append(issues, Issue{
			Field:   field,
			Message: strings.TrimSpace(e.Description()),
		})
	}
	return issues
}

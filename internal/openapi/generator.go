package openapi

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/fginsight/fginsight/internal/model"
)

// GenerateProjectSpec generates an OpenAPI 3.1 spec for the HTTP surface a
// published project exposes: a listing endpoint per table and an execution
// endpoint per server command. The document is self-contained and can be
// marshaled to JSON or YAML directly.
func GenerateProjectSpec(p *model.Project, baseURL string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title: fmt.Sprintf("%s API", p.Name),
			Description: fmt.Sprintf("Generated API specification for the %s project (%d tables, %d server commands).",
				p.Name, len(p.Tables), len(p.ServerCommands)),
			Version: "1.0.0",
		},
		Servers: openapi3.Servers{
			{URL: baseURL, Description: "Published application"},
		},
	}

	// Initialize components
	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	// Add security schemes
	doc.Components.SecuritySchemes["apiKey"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type: "apiKey",
			In:   "header",
			Name: "X-API-Key",
		},
	}
	doc.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}

	doc.Security = openapi3.SecurityRequirements{
		{"apiKey": {}},
		{"bearerAuth": {}},
	}

	doc.Paths = openapi3.NewPaths()

	// Add shared error response schema
	doc.Components.Schemas["ErrorResponse"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"code":    &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}},
							"message": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
							"context": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}},
						},
					},
				},
			},
		},
	}

	// Generate a schema and listing path for each table
	for _, table := range p.Tables {
		addTablePaths(doc, table)
	}

	// Generate an execution path for each server command
	for _, cmd := range p.ServerCommands {
		addServerCommandPath(doc, cmd)
	}

	return doc
}

// addTablePaths registers the table's record schema and a read-only listing
// path for it. The published runtime only exposes table data through its
// OData endpoint, so no write operations are generated.
func addTablePaths(doc *openapi3.T, table model.Table) {
	tablePath := fmt.Sprintf("/api/odata/%s", table.Name)
	tag := table.Name

	// Register component schema
	schemaName := sanitizeSchemaName(table.Name)
	doc.Components.Schemas[schemaName] = columnsToSchema(table)

	schemaRef := fmt.Sprintf("#/components/schemas/%s", schemaName)

	// List response schema: OData wraps results in a "value" array
	listResponseSchema := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"value": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:  &openapi3.Types{"array"},
						Items: openapi3.NewSchemaRef(schemaRef, nil),
					},
				},
			},
		},
	}

	doc.Paths.Set(tablePath, &openapi3.PathItem{
		Get: listOperation(tag, table.Name, listQueryParameters(), listResponseSchema),
	})
}

// addServerCommandPath registers the POST execution path for a server
// command. Commands without parameters take no request body.
func addServerCommandPath(doc *openapi3.T, cmd model.ServerCommand) {
	cmdPath := fmt.Sprintf("/ServerCommandExecute/%s", cmd.Name)

	op := &openapi3.Operation{
		Tags:        []string{"ServerCommands"},
		Summary:     fmt.Sprintf("Execute server command %s", cmd.Name),
		Description: commandDescription(cmd),
		OperationID: fmt.Sprintf("execute_%s", strings.ToLower(sanitizeSchemaName(cmd.Name))),
		Responses: newResponses(
			"200", fmt.Sprintf("Result of %s", cmd.Name), commandResultSchema(),
		),
	}

	if len(cmd.Parameters) > 0 {
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: &openapi3.RequestBody{
				Description: fmt.Sprintf("Parameters for %s", cmd.Name),
				Required:    true,
				Content: openapi3.Content{
					"application/json": &openapi3.MediaType{
						Schema: parametersToSchema(cmd.Parameters),
					},
				},
			},
		}
	}

	doc.Paths.Set(cmdPath, &openapi3.PathItem{Post: op})
}

func commandDescription(cmd model.ServerCommand) string {
	if cmd.Folder != "" {
		return fmt.Sprintf("Server command from the %s folder.", cmd.Folder)
	}
	return fmt.Sprintf("Executes the %s server command.", cmd.Name)
}

// ─── Schema Builders ────────────────────────────────────────────────────────

// columnsToSchema generates the record schema for a table. Required columns
// end up in the schema's required list.
func columnsToSchema(table model.Table) *openapi3.SchemaRef {
	props := openapi3.Schemas{}
	var required []string

	for _, col := range table.Columns {
		m := MapColumnType(col.Type)
		s := columnTypeSchema(m)
		s.Description = col.Description
		if col.DefaultValue != nil {
			s.Default = *col.DefaultValue
		}

		props[col.Name] = &openapi3.SchemaRef{Value: s}

		if col.Required {
			required = append(required, col.Name)
		}
	}

	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:        &openapi3.Types{"object"},
			Description: fmt.Sprintf("A record from the %s table.", table.Name),
			Properties:  props,
			Required:    required,
		},
	}
}

// parametersToSchema generates the request body schema for a parameterized
// server command.
func parametersToSchema(params []model.Parameter) *openapi3.SchemaRef {
	props := openapi3.Schemas{}
	var required []string

	for _, p := range params {
		m := MapColumnType(p.Type)
		s := columnTypeSchema(m)
		if p.DefaultValue != nil {
			s.Default = *p.DefaultValue
		}

		props[p.Name] = &openapi3.SchemaRef{Value: s}

		if p.Required {
			required = append(required, p.Name)
		}
	}

	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: props,
			Required:   required,
		},
	}
}

// columnTypeSchema creates a basic Schema for the given type mapping.
func columnTypeSchema(m TypeMapping) *openapi3.Schema {
	s := &openapi3.Schema{
		Type: &openapi3.Types{m.Type},
	}
	if m.Format != "" {
		s.Format = m.Format
	}
	return s
}

// commandResultSchema describes the loose envelope the runtime returns from
// command execution.
func commandResultSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"result": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:        &openapi3.Types{"object"},
						Description: "Command output values keyed by return parameter name.",
					},
				},
			},
		},
	}
}

// ─── Operation and Parameter Builders ───────────────────────────────────────

// listOperation generates a GET operation for listing table records.
func listOperation(tag, tableName string, params openapi3.Parameters, responseSchema *openapi3.SchemaRef) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		Summary:     fmt.Sprintf("List %s records", tableName),
		Description: fmt.Sprintf("Retrieve records from %s with optional filtering, sorting, and pagination.", tableName),
		OperationID: fmt.Sprintf("list_%s", strings.ToLower(sanitizeSchemaName(tableName))),
		Parameters:  params,
		Responses: newResponses(
			"200", fmt.Sprintf("List of %s records", tableName), responseSchema,
		),
	}
}

// listQueryParameters returns the standard OData query parameters for
// listing endpoints.
func listQueryParameters() openapi3.Parameters {
	return openapi3.Parameters{
		&openapi3.ParameterRef{
			Value: openapi3.NewQueryParameter("$filter").
				WithDescription("OData filter expression (e.g. \"Status eq 'Open'\").").
				WithSchema(openapi3.NewStringSchema()),
		},
		&openapi3.ParameterRef{
			Value: openapi3.NewQueryParameter("$orderby").
				WithDescription("Sort order (e.g. \"Name desc\").").
				WithSchema(openapi3.NewStringSchema()),
		},
		&openapi3.ParameterRef{
			Value: openapi3.NewQueryParameter("$top").
				WithDescription("Maximum number of records to return.").
				WithSchema(&openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}),
		},
		&openapi3.ParameterRef{
			Value: openapi3.NewQueryParameter("$skip").
				WithDescription("Number of records to skip before returning results.").
				WithSchema(&openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}),
		},
		&openapi3.ParameterRef{
			Value: openapi3.NewQueryParameter("$select").
				WithDescription("Comma-separated list of columns to include in the response.").
				WithSchema(openapi3.NewStringSchema()),
		},
	}
}

// ─── Response Helpers ───────────────────────────────────────────────────────

// newResponses builds a Responses map with a success response and standard error responses.
func newResponses(statusCode, description string, schema *openapi3.SchemaRef) *openapi3.Responses {
	responses := openapi3.NewResponses()

	// Success response
	successDesc := description
	responses.Set(statusCode, &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &successDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	})

	// Standard error responses
	errorRef := openapi3.NewSchemaRef("#/components/schemas/ErrorResponse", nil)

	badReqDesc := "Bad request"
	responses.Set("400", &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &badReqDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
		},
	})

	unauthDesc := "Unauthorized"
	responses.Set("401", &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &unauthDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
		},
	})

	notFoundDesc := "Not found"
	responses.Set("404", &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &notFoundDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
		},
	})

	serverErrDesc := "Internal server error"
	responses.Set("500", &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &serverErrDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
		},
	})

	return responses
}

// ─── Naming Helpers ─────────────────────────────────────────────────────────

// sanitizeSchemaName creates a valid OpenAPI component schema name from a
// table or command name.
func sanitizeSchemaName(name string) string {
	s := capitalize(name)
	// Replace any non-alphanumeric chars (except underscore) with underscore
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "Schema"
	}
	return b.String()
}

// capitalize returns a string with its first character uppercased.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package openapi

import "strings"

// TypeMapping maps platform column types to OpenAPI type/format pairs.
type TypeMapping struct {
	Type   string // OpenAPI type: string, integer, number, boolean, object, array
	Format string // OpenAPI format: int32, int64, double, date, date-time, byte, etc.
}

// columnTypeToOpenAPI maps the platform's column and parameter types to
// OpenAPI types (case-insensitive lookup). Keys are the short type names
// produced by extraction, not raw assembly-qualified names.
var columnTypeToOpenAPI = map[string]TypeMapping{
	// Integer types
	"integer": {"integer", "int64"},
	"int":     {"integer", "int64"},
	"int32":   {"integer", "int32"},
	"int64":   {"integer", "int64"},
	"byte":    {"integer", "int32"},

	// Decimal types
	"decimal":    {"number", "double"},
	"double":     {"number", "double"},
	"float":      {"number", "float"},
	"single":     {"number", "float"},
	"number":     {"number", "double"},
	"currency":   {"number", "double"},
	"percentage": {"number", "double"},

	// Date/time types
	"datetime": {"string", "date-time"},
	"date":     {"string", "date"},
	"time":     {"string", "time"},

	// Boolean
	"checkbox": {"boolean", ""},
	"boolean":  {"boolean", ""},
	"bool":     {"boolean", ""},

	// String types
	"text":          {"string", ""},
	"string":        {"string", ""},
	"multilinetext": {"string", ""},
	"richtext":      {"string", ""},
	"email":         {"string", "email"},
	"url":           {"string", "uri"},
	"hyperlink":     {"string", "uri"},
	"phone":         {"string", ""},
	"user":          {"string", ""},
	"lookup":        {"string", ""},
	"barcode":       {"string", ""},

	// Binary
	"attachment": {"string", "byte"},
	"image":      {"string", "byte"},

	// Identity
	"autonumber": {"integer", "int64"},
	"guid":       {"string", "uuid"},
	"uuid":       {"string", "uuid"},
}

// MapColumnType converts a platform column type to an OpenAPI type
// mapping. Falls back to {"string", ""} for unknown types.
func MapColumnType(colType string) TypeMapping {
	normalized := strings.ToLower(strings.TrimSpace(colType))
	if m, ok := columnTypeToOpenAPI[normalized]; ok {
		return m
	}
	return TypeMapping{"string", ""}
}

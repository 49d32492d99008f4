package contract

import (
	"github.com/erraggy/oasguard/internal/httputil"
)

// Location is where a parameter is carried in an HTTP message.
type Location string

// Parameter locations, in the order validators visit them.
const (
	LocationPath   Location = "path"
	LocationQuery  Location = "query"
	LocationHeader Location = "header"
	LocationCookie Location = "cookie"
)

// Locations lists parameter locations in validation order.
var Locations = []Location{LocationPath, LocationQuery, LocationHeader, LocationCookie}

// Style is a parameter serialization style.
type Style string

// Parameter styles.
const (
	StyleSimple         Style = "simple"
	StyleLabel          Style = "label"
	StyleMatrix         Style = "matrix"
	StyleForm           Style = "form"
	StyleSpaceDelimited Style = "spaceDelimited"
	StylePipeDelimited  Style = "pipeDelimited"
	StyleDeepObject     Style = "deepObject"
)

// allowedStyles lists the styles each location may declare.
var allowedStyles = map[Location][]Style{
	LocationPath:   {StyleSimple, StyleLabel, StyleMatrix},
	LocationQuery:  {StyleForm, StyleSpaceDelimited, StylePipeDelimited, StyleDeepObject},
	LocationHeader: {StyleSimple},
	LocationCookie: {StyleForm},
}

// defaultStyle returns the style used when a parameter declares none.
func defaultStyle(in Location) Style {
	switch in {
	case LocationQuery, LocationCookie:
		return StyleForm
	default:
		return StyleSimple
	}
}

// Schema types reported by Parameter.SchemaType.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

// Parameter is one declared operation parameter after path-level inheritance.
type Parameter struct {
	Name            string
	In              Location
	Required        bool
	Style           Style
	Explode         bool
	AllowEmptyValue bool
	Deprecated      bool

	// SchemaRef addresses the parameter schema in the schema repository.
	// Empty when the parameter declares neither schema nor content.
	SchemaRef string

	// SchemaType is the resolved schema's type: "object", "array", a primitive
	// type name, or "" when the schema does not constrain it.
	SchemaType string

	// ItemType is the array items' type when SchemaType is "array".
	ItemType string

	// PropertyTypes maps declared object properties to their types when
	// SchemaType is "object".
	PropertyTypes map[string]string

	// ContentType is set when the parameter is declared with content instead
	// of a schema. The raw value is then decoded as a body of that media type.
	ContentType string
}

// IsObject reports whether the parameter schema is an object.
func (p *Parameter) IsObject() bool { return p.SchemaType == TypeObject }

// IsArray reports whether the parameter schema is an array.
func (p *Parameter) IsArray() bool { return p.SchemaType == TypeArray }

// MediaTypeSchema pairs a declared media type with its schema.
type MediaTypeSchema struct {
	// MediaType is the content map key, e.g. "application/json" or "image/*".
	MediaType string
	// SchemaRef is empty when the media type declares no schema.
	SchemaRef string
}

// RequestBody is an operation's declared request body.
type RequestBody struct {
	Required bool
	// Content is in document order.
	Content []MediaTypeSchema
}

// Response is one entry of an operation's responses.
type Response struct {
	// Code is a status code, an NXX range, or "default".
	Code        string
	Description string
	// Content is in document order.
	Content []MediaTypeSchema
}

// SecurityScheme is a declared entry of components.securitySchemes.
type SecurityScheme struct {
	Name         string
	Type         string
	Description  string
	In           string
	ParamName    string
	Scheme       string
	BearerFormat string
	OpenIDURL    string
}

// SecurityRequirement maps scheme names to required scopes.
type SecurityRequirement map[string][]string

// Operation is one HTTP method of one Path.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Tags        []string
	Deprecated  bool
	Parameters  []*Parameter
	RequestBody *RequestBody
	Responses   []*Response
	Security    []SecurityRequirement
}

// ParametersIn returns the operation's parameters at location, in declaration order.
func (o *Operation) ParametersIn(in Location) []*Parameter {
	var out []*Parameter
	for _, p := range o.Parameters {
		if p.In == in {
			out = append(out, p)
		}
	}
	return out
}

// Parameter returns the parameter declared at location with name, or nil.
func (o *Operation) Parameter(in Location, name string) *Parameter {
	for _, p := range o.Parameters {
		if p.In == in && p.Name == name {
			return p
		}
	}
	return nil
}

// Response returns the response describing status: an exact code match,
// then the NXX range, then "default". It returns nil when none applies.
func (o *Operation) Response(status int) *Response {
	for _, key := range httputil.ResponseKeys(status) {
		for _, r := range o.Responses {
			if r.Code == key {
				return r
			}
		}
	}
	return nil
}

// ResponseCode returns the response declared under code exactly, or nil.
func (o *Operation) ResponseCode(code string) *Response {
	code = httputil.NormalizeResponseKey(code)
	for _, r := range o.Responses {
		if r.Code == code {
			return r
		}
	}
	return nil
}

// Path is a URL template with its operations.
type Path struct {
	Template   string
	Parameters []*Parameter
	Operations []*Operation
}

// Operation returns the path's operation for method (lowercase), or nil.
func (p *Path) Operation(method string) *Operation {
	for _, op := range p.Operations {
		if op.Method == method {
			return op
		}
	}
	return nil
}


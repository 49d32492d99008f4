package contract

import (
	"context"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-openapi/jsonpointer"
	"github.com/segmentio/encoding/json"

	"github.com/erraggy/oasguard/internal/httputil"
	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/schemarepo"
)

// maxRefHops bounds $ref chains followed while dereferencing.
const maxRefHops = 32

// ignoredHeaders are header parameters that OpenAPI says to ignore.
var ignoredHeaders = map[string]bool{
	"accept":        true,
	"content-type":  true,
	"authorization": true,
}

// Build constructs a Contract from doc. It fails with a *oaserrors.ContractError
// on an unsupported version, an ambiguous, duplicate, or wildcard path, or a
// malformed parameter. No partially built contract is ever returned.
func Build(ctx context.Context, doc *Document, opts ...Option) (*Contract, error) {
	if doc == nil || doc.root == nil {
		return nil, &oaserrors.ConfigError{Option: "document", Message: "document cannot be nil"}
	}
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	declared := doc.Version()
	dialect, err := dialectFor(declared)
	if err != nil {
		return nil, &oaserrors.ContractError{Path: "openapi", Message: err.Error()}
	}

	if cfg.validateDocument {
		if err := validateDocument(ctx, doc, dialect, cfg.logger); err != nil {
			return nil, err
		}
	}

	b := &builder{
		doc:    doc,
		root:   doc.root,
		logger: cfg.logger,
		ids:    make(map[string]string),
		seen:   make(map[string]bool),
	}

	c := &Contract{
		version: declared,
		dialect: dialect,
		byID:    make(map[string]*Operation),
	}

	routes, err := b.buildPaths(c)
	if err != nil {
		return nil, err
	}
	if c.securitySchemes, err = b.buildSecuritySchemes(); err != nil {
		return nil, err
	}

	repo := cfg.repository
	if repo == nil {
		r, err := schemarepo.New(doc.root, dialect)
		if err != nil {
			return nil, err
		}
		repo = r
	}
	if p, ok := repo.(Preloader); ok {
		if err := p.Preload(ctx, b.refs, cfg.preloadConcurrency); err != nil {
			return nil, &oaserrors.ContractError{Message: "compiling schemas", Cause: err}
		}
	}
	c.schemas = repo

	for _, op := range c.operations {
		for _, p := range op.Parameters {
			if err := resolveSchemaType(repo, p); err != nil {
				return nil, &oaserrors.ContractError{
					Path:    fmt.Sprintf("paths.%s.%s", op.Path, op.Method),
					Message: fmt.Sprintf("resolving schema of %s parameter %q", p.In, p.Name),
					Cause:   err,
				}
			}
		}
	}

	c.router = newPathRouter(routes)

	cfg.logger.Info("contract built",
		"version", declared,
		"dialect", dialect.String(),
		"paths", len(c.paths),
		"operations", len(c.operations),
		"schemas", len(b.refs),
	)
	return c, nil
}

// validateDocument runs kin-openapi's structural validation on 3.0 documents.
func validateDocument(ctx context.Context, doc *Document, dialect schemarepo.Dialect, logger Logger) error {
	if dialect != schemarepo.DialectOAS30 {
		logger.Warn("document validation skipped", "version", doc.Version(), "reason", "only 3.0 documents are checked")
		return nil
	}

	data, err := json.Marshal(doc.root)
	if err != nil {
		return &oaserrors.ParseError{Path: doc.source, Message: "encoding document", Cause: err}
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	t, err := loader.LoadFromData(data)
	if err != nil {
		return &oaserrors.ContractError{Message: "document failed to load", Cause: err}
	}
	if err := t.Validate(loader.Context); err != nil {
		return &oaserrors.ContractError{Message: "document failed structural validation", Cause: err}
	}
	return nil
}

// builder carries state across one Build call.
type builder struct {
	doc    *Document
	root   map[string]any
	logger Logger

	// ids maps operation ids to where they were declared
	ids map[string]string

	// refs are the schema refs to preload, deduplicated via seen
	refs []string
	seen map[string]bool
}

func (b *builder) buildPaths(c *Contract) ([]routeEntry, error) {
	raw, ok := b.root["paths"]
	if !ok || raw == nil {
		return nil, nil
	}
	paths, ok := raw.(map[string]any)
	if !ok {
		return nil, &oaserrors.ContractError{Path: "paths", Message: "must be an object"}
	}

	byTemplate := make(map[string]string)
	byShape := make(map[string]string)
	var routes []routeEntry

	for _, key := range b.doc.keys("/paths", paths) {
		if strings.HasPrefix(key, "x-") {
			continue
		}
		loc := "paths." + key

		template := normalizeTemplate(key)
		pt, err := compileTemplate(template)
		if err != nil {
			return nil, &oaserrors.ContractError{Path: loc, Message: err.Error()}
		}
		if prev, dup := byTemplate[template]; dup {
			return nil, &oaserrors.ContractError{Path: loc, Message: fmt.Sprintf("duplicate of path %q", prev)}
		}
		if prev, amb := byShape[pt.shape]; amb {
			return nil, &oaserrors.ContractError{Path: loc, Message: fmt.Sprintf("ambiguous with path %q", prev)}
		}
		byTemplate[template] = key
		byShape[pt.shape] = key

		item, itemPtr, err := b.deref(paths[key], "/paths/"+jsonpointer.Escape(key))
		if err != nil {
			return nil, &oaserrors.ContractError{Path: loc, Cause: err}
		}

		shared, err := b.buildParameters(item["parameters"], itemPtr+"/parameters", loc, pt)
		if err != nil {
			return nil, err
		}

		path := &Path{Template: template, Parameters: shared}
		for _, method := range b.doc.keys(itemPtr, item) {
			if !httputil.IsMethod(method) {
				continue
			}
			op, err := b.buildOperation(path, pt, method, item[method], itemPtr+"/"+method)
			if err != nil {
				return nil, err
			}
			path.Operations = append(path.Operations, op)
			c.operations = append(c.operations, op)
			c.byID[op.ID] = op
		}

		c.paths = append(c.paths, path)
		routes = append(routes, routeEntry{tmpl: pt, path: path})
	}
	return routes, nil
}

func (b *builder) buildOperation(path *Path, pt *pathTemplate, method string, raw any, ptr string) (*Operation, error) {
	loc := fmt.Sprintf("paths.%s.%s", path.Template, method)
	node, ok := raw.(map[string]any)
	if !ok {
		return nil, &oaserrors.ContractError{Path: loc, Message: "operation must be an object"}
	}

	id, _ := node["operationId"].(string)
	if id == "" {
		id = strings.ToUpper(method) + " " + path.Template
	}
	if prev, dup := b.ids[id]; dup {
		return nil, &oaserrors.ContractError{Path: loc, Message: fmt.Sprintf("operationId %q already used by %s", id, prev)}
	}
	b.ids[id] = loc

	own, err := b.buildParameters(node["parameters"], ptr+"/parameters", loc, pt)
	if err != nil {
		return nil, err
	}

	op := &Operation{
		ID:         id,
		Method:     method,
		Path:       path.Template,
		Summary:    stringField(node, "summary"),
		Tags:       stringList(node["tags"]),
		Deprecated: boolField(node, "deprecated"),
		Parameters: mergeParameters(path.Parameters, own),
	}

	if rb, ok := node["requestBody"]; ok && rb != nil {
		rbNode, rbPtr, err := b.deref(rb, ptr+"/requestBody")
		if err != nil {
			return nil, &oaserrors.ContractError{Path: loc + ".requestBody", Cause: err}
		}
		content, err := b.buildContent(rbNode["content"], rbPtr+"/content", loc+".requestBody")
		if err != nil {
			return nil, err
		}
		op.RequestBody = &RequestBody{Required: boolField(rbNode, "required"), Content: content}
	}

	if op.Responses, err = b.buildResponses(node["responses"], ptr+"/responses", loc); err != nil {
		return nil, err
	}

	security, ok := node["security"]
	if !ok {
		security = b.root["security"]
	}
	op.Security = securityRequirements(security)

	return op, nil
}

func (b *builder) buildParameters(raw any, ptr, loc string, pt *pathTemplate) ([]*Parameter, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, &oaserrors.ContractError{Path: loc + ".parameters", Message: "must be an array"}
	}

	var out []*Parameter
	for i, item := range list {
		ploc := fmt.Sprintf("%s.parameters[%d]", loc, i)
		node, nodePtr, err := b.deref(item, fmt.Sprintf("%s/%d", ptr, i))
		if err != nil {
			return nil, &oaserrors.ContractError{Path: ploc, Cause: err}
		}
		p, err := b.buildParameter(node, nodePtr, ploc, pt)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		for _, existing := range out {
			if existing.In == p.In && existing.Name == p.Name {
				return nil, &oaserrors.ContractError{Path: ploc, Message: fmt.Sprintf("duplicate %s parameter %q", p.In, p.Name)}
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (b *builder) buildParameter(node map[string]any, ptr, loc string, pt *pathTemplate) (*Parameter, error) {
	name := stringField(node, "name")
	if name == "" {
		return nil, &oaserrors.ContractError{Path: loc, Message: "parameter name is missing or empty"}
	}

	in := Location(stringField(node, "in"))
	allowed, known := allowedStyles[in]
	if !known {
		return nil, &oaserrors.ContractError{Path: loc, Message: fmt.Sprintf("parameter %q has invalid location %q", name, in)}
	}

	if in == LocationHeader && ignoredHeaders[strings.ToLower(name)] {
		b.logger.Debug("ignoring reserved header parameter", "location", loc, "parameter", name)
		return nil, nil
	}

	p := &Parameter{
		Name:            name,
		In:              in,
		Required:        boolField(node, "required"),
		Style:           defaultStyle(in),
		AllowEmptyValue: boolField(node, "allowEmptyValue"),
		Deprecated:      boolField(node, "deprecated"),
	}

	if in == LocationPath {
		if !p.Required {
			return nil, &oaserrors.ContractError{Path: loc, Message: fmt.Sprintf("path parameter %q must be required", name)}
		}
		if !pt.hasParam(name) {
			return nil, &oaserrors.ContractError{Path: loc, Message: fmt.Sprintf("path parameter %q has no {%s} placeholder in %q", name, name, pt.template)}
		}
	}

	if s := stringField(node, "style"); s != "" {
		p.Style = Style(s)
		if !styleAllowed(p.Style, allowed) {
			return nil, &oaserrors.ContractError{Path: loc, Message: fmt.Sprintf("style %q is not allowed for %s parameter %q", s, in, name)}
		}
	}
	if explode, ok := node["explode"].(bool); ok {
		p.Explode = explode
	} else {
		p.Explode = p.Style == StyleForm
	}

	if schema, ok := node["schema"]; ok {
		p.SchemaRef = b.schemaRef(schema, ptr+"/schema")
		return p, nil
	}

	if raw, ok := node["content"]; ok {
		content, ok := raw.(map[string]any)
		if !ok || len(content) != 1 {
			return nil, &oaserrors.ContractError{Path: loc, Message: fmt.Sprintf("content of parameter %q must have exactly one entry", name)}
		}
		for ct, mt := range content {
			p.ContentType = ct
			if mtNode, ok := mt.(map[string]any); ok {
				if schema, ok := mtNode["schema"]; ok {
					p.SchemaRef = b.schemaRef(schema, ptr+"/content/"+jsonpointer.Escape(ct)+"/schema")
				}
			}
		}
	}
	return p, nil
}

func (b *builder) buildContent(raw any, ptr, loc string) ([]MediaTypeSchema, error) {
	if raw == nil {
		return nil, nil
	}
	content, ok := raw.(map[string]any)
	if !ok {
		return nil, &oaserrors.ContractError{Path: loc + ".content", Message: "must be an object"}
	}

	out := make([]MediaTypeSchema, 0, len(content))
	for _, ct := range b.doc.keys(ptr, content) {
		entry := MediaTypeSchema{MediaType: ct}
		if mt, ok := content[ct].(map[string]any); ok {
			if schema, ok := mt["schema"]; ok {
				entry.SchemaRef = b.schemaRef(schema, ptr+"/"+jsonpointer.Escape(ct)+"/schema")
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func (b *builder) buildResponses(raw any, ptr, loc string) ([]*Response, error) {
	if raw == nil {
		return nil, nil
	}
	responses, ok := raw.(map[string]any)
	if !ok {
		return nil, &oaserrors.ContractError{Path: loc + ".responses", Message: "must be an object"}
	}

	var out []*Response
	for _, code := range b.doc.keys(ptr, responses) {
		if strings.HasPrefix(code, "x-") {
			continue
		}
		rloc := fmt.Sprintf("%s.responses.%s", loc, code)
		if !httputil.ValidateStatusCode(code) {
			return nil, &oaserrors.ContractError{Path: rloc, Message: fmt.Sprintf("invalid status code %q", code)}
		}
		node, nodePtr, err := b.deref(responses[code], ptr+"/"+jsonpointer.Escape(code))
		if err != nil {
			return nil, &oaserrors.ContractError{Path: rloc, Cause: err}
		}
		content, err := b.buildContent(node["content"], nodePtr+"/content", rloc)
		if err != nil {
			return nil, err
		}
		out = append(out, &Response{
			Code:        httputil.NormalizeResponseKey(code),
			Description: stringField(node, "description"),
			Content:     content,
		})
	}
	return out, nil
}

func (b *builder) buildSecuritySchemes() ([]*SecurityScheme, error) {
	components, _ := b.root["components"].(map[string]any)
	schemes, _ := components["securitySchemes"].(map[string]any)
	if len(schemes) == 0 {
		return nil, nil
	}

	const base = "/components/securitySchemes"
	out := make([]*SecurityScheme, 0, len(schemes))
	for _, name := range b.doc.keys(base, schemes) {
		node, _, err := b.deref(schemes[name], base+"/"+jsonpointer.Escape(name))
		if err != nil {
			return nil, &oaserrors.ContractError{Path: "components.securitySchemes." + name, Cause: err}
		}
		out = append(out, &SecurityScheme{
			Name:         name,
			Type:         stringField(node, "type"),
			Description:  stringField(node, "description"),
			In:           stringField(node, "in"),
			ParamName:    stringField(node, "name"),
			Scheme:       stringField(node, "scheme"),
			BearerFormat: stringField(node, "bearerFormat"),
			OpenIDURL:    stringField(node, "openIdConnectUrl"),
		})
	}
	return out, nil
}

// schemaRef returns the repository ref of the schema found at ptr and records
// it for preloading. A schema that is only a $ref is addressed by its target.
func (b *builder) schemaRef(schema any, ptr string) string {
	ref := "#" + ptr
	if m, ok := schema.(map[string]any); ok && len(m) == 1 {
		if target, ok := m["$ref"].(string); ok {
			ref = target
		}
	}
	if !b.seen[ref] {
		b.seen[ref] = true
		b.refs = append(b.refs, ref)
	}
	return ref
}

// deref follows local $ref chains from node and returns the target object and
// its JSON pointer.
func (b *builder) deref(node any, ptr string) (map[string]any, string, error) {
	visited := make(map[string]bool)
	for hop := 0; hop <= maxRefHops; hop++ {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, "", fmt.Errorf("expected an object at %q, got %T", ptr, node)
		}
		ref, isRef := m["$ref"].(string)
		if !isRef {
			return m, ptr, nil
		}
		if !strings.HasPrefix(ref, "#") {
			return nil, "", &oaserrors.ReferenceError{Ref: ref, Message: "remote references are not supported"}
		}
		if visited[ref] {
			return nil, "", &oaserrors.ReferenceError{Ref: ref, IsCircular: true}
		}
		visited[ref] = true

		p, err := jsonpointer.New(strings.TrimPrefix(ref, "#"))
		if err != nil {
			return nil, "", &oaserrors.ReferenceError{Ref: ref, Message: "malformed JSON pointer", Cause: err}
		}
		target, _, err := p.Get(b.root)
		if err != nil {
			return nil, "", &oaserrors.ReferenceError{Ref: ref, Message: "target not found", Cause: err}
		}
		node, ptr = target, strings.TrimPrefix(ref, "#")
	}
	return nil, "", &oaserrors.ReferenceError{Ref: ptr, Message: fmt.Sprintf("more than %d chained references", maxRefHops)}
}

// mergeParameters overlays operation parameters on path parameters. An
// operation parameter replaces the path parameter with the same name and
// location in place; the rest are appended.
func mergeParameters(shared, own []*Parameter) []*Parameter {
	out := make([]*Parameter, 0, len(shared)+len(own))
	out = append(out, shared...)
	for _, p := range own {
		replaced := false
		for i, existing := range out {
			if existing.In == p.In && existing.Name == p.Name {
				out[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, p)
		}
	}
	return out
}

// resolveSchemaType fills p.SchemaType from its resolved schema.
func resolveSchemaType(repo SchemaRepository, p *Parameter) error {
	if p.SchemaRef == "" {
		return nil
	}
	schema, err := repo.Resolve(p.SchemaRef)
	if err != nil {
		return err
	}
	p.SchemaType = schemaType(schema)

	switch p.SchemaType {
	case TypeArray:
		items, err := subschema(repo, schema["items"])
		if err != nil {
			return err
		}
		p.ItemType = schemaType(items)
	case TypeObject:
		props, _ := schema["properties"].(map[string]any)
		if len(props) == 0 {
			return nil
		}
		p.PropertyTypes = make(map[string]string, len(props))
		for name, raw := range props {
			prop, err := subschema(repo, raw)
			if err != nil {
				return err
			}
			p.PropertyTypes[name] = schemaType(prop)
		}
	}
	return nil
}

// subschema returns a nested schema object, resolving it when it is a $ref.
func subschema(repo SchemaRepository, raw any) (map[string]any, error) {
	node, ok := raw.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	if ref, ok := node["$ref"].(string); ok {
		return repo.Resolve(ref)
	}
	return node, nil
}

// schemaType returns the declared type of schema. For type arrays the first
// non-null entry wins; untyped schemas are inferred from their keywords.
func schemaType(schema map[string]any) string {
	switch t := schema["type"].(type) {
	case string:
		return t
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s != "null" {
				return s
			}
		}
	}
	for _, kw := range []string{"properties", "additionalProperties", "patternProperties"} {
		if _, ok := schema[kw]; ok {
			return TypeObject
		}
	}
	for _, kw := range []string{"items", "prefixItems"} {
		if _, ok := schema[kw]; ok {
			return TypeArray
		}
	}
	return ""
}

func styleAllowed(s Style, allowed []Style) bool {
	for _, a := range allowed {
		if a == s {
			return true
		}
	}
	return false
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolField(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}

func stringList(raw any) []string {
	list, _ := raw.([]any)
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func securityRequirements(raw any) []SecurityRequirement {
	list, _ := raw.([]any)
	out := make([]SecurityRequirement, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		req := make(SecurityRequirement, len(m))
		for name, scopes := range m {
			req[name] = stringList(scopes)
		}
		out = append(out, req)
	}
	return out
}

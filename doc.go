// Package oasguard validates HTTP traffic against OpenAPI 3.0 and 3.1 contracts.
//
// # Overview
//
// A contract document is loaded once into an immutable model, and every
// request or response is then checked against it: parameters are decoded with
// their serialization style, bodies with the content analyser registered for
// their media type, and both are validated against their JSON Schemas. The
// first failure ends validation and is returned as a typed error.
//
// The library consists of these packages:
//
//   - contract: load a document, check its structure, and model paths, operations and parameters
//   - schemarepo: compile and evaluate the contract's schemas
//   - paramstyle: decode simple, label, matrix, form, delimited and deepObject parameters
//   - mediatype: parse content types and decode JSON, multipart, form and opaque bodies
//   - httpvalidator: validate requests and responses, with a net/http adapter and middleware
//   - oaserrors: the error types returned by all of the above
//
// # Quick Start
//
//	c, err := contract.Load(ctx, "openapi.yaml")
//	if err != nil {
//		log.Fatal(err) // *oaserrors.ContractError, *oaserrors.ParseError, ...
//	}
//
//	v, err := httpvalidator.New(c)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	vr, err := v.ValidateRequest("showPetById", httpvalidator.RawParameters{
//		Path: map[string]string{"petId": "42"},
//	}, nil, "")
//	if err != nil {
//		fmt.Println(oaserrors.KindOf(err)) // e.g. "invalid value"
//		return
//	}
//	fmt.Println(vr.PathParams()["petId"]) // 42
//
// Or wrap an HTTP handler:
//
//	http.ListenAndServe(":8080", v.Middleware(nil)(mux))
//
// # Error Handling
//
// Contract problems are reported once, at load time, as *oaserrors.ContractError.
// Per-message failures are *oaserrors.ValidationError values whose Kind tells
// which stage rejected the message:
//
//   - KindMissingParameter: a required parameter or body was absent
//   - KindIllegalValue: a style prefix or body encoding was malformed
//   - KindUnsupportedValueFormat: a multipart part had an unreadable content type
//   - KindCannotDecodeValue: a primitive token could not be decoded
//   - KindInvalidValue: the value decoded but its schema rejected it
//
// A body whose media type no analyser handles yields *oaserrors.MediaTypeError.
// All error types support errors.Is against the sentinels in oaserrors.
//
// # Command-Line Interface
//
// The oasguard command lists operations, validates single requests and
// responses, parses media types, and serves the same operations as MCP tools:
//
//	oasguard operations openapi.yaml
//	oasguard validate-request openapi.yaml --operation showPetById --path petId=42
//	oasguard mcp --spec openapi.yaml --watch
package oasguard

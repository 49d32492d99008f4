// Package contract builds an immutable, queryable model of an OpenAPI 3.0 or
// 3.1 document.
//
// A Contract is built once, typically at startup, and is then shared
// read-only by any number of concurrent validators:
//
//	c, err := contract.Load(ctx, "openapi.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	op, err := c.Operation("showPetById")
//
// # Construction
//
// [Build] fails fast with a *oaserrors.ContractError when the document declares
// an unsupported version, when two paths are duplicates after trailing-slash
// normalization, when two paths differ only in placeholder names
// ("/pets/{petId}" and "/pets/{id}"), when a path contains a "*" wildcard
// segment, or when a path parameter is optional, unnamed, or has no matching
// placeholder.
//
// Local $refs to path items, parameters, request bodies, responses and
// security schemes are followed while building. Schema $refs are left to the
// schema repository. Remote references are rejected.
//
// # Parameters
//
// Path-level parameters are inherited by every operation of the path; an
// operation parameter with the same name and location replaces the inherited
// one in place. Unspecified styles default by location: form for query and
// cookie, simple for path and header. Explode defaults to true for form only.
//
// # Schemas
//
// Every schema the contract references is compiled once during [Build]. OAS 3.0
// documents use draft-04 semantics with nullable rewritten to a type union;
// OAS 3.1 documents use draft 2020-12.
package contract

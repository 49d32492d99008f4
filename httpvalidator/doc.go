// Package httpvalidator validates HTTP requests and responses against a contract.
//
// A Validator decodes every declared parameter with its serialization style,
// checks it against its schema, then decodes and checks the body with the
// content analyser registered for its media type. Validation stops at the
// first failure, which is returned as a typed error from oaserrors.
//
// # Basic Usage
//
//	c, err := contract.Load(ctx, "openapi.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, err := httpvalidator.New(c)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	vr, err := v.ValidateRequest("showPetById", httpvalidator.RawParameters{
//	    Path: map[string]string{"petId": "42"},
//	}, nil, "")
//	if err != nil {
//	    switch oaserrors.KindOf(err) {
//	    case oaserrors.KindInvalidValue:
//	        // decoded, but rejected by the schema
//	    }
//	}
//	petID := vr.PathParams()["petId"] // float64(42)
//
// # HTTP Adapter
//
// ValidateHTTPRequest finds the operation for an *http.Request by method and
// path template, reads its body under a size limit, and validates it.
// Middleware wraps a handler with that check and exposes the result through
// FromContext:
//
//	handler := v.Middleware(nil)(mux)
//
//	func showPet(w http.ResponseWriter, r *http.Request) {
//	    vr, _ := httpvalidator.FromContext(r.Context())
//	    id := vr.PathParams()["petId"]
//	}
//
// Failures map to 400 (validation), 404 (no operation), 413 (body too large)
// and 415 (unsupported media type); see StatusCode and DefaultErrorHandler.
//
// # Functional Options
//
//   - WithRegistry: replace the media type registry, e.g. to add custom analysers
//   - WithStrictMode: fail on undeclared body media types and undocumented statuses
//   - WithUnsupportedMediaType: reject or pass through bodies with no analyser
//   - WithMaxBodySize: limit bodies read by ValidateHTTPRequest (default 10 MiB)
//   - WithLogger: log failures at debug level
//
// # Concurrency
//
// Validators are immutable and safe for concurrent use. Each validation is a
// synchronous computation over its inputs and performs no I/O.
package httpvalidator

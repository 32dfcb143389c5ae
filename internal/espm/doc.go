// Package espm provides an HTTP client for an OData ESPM service.
//
// # Overview
//
// The client reads the Products and SalesOrderHeaders entity sets and
// writes product edits back. Both OData V2 ({"d":{"results":[...]}}) and
// V4 ({"value":[...]}) payloads are accepted; envelopes are located with
// gjson and the entity array is decoded with encoding/json.
//
// # Client Usage
//
//	client, err := espm.NewClient(espm.Options{
//		ServiceURL: "https://host/odata/ESPM.svc/",
//		Username:   "tech",
//		Password:   os.Getenv("TECHNICIAN_PASSWORD"),
//	})
//	if err != nil {
//		return err
//	}
//	products, err := client.Products(ctx)
//
// # Error Handling
//
// Transport failures and 5xx answers wrap ErrUnavailable so callers can
// fall back to cached data. A 404 wraps ErrNotFound. Other 4xx answers
// carry the OData error message when the service sends one. Transient
// failures are retried by go-retryablehttp before they surface.
//
// # Types
//
// Product and SalesOrderHeader mirror the ESPM schema. Money and
// dimensions use shopspring/decimal; Edm.Decimal values arrive as JSON
// strings in V2 and numbers in V4, decimal accepts both. Time accepts V2
// "/Date(ms)/" literals and ISO 8601.
package espm

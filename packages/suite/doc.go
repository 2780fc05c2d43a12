// Package suite loads declarative response checks from YAML files and runs
// them against a live endpoint.
//
// A suite describes one request, an optional load run against the same
// request, a JSON schema and a list of body rules:
//
//	name: products
//	request:
//	  method: GET
//	  url: ${API_URL}/products
//	  query:
//	    $top: "10"
//	  headers:
//	    Accept: application/json
//	  auth:
//	    bearer: ${API_TOKEN}
//	status: 200
//	load:
//	  calls: 20
//	  concurrency: 4
//	schema: products.schema.json
//	rules:
//	  - path: products.#
//	    op: gte
//	    value: 1
//
// ${NAME} references in the request are expanded when the suite is loaded,
// from a .env file beside the suite first and the process environment second.
// A name with no value fails the load. Any other $ is kept as written. Schema files are resolved relative to the suite
// and may not leave its directory.
package suite

// Command contentgraph answers GraphQL queries against the content of a multi-tenant CMS.
//
// An organization owns domains, a domain declares content types and content types declare
// fields. Reference fields point to content of another (or the same) content type and can be
// followed inside a query. The number of reference fields a query may follow is capped by
// max_nesting_level; the first reference beyond the cap is answered with
//
//	{"message": "Maximum nesting level of N reached."}
//
// instead of the referenced content, and nothing beneath it is loaded. This keeps cyclic
// references such as news -> category -> news from running forever while the rest of the
// response is still delivered.
//
// Queries are posted to /{organization}/{domain}/api with an API key of a domain member.
package main

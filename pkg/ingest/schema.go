package ingest

// assertionSchemaJSON validates the CLI's assertion input JSON: a list of
// objects with subjectType, base64 subjectInfo, and optional DNS/IP claim
// lists, exactly as documented for the "run-batch" CLI command.
const assertionSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["subjectType", "subjectInfo"],
    "additionalProperties": false,
    "properties": {
      "subjectType": { "const": "tls" },
      "subjectInfo": { "type": "string", "contentEncoding": "base64" },
      "dns": { "type": "array", "items": { "type": "string" } },
      "dnsWildcard": { "type": "array", "items": { "type": "string" } },
      "ipv4Addr": { "type": "array", "items": { "type": "string" } },
      "ipv6Addr": { "type": "array", "items": { "type": "string" } }
    }
  }
}`

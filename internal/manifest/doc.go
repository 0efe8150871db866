// Package manifest parses and validates catalog documents: the configuration
// file that names the module library root and declares every dynamically
// resolved processing module with its category and port counts.
//
// YAML and JSON documents are validated against the embedded JSON Schema
// before decoding. The legacy XML layout (<config><libdir/><module/></config>)
// is decoded first and its normalized form validated against the same schema.
package manifest

// Package services wires the rfqd components from a configuration snapshot.
//
// Build resolves the validator, the semantic extractor and the parser once at
// startup; both binaries (rfqd and rfq) go through it so a given config
// produces the same parser everywhere. Use the Registry accessors to retrieve
// individual components.
package services

// Package reference holds the locally configured reference data that remote
// records are resolved against: countries, subdivisions, currencies and
// languages. The sync engine never creates these; a remote code without a
// local counterpart is a configuration gap.
package reference

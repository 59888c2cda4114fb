// Package x3f implements a decoder for the Sigma X3F camera raw file
// format (Foveon sensor raw data, CAMF calibration metadata, and
// TRUE-engine/Quattro entropy-coded raw planes).
//
// A File is produced by Open and exposes its CAMF/PROP metadata (Meta,
// GetFeatures) and, via Render, a fully developed RGB image: raw
// decode, Quattro layer merge, black-level linearization, spatial gain
// correction, and white-balance/matrix/gamma conversion to an output
// color space. This package registers itself with the standard
// library's image package so that image.Decode can transparently read
// X3F files for metadata-only or thumbnail use; full sensor development
// goes through Render, since image.Decode's signature has no room for
// the white-balance/output-space choices X3F rendering requires.
package x3f

// Package rtpklv contains a RTP decoder for KLV data, as defined by SMPTE ST 336,
// and a source that allows to read KLV records from decoded units.
// Specification: https://datatracker.ietf.org/doc/html/rfc6597
package rtpklv

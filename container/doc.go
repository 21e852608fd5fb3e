// Package container finds effect records inside Infinity Engine resource
// files. It reads only the headers needed to hand each record to the decoder
// as a buffer, a base offset and a record size.
//
// Supported: EFF V2.0, ITM and SPL feature blocks (compact records) and
// CRE V1.0 effect lists (compact or extended by the header's effect version).
package container

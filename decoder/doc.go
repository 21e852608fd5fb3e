// Package decoder runs the fixed five-stage decode of an effect record and
// keeps decoded records consistent when a driver field is edited.
//
// Decode picks the layout from the record size, resolves the opcode under the
// engine context, then decodes the framing header, the five stages and, for
// extended records, the trailer. Each stage must produce exactly its byte
// budget; a mismatch is a structural error and nothing is returned.
//
// Fields are reported in physical order with absolute offsets into the
// caller's buffer. Records never hold a reference to that buffer.
package decoder

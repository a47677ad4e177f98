// Package httputil provides the response envelope and request body
// decoding shared by the HTTP and Lambda front ends.
//
// Every response is an Envelope: {success, data?, error?: {message, code}}.
// Handlers build envelopes with Success and Fail and write them with JSON,
// so both transports produce identical bodies.
package httputil

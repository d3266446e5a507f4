package fetch

// Package fetch implements the network fetch collaborator: a thin HTTP GET
// wrapper that exposes the declared content length and the response body as
// a byte stream. All failures surface as *TransportError so the worker pool
// can classify them.

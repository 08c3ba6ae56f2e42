// Package contact holds the pure rules applied to contact form submissions:
// field validation, the spam denylist and text sanitization.
//
// The functions here never perform I/O and are shared by the server pipeline
// and the client form controller so both sides enforce the same limits.
package contact

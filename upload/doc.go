// Package upload stores files received by the server: multipart uploads
// from the /fileupload form and the raw write, append and delete operations
// exposed under /files.
//
// Storage is pluggable through FileStorage. The filesystem package provides
// the default implementation rooted in a sandboxed directory.
package upload

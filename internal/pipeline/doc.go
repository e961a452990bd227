// Package pipeline provides the document-ingestion activities the interpreter
// dispatches: loading source resources, chunking, transforming, and storing
// the results. Vendor document and embedding adapters sit behind the store
// interfaces and are not part of the orchestration core.
package pipeline

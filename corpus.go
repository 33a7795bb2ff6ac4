// Package corpus turns seed web addresses into a deduplicated,
// language-filtered, token-bounded set of text chunks suitable for
// retrieval indexing. It crawls sites breadth-first under politeness
// constraints, extracts and cleans page content, filters duplicates
// and off-language documents, and splits what remains into chunks.
//
// This package contains domain types and interfaces following Ben
// Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., sqlite/,
// trafilatura/, tiktoken/).
package corpus

package framer

import "github.com/xavier-caroff/synapse/plugins/escapeseq"

// normalizeEscapes replaces the source-form two-character escape sequences
// \a \b \f \n \r \t \v \0 \\ \' \" with their single-byte equivalents; all
// other characters pass through unchanged. This lets configuration
// documents write start/end delimiters like "\r\n" as JSON strings.
func normalizeEscapes(s string) []byte {
	return escapeseq.Normalize(s)
}

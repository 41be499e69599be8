package extract

import "errors"

// Extraction errors. The Missing* errors mean the page does not follow the
// modeled template and the document is skipped.
var (
	ErrUnknownMonth            = errors.New("unknown month")
	ErrNoDateline              = errors.New("no dateline found")
	ErrMissingTopicsContainer  = errors.New("missing topics container")
	ErrMissingLanguageMetadata = errors.New("missing language metadata")
	ErrMissingTitle            = errors.New("missing title element")
)

// ErrorClass returns a short, stable name for err, used in crawl logs.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownMonth):
		return "unknown_month"
	case errors.Is(err, ErrNoDateline):
		return "no_dateline"
	case errors.Is(err, ErrMissingTopicsContainer):
		return "missing_topics_container"
	case errors.Is(err, ErrMissingLanguageMetadata):
		return "missing_language_metadata"
	case errors.Is(err, ErrMissingTitle):
		return "missing_title"
	default:
		return "unexpected"
	}
}

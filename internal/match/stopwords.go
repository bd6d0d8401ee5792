package match

// stopwords are excluded from similarity so boilerplate connectives do
// not inflate the overlap between unrelated clauses.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "any": true, "are": true,
	"as": true, "at": true, "be": true, "by": true, "for": true,
	"from": true, "has": true, "have": true, "in": true, "is": true,
	"it": true, "its": true, "of": true, "on": true, "or": true,
	"such": true, "that": true, "the": true, "this": true, "to": true,
	"under": true, "upon": true, "was": true, "were": true, "will": true,
	"with": true, "herein": true, "hereof": true, "hereto": true,
	"thereof": true, "shall": true, "may": true, "must": true,
	"party": true, "parties": true, "agreement": true,
}

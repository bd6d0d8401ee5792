package model

// SourceFormat hints where the document text came from. The pipeline only
// ever sees extracted plain text; binary decoding happens upstream.
type SourceFormat string

const (
	FormatText     SourceFormat = "txt"
	FormatMarkdown SourceFormat = "md"
	FormatHTML     SourceFormat = "html"
	FormatUnknown  SourceFormat = "unknown"
)

// Document is the raw contract handed to the pipeline. Immutable once
// created; owned by the caller.
type Document struct {
	ID       string       `json:"id"`                 // Stable identifier (sha256 of text for file inputs)
	Name     string       `json:"name,omitempty"`     // Display name (usually the source filename)
	Text     string       `json:"-"`                  // Full extracted text
	Language string       `json:"language,omitempty"` // BCP-47-ish tag, e.g. "en", "hi"
	Format   SourceFormat `json:"format,omitempty"`
}

// Clause is one contiguous provision of the document. Spans index into
// Document.Text and are non-overlapping and strictly increasing across
// the clause sequence.
type Clause struct {
	Index int    `json:"index"`           // Position in document order (0-based)
	Start int    `json:"start"`           // Byte offset into Document.Text (inclusive)
	End   int    `json:"end"`             // Byte offset into Document.Text (exclusive)
	Label string `json:"label,omitempty"` // Heading or clause number, e.g. "3.1" or "TERMINATION"
	Text  string `json:"text"`            // Document.Text[Start:End]
}

// Category is the functional classification of a clause.
type Category string

const (
	CategoryObligation  Category = "obligation"
	CategoryRight       Category = "right"
	CategoryProhibition Category = "prohibition"
	CategoryDefinition  Category = "definition"
	CategoryOther       Category = "other"
)

// EntityKind classifies extracted entities.
type EntityKind string

const (
	EntityParty          EntityKind = "party"
	EntityDate           EntityKind = "date"
	EntityAmount         EntityKind = "amount"
	EntityDuration       EntityKind = "duration"
	EntityObligationVerb EntityKind = "obligation_verb"
	EntityDefinedTerm    EntityKind = "defined_term"
)

// Entity is a span of interest within a clause.
type Entity struct {
	Kind  EntityKind `json:"kind"`
	Text  string     `json:"text"`
	Start int        `json:"start"` // Byte offset into Clause.Text
	End   int        `json:"end"`
}

// Classification is the classifier's verdict for one clause.
type Classification struct {
	Category  Category `json:"category"`
	Entities  []Entity `json:"entities,omitempty"`
	Ambiguous bool     `json:"ambiguous"`
	Rule      string   `json:"rule,omitempty"` // Which rule fired, e.g. "modal:shall not"
}

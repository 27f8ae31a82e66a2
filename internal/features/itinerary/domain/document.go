package domain

// DocumentType is the format of a travel document handed to the extractor.
type DocumentType string

const (
	DocumentTypePDF   DocumentType = "pdf"
	DocumentTypeEmail DocumentType = "email"
	DocumentTypeHTML  DocumentType = "html"
	DocumentTypeImage DocumentType = "image"
)

// SourceDocument is a confirmation, ticket or voucher to import segments from.
type SourceDocument struct {
	URL  string       `json:"document_url"`
	Type DocumentType `json:"document_type"`
}

package config

const (
	// MaxNodeNameLength is the maximum length for file and folder names.
	MaxNodeNameLength = 255

	// MaxRequestBodySize caps JSON request bodies. Markdown content travels
	// inline, so this is generous.
	MaxRequestBodySize = 10 << 20

	// MaxUploadSize caps multipart uploads on /api/upload.
	MaxUploadSize = 50 << 20

	// MaxSummarizeChars is how much document text is sent for a summary.
	// Longer content is cut and marked as truncated.
	MaxSummarizeChars = 10000

	// MaxAskContextChars is how much document text accompanies a question.
	MaxAskContextChars = 15000

	// NotionPageSize is the block page size requested from Notion.
	NotionPageSize = 100
)

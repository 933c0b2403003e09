package dto

type UploadTextRequest struct {
	Text     string                 `json:"text" validate:"required"`
	Metadata map[string]interface{} `json:"metadata"`
}

type UploadDocumentResponse struct {
	Success     bool     `json:"success"`
	DocumentIds []string `json:"document_ids"`
	Message     string   `json:"message"`
}

// PublishIndexChunksMessage is the payload queued for the indexing consumer
type PublishIndexChunksMessage struct {
	DocumentId string         `json:"document_id"`
	Chunks     []IndexedChunk `json:"chunks"`
}

type IndexedChunk struct {
	Id       string                 `json:"id"`
	Index    int                    `json:"index"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
}

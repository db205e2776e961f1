package embedding

// Embedding is one vector returned by the API.
type Embedding = []float64

// Model selects the embedding model.
type Model string

const (
	ModelNomicEmbedTextV1   Model = "nomic-embed-text-v1"
	ModelNomicEmbedTextV1_5 Model = "nomic-embed-text-v1.5"
)

// TaskType tells the model what the embeddings will be used for.
type TaskType string

const (
	TaskSearchDocument TaskType = "search_document"
	TaskSearchQuery    TaskType = "search_query"
	TaskClustering     TaskType = "clustering"
	TaskClassification TaskType = "classification"
)

// textEndpoint is the API path for text embeddings.
const textEndpoint = "/v1/embedding/text"

type textRequest struct {
	Model    Model    `json:"model"`
	TaskType TaskType `json:"task_type"`
	Texts    []string `json:"texts"`
}

type textResponse struct {
	Embeddings []Embedding `json:"embeddings"`
	Usage      struct {
		PromptTokens int64 `json:"prompt_tokens"`
		TotalTokens  int64 `json:"total_tokens"`
	} `json:"usage"`
	Model Model `json:"model"`
}

package catalog

// Question is a pending question handed out by the extraction service. The
// statement comes without its options; Options carries them separately.
type Question struct {
	ID         int64    `json:"id"`
	CategoryID int64    `json:"disciplina_id"`
	Statement  string   `json:"enunciado_tratado"`
	HasImage   bool     `json:"contem_imagem"`
	Options    []Option `json:"alternativas"`
}

// Option is one answer choice of a question.
type Option struct {
	Content string `json:"conteudo"`
}

// Outcome is the result of one extraction, reported back to the service.
// Official classifications go in Paths; matches below the confidence
// threshold go in LowConfidencePaths instead so a human can review them.
type Outcome struct {
	QuestionID         int64    `json:"questao_id"`
	Paths              []string `json:"classificacoes"`
	LowConfidencePaths []string `json:"classificacao_nao_enquadrada"`
	RemoteID           int64    `json:"superpro_id,omitempty"`
	CleanedStatement   string   `json:"enunciado_tratado,omitempty"`
	Similarity         *float64 `json:"similaridade,omitempty"`
	RemoteStatement    string   `json:"enunciado_superpro,omitempty"`
}

// Stats summarizes extraction progress across the inventory.
type Stats struct {
	Total       int64           `json:"total"`
	Pending     int64           `json:"pendentes"`
	Extracted   int64           `json:"extraidas"`
	PerCategory []CategoryStats `json:"por_disciplina"`
}

// CategoryStats is the per-category slice of Stats.
type CategoryStats struct {
	CategoryID int64  `json:"disciplina_id"`
	Name       string `json:"disciplina"`
	Pending    int64  `json:"pendentes"`
	Extracted  int64  `json:"extraidas"`
}

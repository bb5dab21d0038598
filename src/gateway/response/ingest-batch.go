package response

type IngestBatch struct {
	BatchID    string   `json:"batch_id"`
	PayloadIDs []string `json:"payload_ids"`
}

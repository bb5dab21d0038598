package walrus

// Store response, exactly one of the two branches is set
type storeResponse struct {
	NewlyCreated     *newlyCreated     `json:"newlyCreated"`
	AlreadyCertified *alreadyCertified `json:"alreadyCertified"`
}

type newlyCreated struct {
	BlobObject blobObject `json:"blobObject"`
}

type blobObject struct {
	Id     string `json:"id"`
	BlobId string `json:"blobId"`
}

type alreadyCertified struct {
	BlobId   string `json:"blobId"`
	EndEpoch int    `json:"endEpoch"`
}
